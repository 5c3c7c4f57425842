package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voxnotes/server/services"
)

// respondError maps a service error to an HTTP status with a generic,
// user-safe message. Internal detail stays in the service logs.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
	case errors.Is(err, services.ErrTimeout):
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Operation timed out"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
