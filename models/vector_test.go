package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVector(t *testing.T) {
	assert.Equal(t, "[]", EncodeVector(nil))
	assert.Equal(t, "[]", EncodeVector([]float32{}))
	assert.Equal(t, "[0.5,-1,0.25]", EncodeVector([]float32{0.5, -1, 0.25}))
}

func TestParseVector(t *testing.T) {
	v, err := ParseVector("[0.5,-1,0.25]")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1, 0.25}, v)

	v, err = ParseVector("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ParseVector("[]")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseVector("[not,numbers]")
	assert.Error(t, err)
}

func TestVectorRoundTrip(t *testing.T) {
	in := []float32{0.123, 4.5e-3, -7}
	out, err := ParseVector(EncodeVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
