package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// audioExtensions are the container formats the recorder UI may have uploaded
// for a note. Blob files are keyed by note id: "<id>.webm" etc.
var audioExtensions = []string{".mp4", ".webm", ".ogg", ".wav", ".mp3"}

// AudioActions handles audio blob files on disk.
type AudioActions struct {
	AudioDir string // absolute path to the audio blob directory
}

func NewAudioActions(dir string) (*AudioActions, error) {
	if dir == "" {
		return nil, fmt.Errorf("audio directory not configured")
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for audio directory: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("could not create audio directory: %w", err)
	}
	return &AudioActions{AudioDir: absPath}, nil
}

// blobPath resolves a blob filename inside the audio directory, rejecting
// anything that would escape it (e.g. a note id containing "../").
func (a *AudioActions) blobPath(filename string) (string, error) {
	cleanPath := filepath.Join(a.AudioDir, filepath.Base(filename))
	if !strings.HasPrefix(cleanPath, a.AudioDir) {
		return "", fmt.Errorf("invalid blob name %q, attempts to escape audio directory", filename)
	}
	return cleanPath, nil
}

// RemoveCandidates deletes every known-extension blob for the note, best
// effort: all five extensions are attempted regardless of which exist, and
// individual failures are logged, never fatal. Returns the number removed.
func (a *AudioActions) RemoveCandidates(noteID string) int {
	removed := 0
	for _, ext := range audioExtensions {
		path, err := a.blobPath(noteID + ext)
		if err != nil {
			log.Printf("AUDIO: skipping candidate for note %s: %v", noteID, err)
			continue
		}
		err = os.Remove(path)
		switch {
		case err == nil:
			removed++
		case os.IsNotExist(err):
			// Candidate was never recorded in this format.
		default:
			log.Printf("AUDIO: failed to remove %s: %v", path, err)
		}
	}
	return removed
}

// isAudioBlob reports whether the path carries one of the known extensions.
func isAudioBlob(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range audioExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// noteIDForBlob derives the owning note id from a blob filename.
func noteIDForBlob(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
