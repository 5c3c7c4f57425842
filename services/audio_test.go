package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAudioDir(t *testing.T) *AudioActions {
	t.Helper()
	actions, err := NewAudioActions(t.TempDir())
	require.NoError(t, err)
	return actions
}

func writeBlob(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("fake audio"), 0644))
	return path
}

func TestRemoveCandidatesAllExtensions(t *testing.T) {
	actions := newTestAudioDir(t)

	// Blobs exist in two formats; all five are attempted regardless.
	writeBlob(t, actions.AudioDir, "n1.webm")
	writeBlob(t, actions.AudioDir, "n1.mp3")
	keep := writeBlob(t, actions.AudioDir, "n2.wav")

	removed := actions.RemoveCandidates("n1")
	assert.Equal(t, 2, removed)

	entries, err := os.ReadDir(actions.AudioDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(keep), entries[0].Name())
}

func TestRemoveCandidatesNothingRecorded(t *testing.T) {
	actions := newTestAudioDir(t)
	assert.Zero(t, actions.RemoveCandidates("n1"))
}

func TestRemoveCandidatesPathEscape(t *testing.T) {
	actions := newTestAudioDir(t)

	outside := filepath.Join(filepath.Dir(actions.AudioDir), "victim.mp3")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0644))
	defer os.Remove(outside)

	actions.RemoveCandidates("../victim")

	_, err := os.Stat(outside)
	assert.NoError(t, err, "file outside the audio dir must survive")
}

func TestIsAudioBlob(t *testing.T) {
	for _, name := range []string{"a.mp4", "a.webm", "a.ogg", "a.wav", "a.MP3"} {
		assert.True(t, isAudioBlob(name), name)
	}
	for _, name := range []string{"a.txt", "a.md", "a.mp3.tmp", "a"} {
		assert.False(t, isAudioBlob(name), name)
	}
}

func TestNoteIDForBlob(t *testing.T) {
	assert.Equal(t, "n1", noteIDForBlob("/audio/n1.webm"))
	assert.Equal(t, "n1", noteIDForBlob("n1.mp3"))
}

func TestJanitorSweep(t *testing.T) {
	notes, _ := newTestNoteStore(t)
	actions := newTestAudioDir(t)
	note := createNote(t, notes, "this note still exists")

	owned := writeBlob(t, actions.AudioDir, note.ID+".webm")
	orphan := writeBlob(t, actions.AudioDir, "deleted-note.webm")
	unrelated := writeBlob(t, actions.AudioDir, "readme.txt")

	janitor := NewAudioJanitor(actions, notes)
	janitor.Sweep(context.Background())

	_, err := os.Stat(owned)
	assert.NoError(t, err, "blob with a live note stays")
	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err), "orphaned blob is removed")
	_, err = os.Stat(unrelated)
	assert.NoError(t, err, "non-audio files are ignored")
}
