package services

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// AudioJanitor removes orphaned audio blobs: files in the audio directory
// whose owning note no longer exists. DELETE /notes already removes blobs
// best-effort, so the janitor is the backstop for blobs that were uploaded
// after the note was deleted or whose removal failed.
type AudioJanitor struct {
	actions *AudioActions
	notes   NoteStore
}

func NewAudioJanitor(actions *AudioActions, notes NoteStore) *AudioJanitor {
	return &AudioJanitor{actions: actions, notes: notes}
}

// Sweep walks the audio directory once and removes every orphaned blob.
func (j *AudioJanitor) Sweep(ctx context.Context) {
	log.Printf("JANITOR: sweeping audio directory %s", j.actions.AudioDir)
	swept := 0
	err := filepath.Walk(j.actions.AudioDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isAudioBlob(path) {
			return nil
		}
		if j.removeIfOrphaned(ctx, path) {
			swept++
		}
		return nil
	})
	if err != nil {
		log.Printf("JANITOR ERROR: walking %s: %v", j.actions.AudioDir, err)
	}
	log.Printf("JANITOR: sweep finished, removed %d orphaned blobs", swept)
}

// Watch reacts to blobs appearing in the audio directory in real time.
// Blocks until the context is cancelled.
func (j *AudioJanitor) Watch(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("JANITOR ERROR: failed to create watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isAudioBlob(event.Name) {
					continue
				}
				// Uploads surface as Create followed by Writes; both are
				// handled the same since removeIfOrphaned is idempotent.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					j.removeIfOrphaned(ctx, event.Name)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("JANITOR ERROR: %v", err)
			case <-ctx.Done():
				log.Println("JANITOR: context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("JANITOR: watching audio directory %s", j.actions.AudioDir)
	if err := watcher.Add(j.actions.AudioDir); err != nil {
		log.Printf("JANITOR ERROR: failed to watch %s: %v", j.actions.AudioDir, err)
	}

	<-ctx.Done()
}

// removeIfOrphaned deletes the blob when its note id is unknown. Lookup
// failures leave the blob alone; the next sweep retries.
func (j *AudioJanitor) removeIfOrphaned(ctx context.Context, path string) bool {
	noteID := noteIDForBlob(path)
	exists, err := j.notes.Exists(ctx, noteID)
	if err != nil {
		log.Printf("JANITOR WARN: could not check note %s: %v", noteID, err)
		return false
	}
	if exists {
		return false
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("JANITOR WARN: could not remove orphaned blob %s: %v", path, err)
		return false
	}
	log.Printf("JANITOR: removed orphaned blob %s", path)
	return true
}
