package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/voxnotes/server/models"
)

// NoteStore is the note CRUD collaborator. The retrieval pipeline only reads
// transcripts from it; the HTTP layer exposes the full CRUD surface.
type NoteStore interface {
	Create(ctx context.Context, req models.CreateNoteRequest) (*models.Note, error)
	Get(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context) ([]models.Note, error)
	Update(ctx context.Context, id string, patch models.NotePatch) (*models.Note, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

const notesSchema = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	transcript TEXT NOT NULL DEFAULT '',
	folder     TEXT NOT NULL DEFAULT '',
	parser     TEXT NOT NULL DEFAULT 'raw',
	embedding  TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// SQLiteNoteStore persists notes in sqlite via sqlx. The embedding column is
// owned by SQLiteVectorStore when that backend is selected; this store never
// touches it apart from the implicit drop on DELETE.
type SQLiteNoteStore struct {
	db *sqlx.DB
}

func NewSQLiteNoteStore(db *sqlx.DB) (*SQLiteNoteStore, error) {
	if _, err := db.Exec(notesSchema); err != nil {
		return nil, fmt.Errorf("creating notes table: %w", err)
	}
	return &SQLiteNoteStore{db: db}, nil
}

func (s *SQLiteNoteStore) Create(ctx context.Context, req models.CreateNoteRequest) (*models.Note, error) {
	now := time.Now().UTC()
	note := models.Note{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Transcript: req.Transcript,
		Folder:     req.Folder,
		Parser:     req.Parser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if note.Parser == "" {
		note.Parser = "raw"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, transcript, folder, parser, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.Title, note.Transcript, note.Folder, note.Parser, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return nil, classify(ErrPersistence, fmt.Errorf("insert note: %w", err))
	}
	return &note, nil
}

func (s *SQLiteNoteStore) Get(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	err := s.db.GetContext(ctx, &note,
		`SELECT id, title, transcript, folder, parser, created_at, updated_at
		 FROM notes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, classify(ErrPersistence, fmt.Errorf("select note %s: %w", id, err))
	}
	return &note, nil
}

func (s *SQLiteNoteStore) List(ctx context.Context) ([]models.Note, error) {
	notes := []models.Note{}
	err := s.db.SelectContext(ctx, &notes,
		`SELECT id, title, transcript, folder, parser, created_at, updated_at
		 FROM notes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, classify(ErrPersistence, fmt.Errorf("list notes: %w", err))
	}
	return notes, nil
}

func (s *SQLiteNoteStore) Update(ctx context.Context, id string, patch models.NotePatch) (*models.Note, error) {
	if patch.Empty() {
		return s.Get(ctx, id)
	}

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Transcript != nil {
		sets = append(sets, "transcript = ?")
		args = append(args, *patch.Transcript)
	}
	if patch.Folder != nil {
		sets = append(sets, "folder = ?")
		args = append(args, *patch.Folder)
	}
	if patch.Parser != nil {
		sets = append(sets, "parser = ?")
		args = append(args, *patch.Parser)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, classify(ErrPersistence, fmt.Errorf("update note %s: %w", id, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, classify(ErrPersistence, fmt.Errorf("update note %s: %w", id, err))
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return s.Get(ctx, id)
}

func (s *SQLiteNoteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return classify(ErrPersistence, fmt.Errorf("delete note %s: %w", id, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(ErrPersistence, fmt.Errorf("delete note %s: %w", id, err))
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteNoteStore) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one, `SELECT 1 FROM notes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify(ErrPersistence, fmt.Errorf("check note %s: %w", id, err))
	}
	return true, nil
}
