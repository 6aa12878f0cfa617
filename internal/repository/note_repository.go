package repository

import (
	"context"
	"fmt"

	"sorters-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// NoteRepository is the durable mirror of the ledger. The ledger itself
// stays in memory and authoritative; the repository only records applied
// state transitions and hands the whole state back at boot.
type NoteRepository interface {
	SaveNote(note *domain.Note, grants []domain.Grant) error
	DeleteNote(id uint64) error
	SaveCounter(next uint64) error
	LoadAll() ([]*domain.Note, []domain.Grant, uint64, error)
}

type noteDocument struct {
	ID     string         `json:"_id"`
	Rev    string         `json:"_rev,omitempty"`
	Type   string         `json:"type"`
	Note   *domain.Note   `json:"note"`
	Grants []domain.Grant `json:"grants,omitempty"`
}

type counterDocument struct {
	ID   string `json:"_id"`
	Rev  string `json:"_rev,omitempty"`
	Type string `json:"type"`
	Next uint64 `json:"next"`
}

const counterDocID = "counter:note-id"

type noteRepository struct {
	client *kivik.Client
	dbName string
}

func NewNoteRepository(client *kivik.Client, dbName string) NoteRepository {
	return &noteRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *noteRepository) SaveNote(note *domain.Note, grants []domain.Grant) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("note:%d", note.ID)

	doc := noteDocument{
		ID:     docID,
		Type:   "note",
		Note:   note,
		Grants: grants,
	}
	doc.Rev = r.currentRev(docID)

	if _, err := db.Put(context.Background(), docID, doc); err != nil {
		return fmt.Errorf("failed to save note %d: %w", note.ID, err)
	}

	return nil
}

func (r *noteRepository) DeleteNote(id uint64) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("note:%d", id)

	rev := r.currentRev(docID)
	if rev == "" {
		return nil
	}

	tombstone := map[string]interface{}{
		"_id":      docID,
		"_rev":     rev,
		"_deleted": true,
	}
	if _, err := db.Put(context.Background(), docID, tombstone); err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}

	return nil
}

func (r *noteRepository) SaveCounter(next uint64) error {
	db := r.client.DB(r.dbName)

	doc := counterDocument{
		ID:   counterDocID,
		Type: "counter",
		Next: next,
	}
	doc.Rev = r.currentRev(counterDocID)

	if _, err := db.Put(context.Background(), counterDocID, doc); err != nil {
		return fmt.Errorf("failed to save counter: %w", err)
	}

	return nil
}

func (r *noteRepository) LoadAll() ([]*domain.Note, []domain.Grant, uint64, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"type": "note",
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to load notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Note
	var grants []domain.Grant
	for rows.Next() {
		var doc noteDocument
		if err := rows.ScanDoc(&doc); err != nil {
			continue
		}
		if doc.Note == nil {
			continue
		}
		notes = append(notes, doc.Note)
		grants = append(grants, doc.Grants...)
	}

	var next uint64
	var counter counterDocument
	if err := db.Get(context.Background(), counterDocID).ScanDoc(&counter); err == nil {
		next = counter.Next
	}

	return notes, grants, next, nil
}

// currentRev resolves the _rev a Put needs to replace an existing doc.
// Empty when the doc does not exist yet.
func (r *noteRepository) currentRev(docID string) string {
	db := r.client.DB(r.dbName)

	var doc struct {
		Rev string `json:"_rev"`
	}
	if err := db.Get(context.Background(), docID).ScanDoc(&doc); err != nil {
		return ""
	}
	return doc.Rev
}
