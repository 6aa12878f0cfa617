package service

import (
	"encoding/json"
	"log"

	"sorters-server/internal/domain"
	"sorters-server/internal/ledger"
	"sorters-server/internal/repository"
	"sorters-server/internal/websocket"
)

// NoteService drives the ledger on behalf of the HTTP surface. Every
// applied mutation is mirrored to the note repository and announced to
// the websocket connections of the note's owner and grantees. Both the
// repository and the manager are optional; the ledger alone decides
// outcomes.
type NoteService struct {
	ledger *ledger.Ledger
	repo   repository.NoteRepository
	ws     *websocket.Manager
}

func NewNoteService(l *ledger.Ledger, repo repository.NoteRepository, ws *websocket.Manager) *NoteService {
	return &NoteService{
		ledger: l,
		repo:   repo,
		ws:     ws,
	}
}

func (s *NoteService) Create(callerID string, req *domain.CreateNoteRequest) (*domain.NoteResponse, error) {
	id, err := s.ledger.Create(callerID, ledger.NoteInput{
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Folder:      req.Folder,
		IsEncrypted: req.IsEncrypted,
	})
	if err != nil {
		return nil, err
	}

	note, err := s.ledger.Get(id, callerID)
	if err != nil {
		return nil, err
	}

	s.persistNote(note)
	s.persistCounter()
	s.broadcast(websocket.TypeNoteCreated, callerID, note)

	return toResponse(note), nil
}

func (s *NoteService) Get(callerID string, id uint64) (*domain.NoteResponse, error) {
	note, err := s.ledger.Get(id, callerID)
	if err != nil {
		return nil, err
	}
	return toResponse(note), nil
}

func (s *NoteService) ListOwned(callerID string) []*domain.NoteResponse {
	return toResponses(s.ledger.ListOwnedBy(callerID))
}

func (s *NoteService) ListShared(callerID string) []*domain.NoteResponse {
	return toResponses(s.ledger.ListSharedWith(callerID))
}

func (s *NoteService) UpdateTitle(callerID string, id uint64, title string) (*domain.NoteResponse, error) {
	if err := s.ledger.UpdateTitle(id, callerID, title); err != nil {
		return nil, err
	}
	return s.afterMutation(callerID, id, websocket.TypeNoteUpdated)
}

func (s *NoteService) UpdateContent(callerID string, id uint64, content string) (*domain.NoteResponse, error) {
	if err := s.ledger.UpdateContent(id, callerID, content); err != nil {
		return nil, err
	}
	return s.afterMutation(callerID, id, websocket.TypeNoteUpdated)
}

func (s *NoteService) AddTag(callerID string, id uint64, tag string) (*domain.NoteResponse, error) {
	if err := s.ledger.AddTag(id, callerID, tag); err != nil {
		return nil, err
	}
	return s.afterMutation(callerID, id, websocket.TypeNoteUpdated)
}

func (s *NoteService) UpdateTags(callerID string, id uint64, tags []string) (*domain.NoteResponse, error) {
	if err := s.ledger.UpdateTags(id, callerID, tags); err != nil {
		return nil, err
	}
	return s.afterMutation(callerID, id, websocket.TypeNoteUpdated)
}

func (s *NoteService) Delete(callerID string, id uint64) error {
	// The grant set is gone once the delete lands, so the audience has
	// to be captured first. Nothing is announced unless the delete
	// succeeds.
	audience := s.audience(id)

	if err := s.ledger.Delete(id, callerID); err != nil {
		return err
	}

	if s.repo != nil {
		if err := s.repo.DeleteNote(id); err != nil {
			log.Printf("failed to mirror note %d deletion: %v", id, err)
		}
	}
	s.broadcastTo(websocket.TypeNoteDeleted, callerID, id, nil, audience)

	return nil
}

func (s *NoteService) Share(callerID string, id uint64, req *domain.ShareNoteRequest) error {
	if err := s.ledger.Share(id, callerID, req.GranteeID, domain.Permission(req.Permission)); err != nil {
		return err
	}

	note, err := s.ledger.Get(id, callerID)
	if err != nil {
		return err
	}

	s.persistNote(note)
	s.broadcast(websocket.TypeNoteShared, callerID, note)

	return nil
}

// CountAll returns the id counter: notes ever created, deletions
// included.
func (s *NoteService) CountAll() uint64 {
	return s.ledger.Count()
}

// CountOwned returns the caller's live note count.
func (s *NoteService) CountOwned(callerID string) uint64 {
	return s.ledger.CountOwnedBy(callerID)
}

func (s *NoteService) afterMutation(callerID string, id uint64, event websocket.MessageType) (*domain.NoteResponse, error) {
	note, err := s.ledger.Get(id, callerID)
	if err != nil {
		return nil, err
	}

	s.persistNote(note)
	s.broadcast(event, callerID, note)

	return toResponse(note), nil
}

// persistNote mirrors a live note and its grants. Mirror failures are
// logged, not surfaced: the ledger has already applied the operation
// and remains authoritative.
func (s *NoteService) persistNote(note *domain.Note) {
	if s.repo == nil {
		return
	}
	grants, err := s.ledger.Grants(note.ID)
	if err != nil {
		return
	}
	if err := s.repo.SaveNote(note, grants); err != nil {
		log.Printf("failed to mirror note %d: %v", note.ID, err)
	}
}

func (s *NoteService) persistCounter() {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveCounter(s.ledger.Count()); err != nil {
		log.Printf("failed to mirror note counter: %v", err)
	}
}

// audience lists every principal with a live interest in the note: its
// owner plus all current grantees.
func (s *NoteService) audience(id uint64) []string {
	owner, err := s.ledger.Owner(id)
	if err != nil {
		return nil
	}
	userIDs := []string{owner}
	if grants, err := s.ledger.Grants(id); err == nil {
		for _, g := range grants {
			userIDs = append(userIDs, g.GranteeID)
		}
	}
	return userIDs
}

func (s *NoteService) broadcast(event websocket.MessageType, actor string, note *domain.Note) {
	data, err := json.Marshal(toResponse(note))
	if err != nil {
		return
	}
	s.broadcastTo(event, actor, note.ID, data, s.audience(note.ID))
}

func (s *NoteService) broadcastTo(event websocket.MessageType, actor string, noteID uint64, data json.RawMessage, audience []string) {
	if s.ws == nil || len(audience) == 0 {
		return
	}

	msg, err := websocket.NewMessage(event, &websocket.NoteEventPayload{
		NoteID: noteID,
		Actor:  actor,
		Note:   data,
	})
	if err != nil {
		return
	}

	if err := s.ws.BroadcastToUsers(audience, msg); err != nil {
		log.Printf("failed to broadcast %s for note %d: %v", event, noteID, err)
	}
}

func toResponse(note *domain.Note) *domain.NoteResponse {
	return &domain.NoteResponse{
		ID:          note.ID,
		Owner:       note.Owner,
		Title:       note.Title,
		Content:     note.Content,
		Tags:        note.Tags,
		Folder:      note.Folder,
		IsEncrypted: note.IsEncrypted,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
}

func toResponses(notes []*domain.Note) []*domain.NoteResponse {
	responses := make([]*domain.NoteResponse, 0, len(notes))
	for _, n := range notes {
		responses = append(responses, toResponse(n))
	}
	return responses
}
