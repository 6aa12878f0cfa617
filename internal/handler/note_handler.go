package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"sorters-server/internal/domain"
	"sorters-server/internal/ledger"
	"sorters-server/internal/middleware"
	"sorters-server/internal/service"
	"sorters-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	note, err := h.service.Create(middleware.GetUserID(r), &req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.service.ListOwned(middleware.GetUserID(r)))
}

func (h *NoteHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.service.ListShared(middleware.GetUserID(r)))
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.service.Get(middleware.GetUserID(r), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	note, err := h.service.UpdateTitle(middleware.GetUserID(r), id, req.Title)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	note, err := h.service.UpdateContent(middleware.GetUserID(r), id, req.Content)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req domain.AddTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	note, err := h.service.AddTag(middleware.GetUserID(r), id, req.Tag)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) UpdateTags(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	note, err := h.service.UpdateTags(middleware.GetUserID(r), id, req.Tags)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(middleware.GetUserID(r), id); err != nil {
		writeLedgerError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Note deleted successfully"})
}

func (h *NoteHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req domain.ShareNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.service.Share(middleware.GetUserID(r), id, &req); err != nil {
		writeLedgerError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Note shared successfully"})
}

// Count answers the global counter by default; scope=mine narrows it to
// the caller's live notes.
func (h *NoteHandler) Count(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	switch scope {
	case "", "all":
		response.Success(w, domain.CountResponse{Count: h.service.CountAll(), Scope: "all"})
	case "mine":
		response.Success(w, domain.CountResponse{
			Count: h.service.CountOwned(middleware.GetUserID(r)),
			Scope: "mine",
		})
	default:
		response.BadRequest(w, "Unknown scope, expected all or mine")
	}
}

func noteID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(w, "Invalid note ID")
		return 0, false
	}
	return id, true
}

func writeLedgerError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, verr.Error())
	case errors.Is(err, ledger.ErrNotFound):
		response.NotFound(w, "Note not found")
	case errors.Is(err, ledger.ErrNotAuthorized):
		response.Forbidden(w, "Not authorized")
	default:
		response.InternalError(w, "Internal server error")
	}
}
