package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tavernkeep/tavern-engine/internal/storage"
	"github.com/tavernkeep/tavern-engine/pkg/dispatch"
	"github.com/tavernkeep/tavern-engine/pkg/parser"
	"github.com/tavernkeep/tavern-engine/pkg/world"
)

// CommandHandler runs one player command against a session.
// Route: POST /v1/sessions/{id}/command
//
// The full cycle happens here: load snapshot, rebuild the session,
// parse, dispatch, persist the new snapshot, respond. A save failure
// means the command did not happen as far as the client is concerned.
type CommandHandler struct {
	storage    storage.Storage
	parser     *parser.Parser
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

func NewCommandHandler(logger *slog.Logger, storage storage.Storage, p *parser.Parser) *CommandHandler {
	return &CommandHandler{
		storage:    storage,
		parser:     p,
		dispatcher: dispatch.New(logger),
		logger:     logger,
	}
}

// CommandRequest carries one turn of raw player input.
type CommandRequest struct {
	Input string `json:"input"`
}

// CommandResponse pairs the dispatch outcome with the resulting
// session view.
type CommandResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Session SessionResponse `json:"session"`
}

func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	idStr, tail, _ := strings.Cut(rest, "/")
	if tail != "command" {
		respondError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		respondError(w, h.logger, http.StatusBadRequest, "input field is required")
		return
	}

	snap, err := h.storage.LoadSnapshot(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if snap == nil {
		respondError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	st, err := h.rebuild(r, snap)
	if err != nil {
		h.logger.Error("Failed to rebuild session", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to rebuild session")
		return
	}

	cmd := h.parser.Parse(r.Context(), req.Input)
	res := h.dispatcher.Dispatch(cmd, st)

	newSnap, err := st.ToSnapshot()
	if err != nil {
		h.logger.Error("Failed to snapshot session", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}
	if err := h.storage.SaveSnapshot(r.Context(), id, newSnap); err != nil {
		h.logger.Error("Failed to save session", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, CommandResponse{
		Success: res.Success,
		Message: res.Message,
		Session: sessionView(st, res),
	})
}

// rebuild loads the tavern content a snapshot references and restores
// the live session from the pair.
func (h *CommandHandler) rebuild(r *http.Request, snap *world.Snapshot) (*world.State, error) {
	name, err := snap.TavernName()
	if err != nil {
		return nil, err
	}
	filename, err := resolveTavernFile(r.Context(), h.storage, name)
	if err != nil {
		return nil, err
	}
	tv, err := h.storage.GetTavern(r.Context(), filename)
	if err != nil {
		return nil, err
	}
	return world.LoadSnapshot(snap, tv, h.logger)
}
