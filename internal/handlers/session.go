// Package handlers exposes the engine over HTTP: session lifecycle,
// command dispatch and health.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tavernkeep/tavern-engine/internal/storage"
	"github.com/tavernkeep/tavern-engine/pkg/command"
	"github.com/tavernkeep/tavern-engine/pkg/dispatch"
	"github.com/tavernkeep/tavern-engine/pkg/world"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, body interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	respondJSON(w, logger, status, ErrorResponse{Error: msg})
}

// SessionHandler manages session lifecycle.
// Routes:
// POST /v1/sessions         - Create a new session
// GET /v1/sessions/{id}     - Read a session snapshot
// DELETE /v1/sessions/{id}  - End a session
type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSessionHandler(logger *slog.Logger, storage storage.Storage) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

// sessionID pulls the uuid segment out of /v1/sessions/{id}[/...].
// Returns uuid.Nil when no id is present.
func sessionID(path string) (uuid.UUID, error) {
	rest := strings.Trim(strings.TrimPrefix(path, "/v1/sessions"), "/")
	if rest == "" {
		return uuid.Nil, nil
	}
	idStr, _, _ := strings.Cut(rest, "/")
	return uuid.Parse(idStr)
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := sessionID(r.URL.Path)
	if err != nil {
		h.logger.Warn("Invalid session ID", "path", r.URL.Path, "error", err)
		respondError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)

	case http.MethodGet:
		if id == uuid.Nil {
			respondError(w, h.logger, http.StatusBadRequest, "Session ID is required for GET requests")
			return
		}
		h.handleRead(w, r, id)

	case http.MethodDelete:
		if id == uuid.Nil {
			respondError(w, h.logger, http.StatusBadRequest, "Session ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, id)

	default:
		h.logger.Warn("Method not allowed for sessions endpoint", "method", r.Method)
		respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

// CreateSessionRequest starts a session in a tavern. Tavern accepts a
// display name or content filename. A zero seed means "pick one".
type CreateSessionRequest struct {
	Tavern     string `json:"tavern"`
	PlayerName string `json:"player_name"`
	Seed       int64  `json:"seed,omitempty"`
}

// SessionResponse is the client view of a session after any operation.
type SessionResponse struct {
	SessionID  uuid.UUID      `json:"session_id"`
	PlayerName string         `json:"player_name"`
	Tavern     string         `json:"tavern"`
	Room       string         `json:"room"`
	Gold       int            `json:"gold"`
	Hours      float64        `json:"hours"`
	Message    string         `json:"message,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

func sessionView(st *world.State, res command.Result) SessionResponse {
	return SessionResponse{
		SessionID:  st.ID,
		PlayerName: st.Player.Name,
		Tavern:     st.Tavern.Name,
		Room:       st.Player.Room,
		Gold:       st.Player.Gold,
		Hours:      float64(st.Clock.Now()),
		Message:    res.Message,
		Data:       res.Data,
	}
}

// resolveTavernFile maps a tavern reference (display name or filename)
// to a content filename.
func resolveTavernFile(ctx context.Context, s storage.Storage, ref string) (string, error) {
	if strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") {
		return ref, nil
	}
	taverns, err := s.ListTaverns(ctx)
	if err != nil {
		return "", err
	}
	for name, filename := range taverns {
		if strings.EqualFold(name, ref) {
			return filename, nil
		}
	}
	// Fall through to a filename guess so a bare id still works.
	return ref + ".yaml", nil
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new session")

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		respondError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if req.Tavern == "" {
		respondError(w, h.logger, http.StatusBadRequest, "tavern field is required")
		return
	}
	if req.PlayerName == "" {
		respondError(w, h.logger, http.StatusBadRequest, "player_name field is required")
		return
	}

	filename, err := resolveTavernFile(r.Context(), h.storage, req.Tavern)
	if err != nil {
		h.logger.Error("Failed to list taverns", "error", err)
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to resolve tavern")
		return
	}

	tv, err := h.storage.GetTavern(r.Context(), filename)
	if err != nil {
		h.logger.Warn("Failed to load tavern", "tavern", req.Tavern, "error", err)
		respondError(w, h.logger, http.StatusBadRequest, "Failed to load tavern: "+err.Error())
		return
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	st, err := world.NewState(tv, req.PlayerName, seed, h.logger)
	if err != nil {
		h.logger.Error("Failed to create session state", "error", err)
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	snap, err := st.ToSnapshot()
	if err != nil {
		h.logger.Error("Failed to snapshot new session", "error", err)
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}
	if err := h.storage.SaveSnapshot(r.Context(), st.ID, snap); err != nil {
		h.logger.Error("Failed to save new session", "error", err, "id", st.ID.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	// Open with the room description so clients have something to show.
	look := dispatch.New(h.logger).Dispatch(command.Command{
		Action:     command.ActionLook,
		Confidence: 1,
	}, st)

	h.logger.Debug("Session created", "id", st.ID.String(), "tavern", tv.Name)
	respondJSON(w, h.logger, http.StatusCreated, sessionView(st, look))
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
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

	respondJSON(w, h.logger, http.StatusOK, snap)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteSnapshot(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.logger.Debug("Session deleted", "id", id.String())
	w.WriteHeader(http.StatusNoContent)
}
