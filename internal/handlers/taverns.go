package handlers

import (
	"log/slog"
	"net/http"

	"github.com/tavernkeep/tavern-engine/internal/storage"
)

// TavernsHandler lists available tavern content.
// Route: GET /v1/taverns
type TavernsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewTavernsHandler(logger *slog.Logger, storage storage.Storage) *TavernsHandler {
	return &TavernsHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *TavernsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	taverns, err := h.storage.ListTaverns(r.Context())
	if err != nil {
		h.logger.Error("Failed to list taverns", "error", err)
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list taverns")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, taverns)
}
