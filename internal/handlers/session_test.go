package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/tavern-engine/internal/storage"
	"github.com/tavernkeep/tavern-engine/pkg/npc"
	"github.com/tavernkeep/tavern-engine/pkg/tavern"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func testTavern() *tavern.Tavern {
	return &tavern.Tavern{
		Name:        "The Oak & Ember",
		Description: "A low-beamed tavern on the crossroads.",
		Rooms: map[string]tavern.Room{
			"taproom": {Name: "Taproom", Description: "Smoke, song, and spilled ale.", Exits: []string{"cellar"}},
			"cellar":  {Name: "Cellar", Description: "Barrels in the dark.", Exits: []string{"taproom"}},
		},
		NPCs: []*npc.NPC{
			{ID: "greta", Name: "Greta", Disposition: npc.DispositionFriendly, Role: npc.RoleBarkeep, Room: "taproom", Schedule: npc.Schedule{{Start: 8, End: 24}}},
		},
		Catalog: map[string]tavern.Item{
			"ale": {Name: "Ale", Price: 2, SellPrice: 1},
		},
		OpeningRoom:  "taproom",
		OpeningHour:  9,
		StartingGold: 20,
		RoomRate:     5,
	}
}

func testStorage() *storage.MockStorage {
	ms := storage.NewMockStorage()
	ms.AddTavern("oak_and_ember.yaml", testTavern())
	return ms
}

func createSession(t *testing.T, h *SessionHandler, body string) SessionResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSessionHandler_Create(t *testing.T) {
	h := NewSessionHandler(testLogger(), testStorage())

	resp := createSession(t, h, `{"tavern":"The Oak & Ember","player_name":"Wren","seed":42}`)
	assert.NotEqual(t, uuid.Nil, resp.SessionID)
	assert.Equal(t, "Wren", resp.PlayerName)
	assert.Equal(t, "The Oak & Ember", resp.Tavern)
	assert.Equal(t, "taproom", resp.Room)
	assert.Equal(t, 20, resp.Gold)
	assert.InDelta(t, 9, resp.Hours, 1e-9)
	assert.Contains(t, resp.Message, "Smoke, song, and spilled ale.")
	assert.Contains(t, resp.Message, "Greta")
}

func TestSessionHandler_CreateByFilename(t *testing.T) {
	h := NewSessionHandler(testLogger(), testStorage())
	resp := createSession(t, h, `{"tavern":"oak_and_ember.yaml","player_name":"Moss"}`)
	assert.Equal(t, "The Oak & Ember", resp.Tavern)
}

func TestSessionHandler_CreateValidation(t *testing.T) {
	h := NewSessionHandler(testLogger(), testStorage())

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing tavern", `{"player_name":"Wren"}`},
		{"missing player name", `{"tavern":"The Oak & Ember"}`},
		{"unknown tavern", `{"tavern":"The Prancing Pony","player_name":"Wren"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSessionHandler_ReadAndDelete(t *testing.T) {
	ms := testStorage()
	h := NewSessionHandler(testLogger(), ms)

	created := createSession(t, h, `{"tavern":"The Oak & Ember","player_name":"Wren","seed":7}`)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.SessionID.String(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+created.SessionID.String(), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.SessionID.String(), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_BadRequests(t *testing.T) {
	h := NewSessionHandler(testLogger(), testStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPatch, "/v1/sessions/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
