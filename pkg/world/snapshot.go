package world

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tavernkeep/tavern-engine/pkg/clock"
	"github.com/tavernkeep/tavern-engine/pkg/narrative"
	"github.com/tavernkeep/tavern-engine/pkg/reputation"
	"github.com/tavernkeep/tavern-engine/pkg/tavern"
)

// Snapshot is the persistence shape of a session. The engine owns the
// conversion in both directions but no storage mechanism; the storage
// collaborator treats GameData as opaque.
type Snapshot struct {
	SessionID  uuid.UUID       `json:"session_id"`
	PlayerName string          `json:"player_name"`
	Room       string          `json:"room"`
	Inventory  map[string]int  `json:"inventory,omitempty"`
	Flags      map[string]bool `json:"flags,omitempty"`
	GameData   json.RawMessage `json:"game_data,omitempty"`
}

// gameData is the engine-private payload inside Snapshot.GameData.
type gameData struct {
	Tavern     string             `json:"tavern"`
	Hours      float64            `json:"hours"`
	Gold       int                `json:"gold"`
	Seed       int64              `json:"seed"`
	Draws      uint64             `json:"draws,omitempty"`
	Presence   map[string]bool    `json:"presence,omitempty"`
	Reputation *reputation.Ledger `json:"reputation,omitempty"`
	Narrative  *narrative.Tracker `json:"narrative,omitempty"`
}

// ToSnapshot converts the session into its persistence shape. Pure:
// no storage side effects, no state mutation.
func (s *State) ToSnapshot() (*Snapshot, error) {
	gd := gameData{
		Tavern:     s.Tavern.Name,
		Hours:      float64(s.Clock.Now()),
		Gold:       s.Player.Gold,
		Seed:       s.Seed,
		Draws:      s.RandDraws(),
		Presence:   s.NPCs.PresenceFlags(),
		Reputation: s.Reputation,
		Narrative:  s.Narrative,
	}
	data, err := json.Marshal(gd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game data: %w", err)
	}

	inv := make(map[string]int, len(s.Player.Inventory))
	for k, v := range s.Player.Inventory {
		inv[k] = v
	}
	flags := make(map[string]bool, len(s.Flags))
	for k, v := range s.Flags {
		flags[k] = v
	}

	return &Snapshot{
		SessionID:  s.ID,
		PlayerName: s.Player.Name,
		Room:       s.Player.Room,
		Inventory:  inv,
		Flags:      flags,
		GameData:   data,
	}, nil
}

// TavernName extracts which tavern content a snapshot was built
// against, so the storage collaborator can load the right bundle.
func (snap *Snapshot) TavernName() (string, error) {
	var gd gameData
	if err := json.Unmarshal(snap.GameData, &gd); err != nil {
		return "", fmt.Errorf("failed to decode game data: %w", err)
	}
	if gd.Tavern == "" {
		return "", fmt.Errorf("snapshot carries no tavern reference")
	}
	return gd.Tavern, nil
}

// LoadSnapshot rebuilds a live session from its persistence shape and
// the tavern content it was created against. Pure conversion: the
// caller owns loading both inputs.
func LoadSnapshot(snap *Snapshot, tv *tavern.Tavern, logger *slog.Logger) (*State, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is required")
	}
	if tv == nil {
		return nil, fmt.Errorf("tavern content is required")
	}
	if err := tv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tavern content: %w", err)
	}

	var gd gameData
	if err := json.Unmarshal(snap.GameData, &gd); err != nil {
		return nil, fmt.Errorf("failed to decode game data: %w", err)
	}

	st, err := NewState(tv, snap.PlayerName, gd.Seed, logger)
	if err != nil {
		return nil, err
	}

	st.ID = snap.SessionID
	st.Clock = clock.NewAt(gd.Hours)
	st.Clock.Subscribe(st.NPCs)
	st.NPCs.RestorePresence(gd.Presence)

	if _, ok := tv.Rooms[snap.Room]; ok {
		st.Player.Room = snap.Room
	}
	st.Player.Gold = gd.Gold
	if st.Player.Gold < 0 {
		st.Player.Gold = 0
	}
	st.Player.Inventory = make(map[string]int, len(snap.Inventory))
	for k, v := range snap.Inventory {
		if v > 0 {
			st.Player.Inventory[k] = v
		}
	}
	st.Flags = make(map[string]bool, len(snap.Flags))
	for k, v := range snap.Flags {
		st.Flags[k] = v
	}
	if gd.Reputation != nil {
		st.Reputation = gd.Reputation
	}
	if gd.Narrative != nil {
		st.Narrative = gd.Narrative
	}

	// Resume the random stream where the saved session stopped;
	// reseeding alone would replay the same draws every restore.
	st.fastForwardRand(gd.Draws)

	return st, nil
}
