// Package world holds the mutable state of one game session: the
// player, the clock-driven NPC registry, economy, reputation and
// narrative tracking. Each session owns exactly one State; there is no
// sharing between sessions.
package world

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/tavernkeep/tavern-engine/pkg/clock"
	"github.com/tavernkeep/tavern-engine/pkg/narrative"
	"github.com/tavernkeep/tavern-engine/pkg/npc"
	"github.com/tavernkeep/tavern-engine/pkg/reputation"
	"github.com/tavernkeep/tavern-engine/pkg/tavern"
)

// State is the complete mutable state of one session. The dispatcher
// is its sole mutator; one command is in flight at a time.
type State struct {
	ID     uuid.UUID
	Tavern *tavern.Tavern

	Clock      *clock.Clock
	NPCs       *npc.Registry
	Player     *Player
	Reputation *reputation.Ledger
	Narrative  *narrative.Tracker
	Flags      map[string]bool

	// Rand is the session's seeded random source. Seed is retained so
	// the session stays reproducible across save/load; src counts draws
	// so a restored session resumes the stream instead of replaying it.
	Rand *rand.Rand
	Seed int64
	src  *countingSource
}

// countingSource wraps the stdlib source and counts state advances.
// Every Rand method consumes one or more advances; the count is the
// session's position in the stream.
type countingSource struct {
	src   rand.Source64
	draws uint64
}

var _ rand.Source64 = (*countingSource)(nil)

func newCountingSource(seed int64) *countingSource {
	return &countingSource{src: rand.NewSource(seed).(rand.Source64)}
}

func (c *countingSource) Int63() int64 {
	c.draws++
	return c.src.Int63()
}

func (c *countingSource) Uint64() uint64 {
	c.draws++
	return c.src.Uint64()
}

func (c *countingSource) Seed(seed int64) {
	c.draws = 0
	c.src.Seed(seed)
}

// RandDraws reports how many values the session's random source has
// produced so far.
func (s *State) RandDraws() uint64 {
	return s.src.draws
}

// fastForwardRand discards values until the source has produced n,
// restoring a saved stream position.
func (s *State) fastForwardRand(n uint64) {
	for s.src.draws < n {
		s.src.Int63()
	}
}

// NewState starts a fresh session in the given tavern. The seed drives
// every probabilistic outcome in the session.
func NewState(tv *tavern.Tavern, playerName string, seed int64, logger *slog.Logger) (*State, error) {
	if tv == nil {
		return nil, fmt.Errorf("tavern content is required")
	}
	if err := tv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tavern content: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	src := newCountingSource(seed)
	rng := rand.New(src)
	c := clock.NewAt(tv.OpeningHour)

	registry := npc.NewRegistry(rng, logger)
	for _, n := range tv.NPCs {
		// Sessions own their NPCs; content stays immutable.
		inhabitant := *n
		if err := registry.Add(&inhabitant); err != nil {
			return nil, err
		}
	}
	c.Subscribe(registry)

	player, err := NewPlayer(playerName, tv.StartingGold, tv.OpeningRoom)
	if err != nil {
		return nil, err
	}

	st := &State{
		ID:         uuid.New(),
		Tavern:     tv,
		Clock:      c,
		NPCs:       registry,
		Player:     player,
		Reputation: reputation.NewLedger(),
		Narrative:  narrative.NewTracker(),
		Flags:      make(map[string]bool),
		Rand:       rng,
		Seed:       seed,
		src:        src,
	}

	// Derive opening presence from the schedules before the first
	// command arrives.
	registry.OnTick(c.Now(), c.Now())

	return st, nil
}

// Room returns the player's current room.
func (s *State) Room() tavern.Room {
	room := s.Tavern.Rooms[s.Player.Room]
	room.ID = s.Player.Room
	return room
}

// CanMoveTo reports whether target is a graph neighbor of the player's
// current room.
func (s *State) CanMoveTo(target string) bool {
	for _, exit := range s.Room().Exits {
		if exit == target {
			return true
		}
	}
	return false
}

// ResolveRoom matches a player-supplied room reference (id or display
// name) against the room graph.
func (s *State) ResolveRoom(ref string) (tavern.Room, bool) {
	if room, ok := s.Tavern.Rooms[ref]; ok {
		room.ID = ref
		return room, true
	}
	for id, room := range s.Tavern.Rooms {
		if strings.EqualFold(room.Name, ref) {
			room.ID = id
			return room, true
		}
	}
	return tavern.Room{}, false
}
