package npc

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/tavernkeep/tavern-engine/pkg/clock"
)

// Registry owns every NPC in a session and re-derives presence on each
// clock tick. It never deletes NPCs, only toggles their presence.
type Registry struct {
	npcs   map[string]*NPC
	order  []string
	roll   func() float64
	logger *slog.Logger

	// lastEval guards idempotence: re-evaluating at the same clock
	// value must not run duplicate departure trials.
	lastEval  clock.GameTime
	evaluated bool
}

// Ensure Registry can be wired to the clock.
var _ clock.TickListener = (*Registry)(nil)

// NewRegistry creates a registry whose departure draws come from the
// given seeded source. A nil source falls back to the global rand.
func NewRegistry(rng *rand.Rand, logger *slog.Logger) *Registry {
	roll := rand.Float64
	if rng != nil {
		roll = rng.Float64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		npcs:   make(map[string]*NPC),
		roll:   roll,
		logger: logger,
	}
}

// Add registers an NPC. IDs are unique; adding an existing id is an
// error.
func (r *Registry) Add(n *NPC) error {
	if n == nil || n.ID == "" {
		return fmt.Errorf("npc must have an id")
	}
	if _, exists := r.npcs[n.ID]; exists {
		return fmt.Errorf("duplicate npc id %q", n.ID)
	}
	if err := n.Schedule.Validate(); err != nil {
		return fmt.Errorf("npc %q schedule: %w", n.ID, err)
	}
	r.npcs[n.ID] = n
	r.order = append(r.order, n.ID)
	return nil
}

// Get returns the NPC with the given id, or nil.
func (r *Registry) Get(id string) *NPC {
	return r.npcs[id]
}

// Present reports whether the NPC with the given id is currently in
// the tavern. O(1).
func (r *Registry) Present(id string) bool {
	n, ok := r.npcs[id]
	return ok && n.Present
}

// PresentIn lists NPCs currently present in the given room, in
// insertion order.
func (r *Registry) PresentIn(room string) []*NPC {
	var out []*NPC
	for _, id := range r.order {
		n := r.npcs[id]
		if n.Present && n.Room == room {
			out = append(out, n)
		}
	}
	return out
}

// All returns every NPC in insertion order.
func (r *Registry) All() []*NPC {
	out := make([]*NPC, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.npcs[id])
	}
	return out
}

// ForcePresent overrides scheduling and marks the NPC present. The
// override holds only until the next tick's deterministic exit check.
func (r *Registry) ForcePresent(id string) error {
	n, ok := r.npcs[id]
	if !ok {
		return fmt.Errorf("unknown npc %q", id)
	}
	n.Present = true
	n.leftEarly = false
	return nil
}

// OnTick re-derives presence for every NPC at the new time. Entry and
// exit are schedule-driven and deterministic; while present inside an
// interval, a single draw against DepartChance decides early
// departure. Repeat calls for the same clock value are no-ops.
func (r *Registry) OnTick(from, to clock.GameTime) {
	if r.evaluated && to == r.lastEval {
		return
	}
	r.lastEval = to
	r.evaluated = true

	hour := to.HourOfDay()
	for _, id := range r.order {
		n := r.npcs[id]
		scheduled := n.Schedule.Contains(hour)

		switch {
		case !scheduled:
			if n.Present {
				r.logger.Debug("npc left for the day", "npc", n.ID, "hour", hour)
			}
			n.Present = false
			n.leftEarly = false

		case n.Present:
			if n.DepartChance > 0 && r.roll() < n.DepartChance {
				n.Present = false
				n.leftEarly = true
				r.logger.Debug("npc departed early", "npc", n.ID, "hour", hour)
			}

		case !n.leftEarly:
			n.Present = true
			r.logger.Debug("npc arrived", "npc", n.ID, "hour", hour)
		}
	}
}

// PresenceFlags returns a copy of the current presence map, used when
// snapshotting a session.
func (r *Registry) PresenceFlags() map[string]bool {
	out := make(map[string]bool, len(r.npcs))
	for id, n := range r.npcs {
		out[id] = n.Present
	}
	return out
}

// RestorePresence applies saved presence flags, used when restoring a
// session snapshot. Unknown ids are ignored.
func (r *Registry) RestorePresence(flags map[string]bool) {
	for id, present := range flags {
		if n, ok := r.npcs[id]; ok {
			n.Present = present
		}
	}
}
