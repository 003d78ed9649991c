// Package narrative counts what the player actually does, so the game
// can report engagement and per-relationship history. Counters are
// append-only: nothing outside Record mutates them.
package narrative

import "encoding/json"

// Tracker accumulates action and relationship counters for a session.
type Tracker struct {
	actions       map[string]int
	relationships map[string]int
	total         int
}

func NewTracker() *Tracker {
	return &Tracker{
		actions:       make(map[string]int),
		relationships: make(map[string]int),
	}
}

// Record notes one occurrence of an action kind, attributed to an
// entity when the action had a target.
func (t *Tracker) Record(actionKind, entityID string) {
	t.total++
	t.actions[actionKind]++
	if entityID != "" {
		t.relationships[entityID]++
	}
}

// Snapshot is a read-only aggregate view of the tracker.
type Snapshot struct {
	TotalActions  int            `json:"total_actions"`
	ActionCounts  map[string]int `json:"action_counts"`
	Relationships map[string]int `json:"relationships"`
	// Engagement is the share of recorded actions that involved
	// another inhabitant.
	Engagement float64 `json:"engagement"`
}

// Snapshot returns the current aggregate view. The maps are copies;
// mutating them does not touch the tracker.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		TotalActions:  t.total,
		ActionCounts:  make(map[string]int, len(t.actions)),
		Relationships: make(map[string]int, len(t.relationships)),
	}
	for k, v := range t.actions {
		s.ActionCounts[k] = v
	}
	social := 0
	for k, v := range t.relationships {
		s.Relationships[k] = v
		social += v
	}
	if t.total > 0 {
		s.Engagement = float64(social) / float64(t.total)
	}
	return s
}

type trackerJSON struct {
	Actions       map[string]int `json:"actions"`
	Relationships map[string]int `json:"relationships"`
	Total         int            `json:"total"`
}

func (t *Tracker) MarshalJSON() ([]byte, error) {
	return json.Marshal(trackerJSON{
		Actions:       t.actions,
		Relationships: t.relationships,
		Total:         t.total,
	})
}

func (t *Tracker) UnmarshalJSON(data []byte) error {
	var tj trackerJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}
	t.actions = tj.Actions
	t.relationships = tj.Relationships
	t.total = tj.Total
	if t.actions == nil {
		t.actions = make(map[string]int)
	}
	if t.relationships == nil {
		t.relationships = make(map[string]int)
	}
	return nil
}
