// Package reputation tracks the player's standing with tavern
// inhabitants and factions.
package reputation

import "encoding/json"

// Tier is a named band of reputation scores.
type Tier string

const (
	TierHostile    Tier = "hostile"
	TierUnfriendly Tier = "unfriendly"
	TierNeutral    Tier = "neutral"
	TierFriendly   Tier = "friendly"
	TierTrusted    Tier = "trusted"
)

// Threshold bands. Scores are unbounded integers; the bands are
// configuration, not mechanism.
const (
	hostileBelow  = -10
	unfriendlyMax = -1
	neutralMax    = 4
	friendlyMax   = 14
)

// TierFor maps a score to its tier. Pure and deterministic.
func TierFor(score int) Tier {
	switch {
	case score < hostileBelow:
		return TierHostile
	case score <= unfriendlyMax:
		return TierUnfriendly
	case score <= neutralMax:
		return TierNeutral
	case score <= friendlyMax:
		return TierFriendly
	default:
		return TierTrusted
	}
}

// Ledger maps entity ids to reputation scores.
type Ledger struct {
	scores map[string]int
}

func NewLedger() *Ledger {
	return &Ledger{scores: make(map[string]int)}
}

// Adjust moves the score for an entity by delta.
func (l *Ledger) Adjust(entityID string, delta int) int {
	l.scores[entityID] += delta
	return l.scores[entityID]
}

// Score returns the current score for an entity; unseen entities are 0.
func (l *Ledger) Score(entityID string) int {
	return l.scores[entityID]
}

// Tier returns the tier for an entity's current score.
func (l *Ledger) Tier(entityID string) Tier {
	return TierFor(l.scores[entityID])
}

// Scores returns a copy of the full ledger.
func (l *Ledger) Scores() map[string]int {
	out := make(map[string]int, len(l.scores))
	for k, v := range l.scores {
		out[k] = v
	}
	return out
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.scores)
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	scores := make(map[string]int)
	if err := json.Unmarshal(data, &scores); err != nil {
		return err
	}
	l.scores = scores
	return nil
}
