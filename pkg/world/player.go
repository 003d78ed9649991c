package world

import (
	"fmt"

	"github.com/jwebster45206/d20"
)

// Default ability scores for a fresh character. The tavern game only
// leans on luck and charisma, but the sheet carries a full d20 actor
// so content can add checks later.
var defaultAttributes = map[string]int{
	"luck":     10,
	"charisma": 10,
}

// Player is the state of the player character within one session.
type Player struct {
	Name      string         `json:"name"`
	Gold      int            `json:"gold"`
	Inventory map[string]int `json:"inventory"`
	Room      string         `json:"room"`

	// Sheet is the d20 character sheet backing attribute checks.
	// Rebuilt from content on load, never persisted.
	Sheet *d20.Actor `json:"-"`
}

// NewPlayer creates a player with a default character sheet.
func NewPlayer(name string, gold int, room string) (*Player, error) {
	if name == "" {
		name = "Traveler"
	}
	if gold < 0 {
		return nil, fmt.Errorf("starting gold must not be negative")
	}

	actor, err := d20.NewActor(name).
		WithHP(10).
		WithAC(10).
		WithAttributes(defaultAttributes).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build character sheet: %w", err)
	}

	return &Player{
		Name:      name,
		Gold:      gold,
		Inventory: make(map[string]int),
		Room:      room,
		Sheet:     actor,
	}, nil
}

// AttributeModifier returns the d20 modifier for a sheet attribute,
// zero when the attribute is absent.
func (p *Player) AttributeModifier(key string) int {
	if p.Sheet == nil {
		return 0
	}
	if score, ok := p.Sheet.Attribute(key); ok {
		return (score - 10) / 2
	}
	return 0
}

// Has reports whether the player carries at least qty of an item.
func (p *Player) Has(itemID string, qty int) bool {
	return p.Inventory[itemID] >= qty
}
