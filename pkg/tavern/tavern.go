// Package tavern is the content model for a playable tavern: its room
// graph, inhabitants, item catalog and opening state. Content is data
// supplied externally; the engine only validates and operates on it.
package tavern

import (
	"fmt"

	"github.com/tavernkeep/tavern-engine/pkg/npc"
)

// Room is a place in the tavern. Rooms form a fixed graph; the engine
// validates membership and reachability, nothing more.
type Room struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Exits       []string `json:"exits" yaml:"exits"` // neighbor room ids
}

// Item is a catalog entry the player can buy or sell.
type Item struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Price     int    `json:"price" yaml:"price"`           // buy price in gold
	SellPrice int    `json:"sell_price" yaml:"sell_price"` // what the house pays
}

// Tavern is the full content bundle for one establishment.
type Tavern struct {
	Name         string          `json:"name" yaml:"name"`
	Description  string          `json:"description" yaml:"description"`
	Rooms        map[string]Room `json:"rooms" yaml:"rooms"`
	NPCs         []*npc.NPC      `json:"npcs" yaml:"npcs"`
	Catalog      map[string]Item `json:"catalog" yaml:"catalog"`
	OpeningRoom  string          `json:"opening_room" yaml:"opening_room"`
	OpeningHour  float64         `json:"opening_hour" yaml:"opening_hour"` // hour-of-day a session starts at
	StartingGold int             `json:"starting_gold" yaml:"starting_gold"`
	RoomRate     int             `json:"room_rate" yaml:"room_rate"` // gold per night
}

// Validate checks the content bundle for structural problems: dangling
// exits, NPCs in unknown rooms, bad schedules and non-positive prices.
func (t *Tavern) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tavern must have a name")
	}
	if len(t.Rooms) == 0 {
		return fmt.Errorf("tavern must have at least one room")
	}
	if _, ok := t.Rooms[t.OpeningRoom]; !ok {
		return fmt.Errorf("opening room %q is not a room", t.OpeningRoom)
	}
	for id, room := range t.Rooms {
		if room.ID != "" && room.ID != id {
			return fmt.Errorf("room key %q disagrees with room id %q", id, room.ID)
		}
		for _, exit := range room.Exits {
			if _, ok := t.Rooms[exit]; !ok {
				return fmt.Errorf("room %q has exit to unknown room %q", id, exit)
			}
		}
	}
	seen := make(map[string]bool)
	for _, n := range t.NPCs {
		if n.ID == "" {
			return fmt.Errorf("npc %q must have an id", n.Name)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate npc id %q", n.ID)
		}
		seen[n.ID] = true
		if n.Room != "" {
			if _, ok := t.Rooms[n.Room]; !ok {
				return fmt.Errorf("npc %q placed in unknown room %q", n.ID, n.Room)
			}
		}
		if err := n.Schedule.Validate(); err != nil {
			return fmt.Errorf("npc %q schedule: %w", n.ID, err)
		}
		if n.DepartChance < 0 || n.DepartChance > 1 {
			return fmt.Errorf("npc %q depart_chance %v outside [0,1]", n.ID, n.DepartChance)
		}
	}
	for id, item := range t.Catalog {
		if item.Price <= 0 {
			return fmt.Errorf("item %q has non-positive price %d", id, item.Price)
		}
		if item.SellPrice < 0 {
			return fmt.Errorf("item %q has negative sell price %d", id, item.SellPrice)
		}
	}
	if t.OpeningHour < 0 || t.OpeningHour >= 24 {
		return fmt.Errorf("opening hour %v outside [0,24)", t.OpeningHour)
	}
	if t.StartingGold < 0 {
		return fmt.Errorf("starting gold must not be negative")
	}
	if t.RoomRate <= 0 {
		return fmt.Errorf("room rate must be positive")
	}
	return nil
}

// FindNPC resolves an id or display name (case handled by the caller)
// against the inhabitant list.
func (t *Tavern) FindNPC(idOrName string) *npc.NPC {
	for _, n := range t.NPCs {
		if n.ID == idOrName || n.Name == idOrName {
			return n
		}
	}
	return nil
}
