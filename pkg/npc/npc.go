// Package npc holds non-player characters and derives their presence
// from the game clock, each NPC's schedule and a probabilistic early
// departure process.
package npc

// Disposition is an NPC's attitude toward the player.
type Disposition string

const (
	DispositionFriendly Disposition = "friendly"
	DispositionNeutral  Disposition = "neutral"
	DispositionHostile  Disposition = "hostile"
)

// Role describes what an NPC does in the tavern.
type Role string

const (
	RoleBarkeep  Role = "barkeep"
	RoleServer   Role = "server"
	RoleMerchant Role = "merchant"
	RoleBard     Role = "bard"
	RoleGuard    Role = "guard"
	RolePatron   Role = "patron"
)

// NPC is a single non-player character. Presence is owned by the
// Registry; everything else is static content.
type NPC struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Disposition  Disposition `json:"disposition" yaml:"disposition"`
	Role         Role        `json:"role" yaml:"role"`
	Room         string      `json:"room,omitempty" yaml:"room,omitempty"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
	Schedule     Schedule    `json:"schedule" yaml:"schedule"`
	DepartChance float64     `json:"depart_chance,omitempty" yaml:"depart_chance,omitempty"`

	// Present is derived state, toggled only by the Registry at tick
	// boundaries (or by ForcePresent).
	Present bool `json:"present" yaml:"-"`

	// leftEarly records a failed departure draw so the NPC stays out
	// until the schedule releases and re-admits them.
	leftEarly bool
}
