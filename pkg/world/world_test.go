package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/tavern-engine/pkg/npc"
	"github.com/tavernkeep/tavern-engine/pkg/tavern"
)

func testTavern() *tavern.Tavern {
	return &tavern.Tavern{
		Name:        "The Oak & Ember",
		Description: "A low-beamed tavern on the crossroads.",
		Rooms: map[string]tavern.Room{
			"taproom":     {Name: "Taproom", Description: "Smoke, song, and spilled ale.", Exits: []string{"cellar", "guest_room"}},
			"cellar":      {Name: "Cellar", Description: "Barrels in the dark.", Exits: []string{"taproom"}},
			"guest_room":  {Name: "Guest Room", Description: "A narrow bed under the eaves.", Exits: []string{"taproom"}},
			"stable_yard": {Name: "Stable Yard", Description: "Mud and horses.", Exits: []string{}},
		},
		NPCs: []*npc.NPC{
			{ID: "greta", Name: "Greta", Disposition: npc.DispositionFriendly, Role: npc.RoleBarkeep, Room: "taproom", Schedule: npc.Schedule{{Start: 8, End: 24}}},
			{ID: "bram", Name: "Bram", Disposition: npc.DispositionNeutral, Role: npc.RolePatron, Room: "taproom", Schedule: npc.Schedule{{Start: 18, End: 23}}, DepartChance: 0.2},
		},
		Catalog: map[string]tavern.Item{
			"ale":         {Name: "Ale", Price: 2, SellPrice: 1},
			"mutton_stew": {Name: "Mutton Stew", Price: 4, SellPrice: 2},
		},
		OpeningRoom:  "taproom",
		OpeningHour:  9,
		StartingGold: 20,
		RoomRate:     5,
	}
}

func newTestState(t *testing.T) *State {
	t.Helper()
	st, err := NewState(testTavern(), "Wren", 42, nil)
	require.NoError(t, err)
	return st
}

func TestNewState(t *testing.T) {
	st := newTestState(t)

	assert.NotEqual(t, [16]byte{}, [16]byte(st.ID))
	assert.Equal(t, "taproom", st.Player.Room)
	assert.Equal(t, 20, st.Player.Gold)
	assert.InDelta(t, 9, float64(st.Clock.Now()), 1e-9)

	// Opening presence is derived from the schedules: Greta is on
	// shift at hour 9, Bram does not show up until 18.
	assert.True(t, st.NPCs.Present("greta"))
	assert.False(t, st.NPCs.Present("bram"))
}

func TestNewState_RejectsBadContent(t *testing.T) {
	_, err := NewState(nil, "Wren", 1, nil)
	assert.Error(t, err)

	tv := testTavern()
	tv.OpeningRoom = "attic"
	_, err = NewState(tv, "Wren", 1, nil)
	assert.Error(t, err)
}

func TestNewState_SessionsDoNotShareNPCs(t *testing.T) {
	tv := testTavern()
	a, err := NewState(tv, "Wren", 1, nil)
	require.NoError(t, err)
	b, err := NewState(tv, "Moss", 2, nil)
	require.NoError(t, err)

	require.NoError(t, a.NPCs.ForcePresent("bram"))
	assert.True(t, a.NPCs.Present("bram"))
	assert.False(t, b.NPCs.Present("bram"), "presence must not leak across sessions")
	assert.False(t, tv.NPCs[1].Present, "content must stay immutable")
}

func TestState_CanMoveTo(t *testing.T) {
	st := newTestState(t)

	assert.True(t, st.CanMoveTo("cellar"))
	assert.True(t, st.CanMoveTo("guest_room"))
	assert.False(t, st.CanMoveTo("stable_yard"), "not adjacent to the taproom")
	assert.False(t, st.CanMoveTo("attic"))
}

func TestState_ResolveRoom(t *testing.T) {
	st := newTestState(t)

	room, ok := st.ResolveRoom("cellar")
	require.True(t, ok)
	assert.Equal(t, "cellar", room.ID)

	room, ok = st.ResolveRoom("Guest Room")
	require.True(t, ok)
	assert.Equal(t, "guest_room", room.ID)

	_, ok = st.ResolveRoom("attic")
	assert.False(t, ok)
}

func TestPlayer_AttributeModifier(t *testing.T) {
	p, err := NewPlayer("Wren", 10, "taproom")
	require.NoError(t, err)

	assert.Equal(t, 0, p.AttributeModifier("luck"), "score 10 gives no modifier")
	assert.Equal(t, 0, p.AttributeModifier("no_such_attribute"))
}
