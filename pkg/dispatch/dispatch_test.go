package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/tavern-engine/pkg/command"
	"github.com/tavernkeep/tavern-engine/pkg/npc"
	"github.com/tavernkeep/tavern-engine/pkg/reputation"
	"github.com/tavernkeep/tavern-engine/pkg/tavern"
	"github.com/tavernkeep/tavern-engine/pkg/world"
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
			{ID: "bram", Name: "Bram", Disposition: npc.DispositionNeutral, Role: npc.RolePatron, Room: "taproom", Schedule: npc.Schedule{{Start: 18, End: 23}}},
			{ID: "sour_jack", Name: "Sour Jack", Disposition: npc.DispositionHostile, Role: npc.RolePatron, Room: "cellar", Schedule: npc.Schedule{{Start: 0, End: 24}}},
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

func newTestState(t *testing.T) *world.State {
	t.Helper()
	st, err := world.NewState(testTavern(), "Wren", 42, nil)
	require.NoError(t, err)
	return st
}

func dispatchTest(t *testing.T, ws *world.State, cmd command.Command) command.Result {
	t.Helper()
	if cmd.Confidence == 0 {
		cmd.Confidence = 0.5
	}
	return New(nil).Dispatch(cmd, ws)
}

func TestDispatch_Look(t *testing.T) {
	ws := newTestState(t)
	res := dispatchTest(t, ws, command.Command{Action: command.ActionLook})

	require.True(t, res.Success)
	assert.Contains(t, res.Message, "Smoke, song, and spilled ale.")
	assert.Contains(t, res.Message, "Greta", "on-shift NPC is listed")
	assert.NotContains(t, res.Message, "Bram", "off-shift NPC is not")
	assert.Contains(t, res.Message, "Cellar")
	assert.Equal(t, "taproom", res.Data["room"])
}

func TestDispatch_Move(t *testing.T) {
	ws := newTestState(t)
	res := dispatchTest(t, ws, command.Command{Action: command.ActionMove, Target: "cellar"})

	require.True(t, res.Success)
	assert.Equal(t, "cellar", ws.Player.Room)
}

func TestDispatch_MoveByDisplayName(t *testing.T) {
	ws := newTestState(t)
	res := dispatchTest(t, ws, command.Command{Action: command.ActionMove, Target: "Guest Room"})

	require.True(t, res.Success)
	assert.Equal(t, "guest_room", ws.Player.Room)
}

func TestDispatch_MoveFailureLeavesStateUntouched(t *testing.T) {
	ws := newTestState(t)
	before := ws.Player.Room

	for _, target := range []string{"stable_yard", "attic", ""} {
		res := dispatchTest(t, ws, command.Command{Action: command.ActionMove, Target: target})
		assert.False(t, res.Success, "target %q", target)
		assert.Equal(t, before, ws.Player.Room, "target %q", target)
	}
	assert.Zero(t, ws.Narrative.Snapshot().TotalActions, "failed commands leave no narrative trace")
}

func TestDispatch_WaitAdvancesClockAndPresence(t *testing.T) {
	ws := newTestState(t)

	res := dispatchTest(t, ws, command.Command{
		Action: command.ActionWait,
		Args:   map[string]string{"hours": "9"},
	})

	require.True(t, res.Success)
	assert.InDelta(t, 18, ws.Clock.Now().HourOfDay(), 1e-9)
	assert.True(t, ws.NPCs.Present("bram"), "Bram's shift starts at 18")
}

func TestDispatch_WaitRejectsBadHours(t *testing.T) {
	ws := newTestState(t)
	before := float64(ws.Clock.Now())

	for _, hours := range []string{"0", "-2", "soon", "48"} {
		res := dispatchTest(t, ws, command.Command{
			Action: command.ActionWait,
			Args:   map[string]string{"hours": hours},
		})
		assert.False(t, res.Success, "hours %q", hours)
		assert.InDelta(t, before, float64(ws.Clock.Now()), 1e-9, "hours %q", hours)
	}
}

func TestDispatch_SleepConsumesRentedRoom(t *testing.T) {
	ws := newTestState(t)

	res := dispatchTest(t, ws, command.Command{Action: command.ActionRent})
	require.True(t, res.Success)
	assert.Equal(t, 15, ws.Player.Gold)
	assert.True(t, ws.Flags["room_rented"])

	res = dispatchTest(t, ws, command.Command{Action: command.ActionSleep})
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "soundly")
	assert.False(t, ws.Flags["room_rented"], "the night's rent covers one sleep")
	assert.InDelta(t, 17, ws.Clock.Now().HourOfDay(), 1e-9)

	res = dispatchTest(t, ws, command.Command{Action: command.ActionSleep})
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "fitfully")
}

func TestDispatch_RentTwiceFails(t *testing.T) {
	ws := newTestState(t)

	require.True(t, dispatchTest(t, ws, command.Command{Action: command.ActionRent}).Success)
	res := dispatchTest(t, ws, command.Command{Action: command.ActionRent})
	assert.False(t, res.Success)
	assert.Equal(t, 15, ws.Player.Gold, "no double charge")
}

func TestDispatch_RentWithoutGoldFails(t *testing.T) {
	ws := newTestState(t)
	ws.Player.Gold = 3

	res := dispatchTest(t, ws, command.Command{Action: command.ActionRent})
	assert.False(t, res.Success)
	assert.Equal(t, 3, ws.Player.Gold)
	assert.False(t, ws.Flags["room_rented"])
}

func TestDispatch_BuyAndSell(t *testing.T) {
	ws := newTestState(t)

	res := dispatchTest(t, ws, command.Command{
		Action: command.ActionBuy,
		Target: "ale",
		Args:   map[string]string{"qty": "3"},
	})
	require.True(t, res.Success)
	assert.Equal(t, 14, ws.Player.Gold)
	assert.Equal(t, 3, ws.Player.Inventory["ale"])
	assert.Equal(t, 14, res.Data["gold"])

	res = dispatchTest(t, ws, command.Command{
		Action: command.ActionSell,
		Target: "Ale",
		Args:   map[string]string{"qty": "2"},
	})
	require.True(t, res.Success)
	assert.Equal(t, 16, ws.Player.Gold)
	assert.Equal(t, 1, ws.Player.Inventory["ale"])
}

func TestDispatch_BuyFailures(t *testing.T) {
	ws := newTestState(t)
	ws.Player.Gold = 5

	tests := []struct {
		name string
		cmd  command.Command
	}{
		{"unknown item", command.Command{Action: command.ActionBuy, Target: "dragon egg"}},
		{"no target", command.Command{Action: command.ActionBuy}},
		{"bad quantity", command.Command{Action: command.ActionBuy, Target: "ale", Args: map[string]string{"qty": "many"}}},
		{"cannot afford", command.Command{Action: command.ActionBuy, Target: "mutton_stew", Args: map[string]string{"qty": "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := dispatchTest(t, ws, tt.cmd)
			assert.False(t, res.Success)
			assert.Equal(t, 5, ws.Player.Gold)
			assert.Empty(t, ws.Player.Inventory)
		})
	}
}

func TestDispatch_SellWhatYouDoNotHave(t *testing.T) {
	ws := newTestState(t)

	res := dispatchTest(t, ws, command.Command{Action: command.ActionSell, Target: "ale"})
	assert.False(t, res.Success)
	assert.Equal(t, 20, ws.Player.Gold)
}

func TestDispatch_TalkMovesReputation(t *testing.T) {
	ws := newTestState(t)

	res := dispatchTest(t, ws, command.Command{Action: command.ActionTalk, Target: "greta"})
	require.True(t, res.Success)
	assert.Equal(t, 2, ws.Reputation.Score("greta"), "friendly conversation earns +2")
	assert.Equal(t, 2, res.Data["reputation"])

	require.True(t, dispatchTest(t, ws, command.Command{Action: command.ActionMove, Target: "cellar"}).Success)
	res = dispatchTest(t, ws, command.Command{Action: command.ActionTalk, Target: "Sour Jack"})
	require.True(t, res.Success)
	assert.Equal(t, -1, ws.Reputation.Score("sour_jack"), "hostile conversation costs -1")

	snap := ws.Narrative.Snapshot()
	assert.Equal(t, 2, snap.ActionCounts["talk"])
	assert.Equal(t, 1, snap.Relationships["greta"])
}

func TestDispatch_TalkByRole(t *testing.T) {
	ws := newTestState(t)

	res := dispatchTest(t, ws, command.Command{Action: command.ActionTalk, Target: "barkeep"})
	require.True(t, res.Success)
	assert.Equal(t, "greta", res.Data["npc"])
}

func TestDispatch_TalkToAbsentNPC(t *testing.T) {
	ws := newTestState(t)

	// Bram exists but is off shift at hour 9.
	res := dispatchTest(t, ws, command.Command{Action: command.ActionTalk, Target: "bram"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "isn't around")
	assert.Zero(t, ws.Reputation.Score("bram"))

	res = dispatchTest(t, ws, command.Command{Action: command.ActionTalk, Target: "the king"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Nobody here")
}

func TestDispatch_GambleSettlesExactly(t *testing.T) {
	ws := newTestState(t)

	res := dispatchTest(t, ws, command.Command{
		Action: command.ActionGamble,
		Args:   map[string]string{"wager": "5"},
	})
	require.True(t, res.Success)

	diff := ws.Player.Gold - 20
	switch res.Data["won"] {
	case true:
		assert.Equal(t, 5, diff)
	case false:
		assert.Contains(t, []int{0, -5}, diff, "push or loss")
	}
	assert.Equal(t, ws.Player.Gold, res.Data["gold"])
}

func TestDispatch_GambleFailures(t *testing.T) {
	ws := newTestState(t)

	for _, args := range []map[string]string{
		nil,
		{"wager": "0"},
		{"wager": "-5"},
		{"wager": "everything"},
		{"wager": "999"},
	} {
		res := dispatchTest(t, ws, command.Command{Action: command.ActionGamble, Args: args})
		assert.False(t, res.Success, "args %v", args)
		assert.Equal(t, 20, ws.Player.Gold, "args %v", args)
	}
}

func TestDispatch_GambleReproducibleForSeed(t *testing.T) {
	a := newTestState(t)
	b := newTestState(t)

	cmd := command.Command{Action: command.ActionGamble, Confidence: 0.5, Args: map[string]string{"wager": "5"}}
	d := New(nil)
	for i := 0; i < 5; i++ {
		resA := d.Dispatch(cmd, a)
		resB := d.Dispatch(cmd, b)
		assert.Equal(t, resA.Message, resB.Message, "round %d", i)
	}
	assert.Equal(t, a.Player.Gold, b.Player.Gold)
}

func TestDispatch_Query(t *testing.T) {
	ws := newTestState(t)
	require.True(t, dispatchTest(t, ws, command.Command{Action: command.ActionBuy, Target: "ale"}).Success)

	res := dispatchTest(t, ws, command.Command{Action: command.ActionQuery})
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "18 gold")
	assert.Contains(t, res.Message, "Taproom")
	assert.Contains(t, res.Message, "Ale x1")
	assert.Equal(t, 18, res.Data["gold"])
	assert.Equal(t, "taproom", res.Data["room"])
}

func TestDispatch_Interact(t *testing.T) {
	ws := newTestState(t)

	res := dispatchTest(t, ws, command.Command{Action: command.ActionInteract, Target: "greta"})
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "Greta")

	res = dispatchTest(t, ws, command.Command{Action: command.ActionInteract, Target: "barrel"})
	require.True(t, res.Success)

	res = dispatchTest(t, ws, command.Command{Action: command.ActionInteract})
	assert.False(t, res.Success)

	assert.Equal(t, 2, ws.Narrative.Snapshot().ActionCounts["interact"])
}

func TestDispatch_ExitSignalsCaller(t *testing.T) {
	ws := newTestState(t)
	res := dispatchTest(t, ws, command.Command{Action: command.ActionExit})

	require.True(t, res.Success)
	assert.Equal(t, true, res.Data["exit"])
}

func TestDispatch_UnknownAndHelp(t *testing.T) {
	ws := newTestState(t)

	res := dispatchTest(t, ws, command.Command{Action: command.ActionUnknown, Confidence: 0.1})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "help")

	res = dispatchTest(t, ws, command.Command{Action: command.ActionHelp})
	assert.True(t, res.Success)
}

func TestDispatch_MalformedCommandRejected(t *testing.T) {
	ws := newTestState(t)
	res := New(nil).Dispatch(command.Command{Action: "pirouette", Confidence: 0.5}, ws)
	assert.False(t, res.Success)
}

func TestDispatch_TalkTierReported(t *testing.T) {
	ws := newTestState(t)

	for i := 0; i < 3; i++ {
		res := dispatchTest(t, ws, command.Command{Action: command.ActionTalk, Target: "greta"})
		require.True(t, res.Success)
	}
	assert.Equal(t, reputation.TierFriendly, ws.Reputation.Tier("greta"))
}
