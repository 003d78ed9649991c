package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tavernkeep/tavern-engine/pkg/command"
	"github.com/tavernkeep/tavern-engine/pkg/npc"
	"github.com/tavernkeep/tavern-engine/pkg/world"
)

const (
	defaultWaitHours  = 1.0
	defaultSleepHours = 8.0
	maxAdvanceHours   = 24.0

	rentedFlag = "room_rented"
)

func (d *Dispatcher) handleLook(cmd command.Command, ws *world.State) command.Result {
	room := ws.Room()

	var sb strings.Builder
	sb.WriteString(room.Description)

	present := ws.NPCs.PresentIn(room.ID)
	if len(present) > 0 {
		names := make([]string, len(present))
		for i, n := range present {
			names[i] = n.Name
		}
		sb.WriteString(" Here: " + strings.Join(names, ", ") + ".")
	}

	if len(room.Exits) > 0 {
		exits := make([]string, len(room.Exits))
		for i, id := range room.Exits {
			exits[i] = d.displayName(ws, id)
		}
		sb.WriteString(" Exits: " + strings.Join(exits, ", ") + ".")
	}

	return command.Result{
		Success: true,
		Message: sb.String(),
		Data:    map[string]any{"room": room.ID},
	}
}

func parseHours(cmd command.Command, fallback float64) (float64, error) {
	raw := cmd.Arg("hours", "")
	if raw == "" {
		return fallback, nil
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number of hours", raw)
	}
	return hours, nil
}

func (d *Dispatcher) advance(ws *world.State, hours float64, doing string) command.Result {
	if hours <= 0 {
		return command.Fail("You can't %s for %v hours.", doing, hours)
	}
	if hours > maxAdvanceHours {
		return command.Fail("A full day is the most you can %s at once.", doing)
	}

	now, err := ws.Clock.Advance(hours)
	if err != nil {
		// Guarded above; anything here is a programming error worth
		// logging but not worth crashing the session over.
		d.logger.Error("clock advance rejected", "hours", hours, "error", err)
		return command.Fail("Time refuses to pass.")
	}

	return command.Result{
		Success: true,
		Message: fmt.Sprintf("Time passes. It is now %s.", now),
		Data:    map[string]any{"hours": float64(now)},
	}
}

func (d *Dispatcher) handleWait(cmd command.Command, ws *world.State) command.Result {
	hours, err := parseHours(cmd, defaultWaitHours)
	if err != nil {
		return command.Fail("You can't wait that long: %v.", err)
	}
	res := d.advance(ws, hours, "wait")
	if res.Success {
		ws.Narrative.Record("wait", "")
	}
	return res
}

func (d *Dispatcher) handleSleep(cmd command.Command, ws *world.State) command.Result {
	hours, err := parseHours(cmd, defaultSleepHours)
	if err != nil {
		return command.Fail("You can't sleep that long: %v.", err)
	}

	rested := ws.Flags[rentedFlag]
	res := d.advance(ws, hours, "sleep")
	if !res.Success {
		return res
	}

	if rested {
		// The night's rent covers one sleep.
		delete(ws.Flags, rentedFlag)
		res.Message = "You sleep soundly in your rented room. " + res.Message
	} else {
		res.Message = "You doze fitfully in a corner, one eye open. " + res.Message
	}
	ws.Narrative.Record("sleep", "")
	return res
}

func (d *Dispatcher) handleMove(cmd command.Command, ws *world.State) command.Result {
	if cmd.Target == "" {
		return command.Fail("Move where?")
	}

	room, ok := ws.ResolveRoom(cmd.Target)
	if !ok {
		return command.Fail("There's no place called %q here.", cmd.Target)
	}
	if room.ID == ws.Player.Room {
		return command.Fail("You're already in the %s.", room.Name)
	}
	if !ws.CanMoveTo(room.ID) {
		return command.Fail("You can't get to the %s from here.", room.Name)
	}

	ws.Player.Room = room.ID
	ws.Narrative.Record("move", "")
	return command.Result{
		Success: true,
		Message: fmt.Sprintf("You head to the %s. %s", room.Name, room.Description),
		Data:    map[string]any{"room": room.ID},
	}
}

func (d *Dispatcher) handleInteract(cmd command.Command, ws *world.State) command.Result {
	if cmd.Target == "" {
		return command.Fail("Interact with what?")
	}

	// NPCs first: poking at a person is a social act.
	if n := d.findPresentNPC(ws, cmd.Target); n != nil {
		ws.Narrative.Record("interact", n.ID)
		return command.OK("%s glances at you but carries on with their business.", n.Name)
	}

	ws.Narrative.Record("interact", "")
	return command.OK("You fiddle with the %s. Nothing much happens.", cmd.Target)
}

func econFail(err error) command.Result {
	switch {
	case errors.Is(err, world.ErrUnknownItem):
		return command.Fail("The house doesn't deal in that.")
	case errors.Is(err, world.ErrBadQuantity):
		return command.Fail("That quantity makes no sense.")
	case errors.Is(err, world.ErrInsufficientGold):
		return command.Fail("You can't afford that: %v.", err)
	case errors.Is(err, world.ErrInsufficientItems):
		return command.Fail("You aren't carrying that many: %v.", err)
	default:
		return command.Fail("No deal: %v.", err)
	}
}

func parseQty(cmd command.Command) (int, error) {
	raw := cmd.Arg("qty", "1")
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a quantity", raw)
	}
	return qty, nil
}

func (d *Dispatcher) handleBuy(cmd command.Command, ws *world.State) command.Result {
	if cmd.Target == "" {
		return command.Fail("Buy what?")
	}
	qty, err := parseQty(cmd)
	if err != nil {
		return command.Fail("%v.", err)
	}
	itemID, ok := ws.ResolveItem(cmd.Target)
	if !ok {
		return command.Fail("The house doesn't sell %q.", cmd.Target)
	}

	cost, err := ws.Buy(itemID, qty)
	if err != nil {
		return econFail(err)
	}

	ws.Narrative.Record("buy", "")
	return command.Result{
		Success: true,
		Message: fmt.Sprintf("You buy %d %s for %d gold.", qty, d.displayName(ws, itemID), cost),
		Data: map[string]any{
			"gold":  ws.Player.Gold,
			"item":  itemID,
			"count": ws.Player.Inventory[itemID],
		},
	}
}

func (d *Dispatcher) handleSell(cmd command.Command, ws *world.State) command.Result {
	if cmd.Target == "" {
		return command.Fail("Sell what?")
	}
	qty, err := parseQty(cmd)
	if err != nil {
		return command.Fail("%v.", err)
	}
	itemID, ok := ws.ResolveItem(cmd.Target)
	if !ok {
		return command.Fail("The house won't buy %q.", cmd.Target)
	}

	proceeds, err := ws.Sell(itemID, qty)
	if err != nil {
		return econFail(err)
	}

	ws.Narrative.Record("sell", "")
	return command.Result{
		Success: true,
		Message: fmt.Sprintf("You sell %d %s for %d gold.", qty, d.displayName(ws, itemID), proceeds),
		Data: map[string]any{
			"gold":  ws.Player.Gold,
			"item":  itemID,
			"count": ws.Player.Inventory[itemID],
		},
	}
}

func (d *Dispatcher) handleRent(cmd command.Command, ws *world.State) command.Result {
	if ws.Flags[rentedFlag] {
		return command.Fail("You already have a room for the night.")
	}
	rate := ws.Tavern.RoomRate
	if ws.Player.Gold < rate {
		return command.Fail("A night costs %d gold; you have %d.", rate, ws.Player.Gold)
	}

	ws.Player.Gold -= rate
	ws.Flags[rentedFlag] = true
	ws.Narrative.Record("rent", "")
	return command.Result{
		Success: true,
		Message: fmt.Sprintf("You pay %d gold for a room under the eaves.", rate),
		Data:    map[string]any{"gold": ws.Player.Gold},
	}
}

func (d *Dispatcher) handleGamble(cmd command.Command, ws *world.State) command.Result {
	raw := cmd.Arg("wager", "")
	if raw == "" {
		return command.Fail("Gamble how much?")
	}
	wager, err := strconv.Atoi(raw)
	if err != nil || wager <= 0 {
		return command.Fail("%q is no kind of wager.", raw)
	}
	if ws.Player.Gold < wager {
		return command.Fail("You can't cover a %d gold wager with %d gold.", wager, ws.Player.Gold)
	}

	// Opposed d20 rolls; the player's luck rides along.
	playerRoll := ws.Rand.Intn(20) + 1 + ws.Player.AttributeModifier("luck")
	houseRoll := ws.Rand.Intn(20) + 1

	ws.Narrative.Record("gamble", "house")
	switch {
	case playerRoll > houseRoll:
		ws.Player.Gold += wager
		return command.Result{
			Success: true,
			Message: fmt.Sprintf("You roll %d against the house's %d and rake in %d gold.", playerRoll, houseRoll, wager),
			Data:    map[string]any{"gold": ws.Player.Gold, "won": true},
		}
	case playerRoll < houseRoll:
		ws.Player.Gold -= wager
		return command.Result{
			Success: true,
			Message: fmt.Sprintf("You roll %d against the house's %d and lose %d gold.", playerRoll, houseRoll, wager),
			Data:    map[string]any{"gold": ws.Player.Gold, "won": false},
		}
	default:
		return command.Result{
			Success: true,
			Message: fmt.Sprintf("Both sides roll %d. The pot pushes.", playerRoll),
			Data:    map[string]any{"gold": ws.Player.Gold, "won": false},
		}
	}
}

func (d *Dispatcher) handleQuery(cmd command.Command, ws *world.State) command.Result {
	var sb strings.Builder
	fmt.Fprintf(&sb, "It is %s. You have %d gold and you're in the %s.",
		ws.Clock.Now(), ws.Player.Gold, ws.Room().Name)

	if len(ws.Player.Inventory) > 0 {
		ids := make([]string, 0, len(ws.Player.Inventory))
		for id := range ws.Player.Inventory {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprintf("%s x%d", d.displayName(ws, id), ws.Player.Inventory[id])
		}
		sb.WriteString(" Carrying: " + strings.Join(parts, ", ") + ".")
	}

	snap := ws.Narrative.Snapshot()
	return command.Result{
		Success: true,
		Message: sb.String(),
		Data: map[string]any{
			"gold":       ws.Player.Gold,
			"hours":      float64(ws.Clock.Now()),
			"room":       ws.Player.Room,
			"inventory":  ws.Player.Inventory,
			"reputation": ws.Reputation.Scores(),
			"narrative":  snap,
		},
	}
}

// Reputation movement per conversation, by disposition.
var talkDelta = map[npc.Disposition]int{
	npc.DispositionFriendly: 2,
	npc.DispositionNeutral:  1,
	npc.DispositionHostile:  -1,
}

func (d *Dispatcher) handleTalk(cmd command.Command, ws *world.State) command.Result {
	if cmd.Target == "" {
		return command.Fail("Talk to whom?")
	}

	n := d.findPresentNPC(ws, cmd.Target)
	if n == nil {
		if ws.Tavern.FindNPC(cmd.Target) != nil || d.findNPCLoose(ws, cmd.Target) != nil {
			return command.Fail("%s isn't around right now.", d.titler.String(cmd.Target))
		}
		return command.Fail("Nobody here answers to %q.", cmd.Target)
	}

	delta := talkDelta[n.Disposition]
	score := ws.Reputation.Adjust(n.ID, delta)
	tier := ws.Reputation.Tier(n.ID)
	ws.Narrative.Record("talk", n.ID)

	var msg string
	switch n.Disposition {
	case npc.DispositionFriendly:
		msg = fmt.Sprintf("%s greets you warmly and trades a bit of gossip.", n.Name)
	case npc.DispositionHostile:
		msg = fmt.Sprintf("%s answers in clipped words, clearly wishing you elsewhere.", n.Name)
	default:
		msg = fmt.Sprintf("%s chats with you about nothing in particular.", n.Name)
	}

	return command.Result{
		Success: true,
		Message: msg,
		Data: map[string]any{
			"npc":        n.ID,
			"reputation": score,
			"tier":       string(tier),
		},
	}
}

func (d *Dispatcher) handleHelp(cmd command.Command, ws *world.State) command.Result {
	return command.OK("You can: look, wait [hours], sleep, go <room>, talk to <name>, " +
		"buy/sell <item>, rent a room, gamble <gold>, examine <thing>, status, help, quit.")
}

func (d *Dispatcher) handleExit(cmd command.Command, ws *world.State) command.Result {
	return command.Result{
		Success: true,
		Message: "You settle your tab and step out into the night.",
		Data:    map[string]any{"exit": true},
	}
}

func (d *Dispatcher) handleUnknown(cmd command.Command, ws *world.State) command.Result {
	return command.Fail("You're not sure how to do that. Try 'help'.")
}

// findPresentNPC resolves a target against NPCs present in the
// player's current room, matching id, name, or role.
func (d *Dispatcher) findPresentNPC(ws *world.State, target string) *npc.NPC {
	for _, n := range ws.NPCs.PresentIn(ws.Player.Room) {
		if strings.EqualFold(n.ID, target) ||
			strings.EqualFold(n.Name, target) ||
			strings.EqualFold(string(n.Role), target) {
			return n
		}
	}
	return nil
}

// findNPCLoose matches any registered NPC regardless of presence, for
// "they exist but aren't here" messages.
func (d *Dispatcher) findNPCLoose(ws *world.State, target string) *npc.NPC {
	for _, n := range ws.NPCs.All() {
		if strings.EqualFold(n.ID, target) ||
			strings.EqualFold(n.Name, target) ||
			strings.EqualFold(string(n.Role), target) {
			return n
		}
	}
	return nil
}
