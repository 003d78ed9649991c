// Package dispatch routes validated commands to handlers that mutate
// world state. Each command resolves to exactly one handler; a failed
// validation leaves the world untouched and comes back as an ordinary
// unsuccessful result. No player-facing failure crosses this boundary
// as an error.
package dispatch

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tavernkeep/tavern-engine/pkg/command"
	"github.com/tavernkeep/tavern-engine/pkg/world"
)

type handler func(d *Dispatcher, cmd command.Command, ws *world.State) command.Result

// Dispatcher is the single mutator of world state. One command is in
// flight per session at a time.
type Dispatcher struct {
	logger *slog.Logger
	titler cases.Caser
}

func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger: logger,
		titler: cases.Title(language.English),
	}
}

var handlers = map[command.Action]handler{
	command.ActionLook:     (*Dispatcher).handleLook,
	command.ActionWait:     (*Dispatcher).handleWait,
	command.ActionSleep:    (*Dispatcher).handleSleep,
	command.ActionMove:     (*Dispatcher).handleMove,
	command.ActionInteract: (*Dispatcher).handleInteract,
	command.ActionBuy:      (*Dispatcher).handleBuy,
	command.ActionSell:     (*Dispatcher).handleSell,
	command.ActionRent:     (*Dispatcher).handleRent,
	command.ActionGamble:   (*Dispatcher).handleGamble,
	command.ActionQuery:    (*Dispatcher).handleQuery,
	command.ActionTalk:     (*Dispatcher).handleTalk,
	command.ActionHelp:     (*Dispatcher).handleHelp,
	command.ActionExit:     (*Dispatcher).handleExit,
	command.ActionUnknown:  (*Dispatcher).handleUnknown,
}

// Dispatch routes a command to its handler and returns the uniform
// result. Malformed commands (schema violations the parser should
// have caught) are reported, not panicked on.
func (d *Dispatcher) Dispatch(cmd command.Command, ws *world.State) command.Result {
	if err := cmd.Validate(); err != nil {
		d.logger.Warn("malformed command reached dispatch", "error", err)
		return command.Fail("That command didn't make sense.")
	}

	h := handlers[cmd.Action]
	res := h(d, cmd, ws)

	d.logger.Debug("command dispatched",
		"session", ws.ID,
		"action", cmd.Action,
		"target", cmd.Target,
		"confidence", cmd.Confidence,
		"success", res.Success)
	return res
}

// displayName renders an item id or room id for the player, preferring
// the catalog name and falling back to a title-cased id.
func (d *Dispatcher) displayName(ws *world.State, id string) string {
	if item, ok := ws.Tavern.Catalog[id]; ok && item.Name != "" {
		return item.Name
	}
	return d.titler.String(strings.ReplaceAll(id, "_", " "))
}
