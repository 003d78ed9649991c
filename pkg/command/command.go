// Package command defines the structured action produced by the parser
// and the uniform result returned by the dispatcher.
package command

import "fmt"

// Action is the closed set of things a player can do.
type Action string

const (
	ActionLook     Action = "look"
	ActionWait     Action = "wait"
	ActionSleep    Action = "sleep"
	ActionMove     Action = "move"
	ActionInteract Action = "interact"
	ActionBuy      Action = "buy"
	ActionSell     Action = "sell"
	ActionRent     Action = "rent"
	ActionGamble   Action = "gamble"
	ActionQuery    Action = "query"
	ActionTalk     Action = "talk"
	ActionHelp     Action = "help"
	ActionExit     Action = "exit"
	ActionUnknown  Action = "unknown"
)

// Actions lists every valid action, unknown included.
var Actions = []Action{
	ActionLook, ActionWait, ActionSleep, ActionMove, ActionInteract,
	ActionBuy, ActionSell, ActionRent, ActionGamble, ActionQuery,
	ActionTalk, ActionHelp, ActionExit, ActionUnknown,
}

var actionSet = func() map[Action]bool {
	m := make(map[Action]bool, len(Actions))
	for _, a := range Actions {
		m[a] = true
	}
	return m
}()

// Valid reports whether the action belongs to the closed set.
func (a Action) Valid() bool {
	return actionSet[a]
}

// Command is a validated, structured player action.
type Command struct {
	Action Action            `json:"action"`
	Target string            `json:"target,omitempty"`
	Args   map[string]string `json:"args,omitempty"`
	// Confidence records which parser tier produced the command and
	// how sure it was. Informational only; never gates dispatch.
	Confidence float64 `json:"confidence"`
}

// Validate enforces the command schema: action in the closed set,
// confidence within [0,1].
func (c Command) Validate() error {
	if !c.Action.Valid() {
		return fmt.Errorf("action %q is not in the command set", c.Action)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", c.Confidence)
	}
	return nil
}

// Arg returns a named argument, or the fallback when absent.
func (c Command) Arg(key, fallback string) string {
	if v, ok := c.Args[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Result is the uniform shape returned for every dispatched command.
// Player-facing failures are carried here, never as errors.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Fail builds an unsuccessful result with a formatted message.
func Fail(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// OK builds a successful result with a formatted message.
func OK(format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}
