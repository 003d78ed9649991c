// Package services holds the interpreter backends for the primary
// parse tier, plus the session storage used by the API handlers.
package services

import (
	"fmt"
	"strings"

	"github.com/tavernkeep/tavern-engine/pkg/command"
)

// interpreterSystemPrompt instructs the model to emit exactly one
// command candidate as strict JSON. The action vocabulary is the
// dispatcher's closed set; anything else fails schema validation and
// the caller falls back to the grammar tier.
const interpreterSystemPrompt = `You translate a tavern patron's natural-language input into a single game command.

Respond with one JSON object and nothing else:
  action      one of: %s
  target      the thing acted on (room, item, or person), or ""
  args        string-to-string map of extras (hours, qty, wager), or {}
  confidence  your confidence in the reading, 0.0 to 1.0

Use "unknown" when the input maps to no action. Never invent actions.`

// SystemPrompt renders the interpreter instructions with the current
// action vocabulary.
func SystemPrompt() string {
	actions := make([]string, len(command.Actions))
	for i, a := range command.Actions {
		actions[i] = string(a)
	}
	return fmt.Sprintf(interpreterSystemPrompt, strings.Join(actions, ", "))
}

// candidateSchema is the strict JSON schema enforced on interpreter
// output when the backend supports structured responses.
func candidateSchema() map[string]interface{} {
	actions := make([]string, len(command.Actions))
	for i, a := range command.Actions {
		actions[i] = string(a)
	}
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type": "string",
				"enum": actions,
			},
			"target": map[string]interface{}{
				"type": "string",
			},
			"args": map[string]interface{}{
				"type": "object",
				"additionalProperties": map[string]interface{}{
					"type": "string",
				},
			},
			"confidence": map[string]interface{}{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
		},
		"required": []string{"action", "confidence"},
	}
}
