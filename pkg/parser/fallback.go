package parser

import (
	"regexp"
	"strings"

	"github.com/tavernkeep/tavern-engine/pkg/command"
)

// Fallback-tier confidence levels. Informational only.
const (
	matchedConfidence = 0.5
	unknownConfidence = 0.1
)

// rule maps a pattern onto a command template. Rules are evaluated
// top to bottom; the first match wins.
type rule struct {
	pattern *regexp.Regexp
	build   func(m []string) command.Command
}

var grammar = []rule{
	{
		pattern: regexp.MustCompile(`^(?:look|l|look around|where am i)$`),
		build: func(m []string) command.Command {
			return command.Command{Action: command.ActionLook}
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:wait|rest)(?:\s+(?:for\s+)?(\d+(?:\.\d+)?)(?:\s*h(?:ours?)?)?)?$`),
		build: func(m []string) command.Command {
			cmd := command.Command{Action: command.ActionWait}
			if m[1] != "" {
				cmd.Args = map[string]string{"hours": m[1]}
			}
			return cmd
		},
	},
	{
		pattern: regexp.MustCompile(`^sleep(?:\s+(?:for\s+)?(\d+(?:\.\d+)?)(?:\s*h(?:ours?)?)?)?$`),
		build: func(m []string) command.Command {
			cmd := command.Command{Action: command.ActionSleep}
			if m[1] != "" {
				cmd.Args = map[string]string{"hours": m[1]}
			}
			return cmd
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:go|move|walk|head)(?:\s+(?:to|into|towards?))?\s+(?:the\s+)?(.+)$`),
		build: func(m []string) command.Command {
			return command.Command{Action: command.ActionMove, Target: m[1]}
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:buy|purchase|order)\s+(?:(\d+)\s+)?(?:an?\s+)?(.+)$`),
		build: func(m []string) command.Command {
			cmd := command.Command{Action: command.ActionBuy, Target: m[2]}
			if m[1] != "" {
				cmd.Args = map[string]string{"qty": m[1]}
			}
			return cmd
		},
	},
	{
		pattern: regexp.MustCompile(`^sell\s+(?:(\d+)\s+)?(?:an?\s+)?(.+)$`),
		build: func(m []string) command.Command {
			cmd := command.Command{Action: command.ActionSell, Target: m[2]}
			if m[1] != "" {
				cmd.Args = map[string]string{"qty": m[1]}
			}
			return cmd
		},
	},
	{
		pattern: regexp.MustCompile(`^rent(?:\s+a)?(?:\s+room)?$`),
		build: func(m []string) command.Command {
			return command.Command{Action: command.ActionRent}
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:gamble|bet|wager)(?:\s+(\d+))?(?:\s+gold)?$`),
		build: func(m []string) command.Command {
			cmd := command.Command{Action: command.ActionGamble}
			if m[1] != "" {
				cmd.Args = map[string]string{"wager": m[1]}
			}
			return cmd
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:talk|speak|chat)(?:\s+(?:to|with))?\s+(?:the\s+)?(.+)$`),
		build: func(m []string) command.Command {
			return command.Command{Action: command.ActionTalk, Target: m[1]}
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:use|open|examine|inspect|touch|take)\s+(?:the\s+)?(.+)$`),
		build: func(m []string) command.Command {
			return command.Command{Action: command.ActionInteract, Target: m[1]}
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:status|stats|query|time|gold|inventory|i)$`),
		build: func(m []string) command.Command {
			return command.Command{Action: command.ActionQuery}
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:help|\?|commands)$`),
		build: func(m []string) command.Command {
			return command.Command{Action: command.ActionHelp}
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:exit|quit|q|leave the game)$`),
		build: func(m []string) command.Command {
			return command.Command{Action: command.ActionExit}
		},
	},
}

// ParseFallback is the deterministic grammar tier. It always
// terminates and always returns a structurally valid command; input
// no rule recognizes becomes an unknown command with low confidence.
func ParseFallback(text string) command.Command {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.Join(strings.Fields(normalized), " ")

	if normalized != "" {
		for _, r := range grammar {
			if m := r.pattern.FindStringSubmatch(normalized); m != nil {
				cmd := r.build(m)
				cmd.Confidence = matchedConfidence
				return cmd
			}
		}
	}

	return command.Command{Action: command.ActionUnknown, Confidence: unknownConfidence}
}
