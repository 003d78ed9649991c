// Package parser turns raw player text into a structured command. Two
// tiers: a semantic interpreter with a bounded wait, and a
// deterministic grammar that always produces a valid command. Parsing
// never fails; at worst it yields an unknown command.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tavernkeep/tavern-engine/pkg/command"
)

// DefaultTimeout bounds how long the primary tier may run before the
// fallback takes over.
const DefaultTimeout = 3 * time.Second

// Candidate is the raw output of the semantic interpreter, before
// schema validation.
type Candidate struct {
	Action     string            `json:"action"`
	Target     string            `json:"target,omitempty"`
	Args       map[string]string `json:"args,omitempty"`
	Confidence float64           `json:"confidence"`
}

// Interpreter is the black-box semantic tier. Implementations must
// honor ctx cancellation; the parser abandons calls that outlive the
// deadline.
type Interpreter interface {
	Interpret(ctx context.Context, text string) (*Candidate, error)
}

// Parser is the two-tier command parser for one session.
type Parser struct {
	interp  Interpreter
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a parser. A nil interpreter disables the primary tier
// entirely; every input then goes through the grammar.
func New(interp Interpreter, timeout time.Duration, logger *slog.Logger) *Parser {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		interp:  interp,
		timeout: timeout,
		logger:  logger,
	}
}

// Parse maps text to a command. The primary tier is attempted first
// under a deadline; on timeout, error, or schema-invalid output its
// result is discarded entirely and the grammar decides. Tiers are
// never merged.
func (p *Parser) Parse(ctx context.Context, text string) command.Command {
	if p.interp != nil {
		if cmd, ok := p.tryPrimary(ctx, text); ok {
			return cmd
		}
	}
	return ParseFallback(text)
}

type interpResult struct {
	cand *Candidate
	err  error
}

func (p *Parser) tryPrimary(ctx context.Context, text string) (command.Command, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// The interpreter runs in its own goroutine so an overrunning call
	// can be abandoned; its late result, if any, lands in a buffered
	// channel and is dropped.
	ch := make(chan interpResult, 1)
	go func() {
		cand, err := p.interp.Interpret(ctx, text)
		ch <- interpResult{cand: cand, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			p.logger.Debug("semantic parse failed, using fallback", "error", res.err)
			return command.Command{}, false
		}
		cmd, err := res.cand.toCommand()
		if err != nil {
			p.logger.Debug("semantic parse invalid, using fallback", "error", err)
			return command.Command{}, false
		}
		return cmd, true
	case <-ctx.Done():
		p.logger.Debug("semantic parse timed out, using fallback", "timeout", p.timeout)
		return command.Command{}, false
	}
}

// toCommand validates a candidate against the command schema. Any
// schema-valid, in-range candidate is accepted regardless of its
// confidence value.
func (c *Candidate) toCommand() (command.Command, error) {
	if c == nil {
		return command.Command{}, fmt.Errorf("interpreter returned no candidate")
	}
	cmd := command.Command{
		Action:     command.Action(c.Action),
		Target:     c.Target,
		Args:       c.Args,
		Confidence: c.Confidence,
	}
	if err := cmd.Validate(); err != nil {
		return command.Command{}, err
	}
	return cmd, nil
}
