package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/tavern-engine/pkg/command"
)

type funcInterpreter func(ctx context.Context, text string) (*Candidate, error)

func (f funcInterpreter) Interpret(ctx context.Context, text string) (*Candidate, error) {
	return f(ctx, text)
}

func TestParser_PrimaryAccepted(t *testing.T) {
	interp := funcInterpreter(func(ctx context.Context, text string) (*Candidate, error) {
		return &Candidate{
			Action:     "buy",
			Target:     "ale",
			Args:       map[string]string{"qty": "2"},
			Confidence: 0.92,
		}, nil
	})
	p := New(interp, time.Second, nil)

	cmd := p.Parse(context.Background(), "could I get a couple of ales please")
	require.NoError(t, cmd.Validate())
	assert.Equal(t, command.ActionBuy, cmd.Action)
	assert.Equal(t, "ale", cmd.Target)
	assert.Equal(t, "2", cmd.Args["qty"])
	assert.Equal(t, 0.92, cmd.Confidence)
}

func TestParser_LowConfidencePrimaryStillAccepted(t *testing.T) {
	// Policy: any schema-valid, in-range candidate is accepted, even
	// at confidence zero. Confidence never gates dispatch.
	interp := funcInterpreter(func(ctx context.Context, text string) (*Candidate, error) {
		return &Candidate{Action: "look", Confidence: 0.0}, nil
	})
	p := New(interp, time.Second, nil)

	cmd := p.Parse(context.Background(), "hmm")
	assert.Equal(t, command.ActionLook, cmd.Action)
	assert.Equal(t, 0.0, cmd.Confidence)
}

func TestParser_TimeoutFallsBack(t *testing.T) {
	started := make(chan struct{})
	interp := funcInterpreter(func(ctx context.Context, text string) (*Candidate, error) {
		close(started)
		<-ctx.Done() // never returns before the deadline
		return nil, ctx.Err()
	})
	p := New(interp, 20*time.Millisecond, nil)

	cmd := p.Parse(context.Background(), "talk to greta")
	<-started
	require.NoError(t, cmd.Validate())
	assert.Equal(t, command.ActionTalk, cmd.Action)
	assert.Equal(t, "greta", cmd.Target)
	assert.Equal(t, matchedConfidence, cmd.Confidence, "fallback confidence, not the primary's")
}

func TestParser_TimeoutWithUnmatchedTextYieldsUnknown(t *testing.T) {
	interp := funcInterpreter(func(ctx context.Context, text string) (*Candidate, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	p := New(interp, 10*time.Millisecond, nil)

	cmd := p.Parse(context.Background(), "sing a sea shanty about turnips")
	assert.Equal(t, command.ActionUnknown, cmd.Action)
	assert.Equal(t, unknownConfidence, cmd.Confidence)
}

func TestParser_ErrorFallsBack(t *testing.T) {
	interp := funcInterpreter(func(ctx context.Context, text string) (*Candidate, error) {
		return nil, errors.New("model unavailable")
	})
	p := New(interp, time.Second, nil)

	cmd := p.Parse(context.Background(), "look")
	assert.Equal(t, command.ActionLook, cmd.Action)
	assert.Equal(t, matchedConfidence, cmd.Confidence)
}

func TestParser_InvalidCandidateDiscardedEntirely(t *testing.T) {
	tests := []struct {
		name string
		cand *Candidate
	}{
		{"action outside set", &Candidate{Action: "pirouette", Confidence: 0.9}},
		{"confidence above range", &Candidate{Action: "look", Confidence: 1.5}},
		{"confidence below range", &Candidate{Action: "look", Confidence: -0.2}},
		{"nil candidate", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interp := funcInterpreter(func(ctx context.Context, text string) (*Candidate, error) {
				return tt.cand, nil
			})
			p := New(interp, time.Second, nil)

			// The fallback result carries nothing from the candidate:
			// tiers are never merged.
			cmd := p.Parse(context.Background(), "buy ale")
			require.NoError(t, cmd.Validate())
			assert.Equal(t, command.ActionBuy, cmd.Action)
			assert.Equal(t, "ale", cmd.Target)
			assert.Equal(t, matchedConfidence, cmd.Confidence)
		})
	}
}

func TestParser_NilInterpreterUsesGrammarOnly(t *testing.T) {
	p := New(nil, time.Second, nil)
	cmd := p.Parse(context.Background(), "rent a room")
	assert.Equal(t, command.ActionRent, cmd.Action)
}

func TestParser_AlwaysProducesValidCommand(t *testing.T) {
	inputs := []string{"", "look", "gibberish входные данные", "wait -5", "buy"}
	p := New(nil, time.Second, nil)
	for _, input := range inputs {
		cmd := p.Parse(context.Background(), input)
		assert.NoError(t, cmd.Validate(), "input %q", input)
	}
}
