// Package openaitest provides scripted Client fakes for unit tests.
package openaitest

import (
	"context"
	"strings"
	"sync"

	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

// Call records one Chat invocation.
type Call struct {
	System string
	User   string
	Opts   openai.ChatOptions
}

// Fake answers Chat by calling Respond, or by matching Rules in order.
// Embed answers through Vectors; unmatched text gets ErrEmptyEmbedding.
type Fake struct {
	mu      sync.Mutex
	calls   []Call
	embeds  []string
	Respond func(system, user string) (string, error)
	Rules   []Rule
	Vectors func(text string) ([]float64, error)
}

// Rule returns Reply (or Err) when the user prompt contains Contains.
type Rule struct {
	Contains string
	Reply    string
	Err      error
}

func (f *Fake) Chat(_ context.Context, system, user string, opts openai.ChatOptions) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{System: system, User: user, Opts: opts})
	f.mu.Unlock()
	if f.Respond != nil {
		return f.Respond(system, user)
	}
	for _, r := range f.Rules {
		if strings.Contains(user, r.Contains) {
			return r.Reply, r.Err
		}
	}
	return "", openai.ErrEmptyCompletion
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Fake) Embed(_ context.Context, text string) ([]float64, error) {
	f.mu.Lock()
	f.embeds = append(f.embeds, text)
	f.mu.Unlock()
	if f.Vectors == nil {
		return nil, openai.ErrEmptyEmbedding
	}
	return f.Vectors(text)
}

// Embedded returns every text passed to Embed.
func (f *Fake) Embedded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.embeds))
	copy(out, f.embeds)
	return out
}
