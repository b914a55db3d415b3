// Package assistant builds the per-message prompt from the user's snapshots
// and recent turns and returns the model's reply.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

const (
	// PromptTurns is how many previous turns go into the prompt.
	PromptTurns = 5
	// StoredTurns caps the persisted history.
	StoredTurns = 10

	snapshotChars = 2000
	maxTokens     = 350
	temperature   = 0.4
)

// Turn is one user message and the reply it got.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Context is everything the prompt references besides the message itself.
// Health and Diet are either snapshot structs or their error payloads.
type Context struct {
	Health       any
	Diet         any
	Summary      any
	KeyMetrics   any
	Conversation []Turn
}

type Assistant struct {
	llm openai.Client
}

func New(llm openai.Client) *Assistant {
	return &Assistant{llm: llm}
}

// Reply never fails; model errors come back inline as the reply text.
func (a *Assistant) Reply(ctx context.Context, message string, pc Context) string {
	out, err := a.llm.Chat(ctx, systemPrompt, UserPrompt(message, pc), openai.ChatOptions{
		Temperature: openai.Temp(temperature),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return fmt.Sprintf("[Error: %s]", err)
	}
	return strings.TrimSpace(out)
}

// UserPrompt renders the fixed section layout.
func UserPrompt(message string, pc Context) string {
	var conv strings.Builder
	for _, t := range LastTurns(pc.Conversation, PromptTurns) {
		fmt.Fprintf(&conv, "User: %s\n", t.User)
		fmt.Fprintf(&conv, "Assistant: %s\n", t.Assistant)
	}
	return fmt.Sprintf(userPromptTemplate,
		truncate(indentJSON(pc.Health), snapshotChars),
		truncate(indentJSON(pc.Diet), snapshotChars),
		blockOrEmpty(pc.Summary),
		blockOrEmpty(pc.KeyMetrics),
		conv.String(),
		message,
	)
}

// LastTurns returns at most n trailing turns.
func LastTurns(history []Turn, n int) []Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// AppendTurn adds the exchange and trims to StoredTurns.
func AppendTurn(history []Turn, user, reply string) []Turn {
	next := make([]Turn, 0, len(history)+1)
	next = append(next, history...)
	next = append(next, Turn{User: user, Assistant: reply})
	return LastTurns(next, StoredTurns)
}

func indentJSON(v any) string {
	if v == nil {
		return "{}"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}

func blockOrEmpty(v any) string {
	s := indentJSON(v)
	if s == "null" {
		return "{}"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
