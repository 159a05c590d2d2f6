package fakes

import (
	"context"
	"sync"

	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

// Ensure LLM implements the interface.
var _ driven.LLMService = (*LLM)(nil)

// Reply is one scripted model answer.
type Reply struct {
	Text string
	Err  error
}

// LLM replays scripted replies in order. Once the script is exhausted the
// last reply repeats. Respond, when set, takes precedence over the script.
type LLM struct {
	mu      sync.Mutex
	Model   string
	Script  []Reply
	Respond func(messages []driven.ChatMessage) (string, error)

	// Calls records the messages of every Chat call.
	Calls [][]driven.ChatMessage

	// Options records the options of every Chat call.
	Options []driven.ChatOptions

	PingErr error
	Closed  bool
}

// NewLLM returns a fake that answers with the given texts in order.
func NewLLM(texts ...string) *LLM {
	l := &LLM{Model: "fake-model"}
	for _, t := range texts {
		l.Script = append(l.Script, Reply{Text: t})
	}
	return l
}

// Generate answers like a single user message.
func (l *LLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return l.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}, driven.ChatOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
}

// Chat records the call and returns the next scripted reply.
func (l *LLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.Calls)
	l.Calls = append(l.Calls, messages)
	l.Options = append(l.Options, opts)

	if l.Respond != nil {
		return l.Respond(messages)
	}
	if len(l.Script) == 0 {
		return "", nil
	}
	if n >= len(l.Script) {
		n = len(l.Script) - 1
	}
	return l.Script[n].Text, l.Script[n].Err
}

// CallCount returns the number of Chat calls so far.
func (l *LLM) CallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Calls)
}

// ModelName returns the configured model name.
func (l *LLM) ModelName() string {
	return l.Model
}

// Ping returns PingErr.
func (l *LLM) Ping(context.Context) error {
	return l.PingErr
}

// Close marks the fake closed.
func (l *LLM) Close() error {
	l.Closed = true
	return nil
}
