// Package tokens estimates model token counts with tiktoken.
package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/logger"
)

// Ensure Counter implements the interface.
var _ driven.TokenCounter = (*Counter)(nil)

// DefaultEncoding is used when the model has no known encoding.
const DefaultEncoding = "cl100k_base"

// runesPerToken approximates counts when no encoding could be loaded.
const runesPerToken = 4

// Counter counts tokens with the encoding of a model. The encoding is loaded
// on first use; if that fails, counts are approximated from the rune length.
type Counter struct {
	model string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter creates a counter for model, which may also be an encoding name.
func NewCounter(model string) *Counter {
	return &Counter{model: model}
}

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.once.Do(c.load)
	if c.enc == nil {
		return Approximate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Exact reports whether counts come from a real encoding.
func (c *Counter) Exact() bool {
	c.once.Do(c.load)
	return c.enc != nil
}

func (c *Counter) load() {
	if c.model != "" {
		if enc, err := tiktoken.GetEncoding(c.model); err == nil {
			c.enc = enc
			return
		}
		if enc, err := tiktoken.EncodingForModel(c.model); err == nil {
			c.enc = enc
			return
		}
	}
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		logger.Debug("token encoding unavailable, approximating", "model", c.model, "error", err)
		return
	}
	c.enc = enc
}

// Approximate estimates tokens as one per four runes, rounded up.
func Approximate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + runesPerToken - 1) / runesPerToken
}
