package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/normtext"
	"github.com/custodia-labs/rfqx/internal/testutil/fakes"
)

type promptMap map[string]string

func (p promptMap) Load(name string) (string, error) {
	if s, ok := p[name]; ok {
		return s, nil
	}
	return "", errors.New("no prompt")
}

func (p promptMap) Reload() {}

type countingTokens struct{ calls int }

func (c *countingTokens) Count(text string) int {
	c.calls++
	return len(strings.Fields(text))
}

func newTestAnalyzer(t *testing.T, llm driven.LLMService, opts ...AnalyzerOption) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(llm, promptMap{driven.PromptAnalyzeSystem: "SYSTEM PROMPT"}, opts...)
	require.NoError(t, err)
	return a
}

func TestNewAnalyzer_RequiresLLM(t *testing.T) {
	_, err := NewAnalyzer(nil, nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestAnalyzer_Analyze(t *testing.T) {
	llm := fakes.NewLLM(`{"customer_name": "ACME Corp", "project_name": "Plant 7", "deadline": "2024-05-01",
		"items": [
			{"description": "DEWALT DCD791D2 20V Cordless Drill", "quantity": 50, "unit": "units", "specifications": "20V"},
			{"description": "Safety helmet", "quantity": "1,000 pcs"},
			{"description": "Hi-vis vest", "quantity": "2,5", "unit": null}
		]}`)
	a := newTestAnalyzer(t, llm)

	set, err := a.Analyze(context.Background(), "Please quote", 8000)
	require.NoError(t, err)

	assert.Equal(t, "ACME Corp", set.CustomerName)
	assert.Equal(t, "Plant 7", set.ProjectName)
	assert.Equal(t, "2024-05-01", set.Deadline)
	require.Len(t, set.Items, 3)
	assert.Equal(t, qty(50), set.Items[0].Quantity)
	assert.Equal(t, "units", set.Items[0].Unit)
	assert.Equal(t, qty(1000), set.Items[1].Quantity)
	assert.Equal(t, "pcs", set.Items[1].Unit)
	assert.Equal(t, qty(2.5), set.Items[2].Quantity)
	assert.Empty(t, set.Items[2].Unit)

	require.Len(t, llm.Calls, 1)
	msgs := llm.Calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, driven.RoleSystem, msgs[0].Role)
	assert.Equal(t, "SYSTEM PROMPT", msgs[0].Content)
	assert.Equal(t, "Please quote", msgs[1].Content)
	assert.True(t, llm.Options[0].JSON)
	assert.Zero(t, llm.Options[0].Temperature)
}

func TestAnalyzer_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		resp string
	}{
		{"not json", "I could not find any items, sorry."},
		{"broken json", `{"items": [{"description": "Drill", "quantity": 5}`},
		{"wrong shape", `{"items": "Drill x5"}`},
		{"missing items", `{"customer_name": "ACME"}`},
		{"bad item type", `{"items": [{"description": "Drill", "quantity": true}]}`},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(t, fakes.NewLLM(tt.resp))

			set, err := a.Analyze(context.Background(), "some text", 8000)

			require.ErrorIs(t, err, domain.ErrAnalysisParseFailed)
			assert.True(t, domain.IsRecoverable(err))
			require.NotNil(t, set)
			assert.NotNil(t, set.Items)
			assert.Empty(t, set.Items)
		})
	}
}

func TestAnalyzer_StripsFencesAndChatter(t *testing.T) {
	resp := "Here you go:\n```json\n{\"items\": [{\"description\": \"Ladder\", \"quantity\": 4}]}\n```\nLet me know!"
	a := newTestAnalyzer(t, fakes.NewLLM(resp))

	set, err := a.Analyze(context.Background(), "text", 8000)
	require.NoError(t, err)
	require.Len(t, set.Items, 1)
	assert.Equal(t, "Ladder", set.Items[0].Description)
}

func TestAnalyzer_DropsInvalidQuantities(t *testing.T) {
	resp := `{"items": [
		{"description": "A", "quantity": -3},
		{"description": "B", "quantity": 0},
		{"description": "C", "quantity": "lots"},
		{"description": "", "quantity": null}
	]}`
	a := newTestAnalyzer(t, fakes.NewLLM(resp))

	set, err := a.Analyze(context.Background(), "text", 8000)
	require.NoError(t, err)
	require.Len(t, set.Items, 3)
	for _, item := range set.Items {
		assert.Nil(t, item.Quantity, item.Description)
	}
	assert.Equal(t, 3, set.RejectedQuantities)
}

func TestAnalyzer_ModelError(t *testing.T) {
	llm := &fakes.LLM{Script: []fakes.Reply{{Err: errors.New("connection reset")}}}
	a := newTestAnalyzer(t, llm)

	set, err := a.Analyze(context.Background(), "text", 8000)

	require.ErrorIs(t, err, domain.ErrExternalService)
	assert.True(t, domain.IsRecoverable(err))
	assert.Empty(t, set.Items)
}

func TestAnalyzer_Cancelled(t *testing.T) {
	llm := fakes.NewLLM(`{"items": []}`)
	a := newTestAnalyzer(t, llm)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, "text", 8000)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, llm.CallCount())
}

func TestAnalyzer_CancelledDuringCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	llm := &fakes.LLM{Respond: func([]driven.ChatMessage) (string, error) {
		cancel()
		return `{"items": [{"description": "Drill", "quantity": 1}]}`, nil
	}}
	a := newTestAnalyzer(t, llm)

	_, err := a.Analyze(ctx, "text", 8000)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzer_TruncatesInput(t *testing.T) {
	llm := fakes.NewLLM(`{"items": []}`)
	a := newTestAnalyzer(t, llm)

	tables := renderTable("a", 30) + "\n" + renderTable("b", 30)
	text := proseLines("x", 200) + "\n" + tables

	_, err := a.Analyze(context.Background(), text, 2500)
	require.NoError(t, err)

	sent := llm.Calls[0][1].Content
	assert.LessOrEqual(t, normtext.RuneLen(sent), 2500)
	assert.Equal(t, rowLines(text), rowLines(sent))
}

func TestAnalyzer_RepairsBrokenTables(t *testing.T) {
	llm := fakes.NewLLM(`{"items": []}`)
	a := newTestAnalyzer(t, llm)

	broken := normtext.TableStart + "\nHEADERS: Item | Qty\nROW: Drill | 5 | extra\n"
	_, err := a.Analyze(context.Background(), broken, 8000)
	require.NoError(t, err)

	assert.NoError(t, normtext.CheckIntegrity(llm.Calls[0][1].Content))
}

func TestAnalyzer_PromptFallback(t *testing.T) {
	llm := fakes.NewLLM(`{"items": []}`)
	a, err := NewAnalyzer(llm, promptMap{})
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), "text", 8000)
	require.NoError(t, err)
	assert.Equal(t, defaultAnalyzePrompt, llm.Calls[0][0].Content)

	a.SetPromptStore(promptMap{driven.PromptAnalyzeSystem: "custom"})
	_, err = a.Analyze(context.Background(), "text", 8000)
	require.NoError(t, err)
	assert.Equal(t, "custom", llm.Calls[1][0].Content)
}

func TestAnalyzer_TokenCounter(t *testing.T) {
	tokens := &countingTokens{}
	a := newTestAnalyzer(t, fakes.NewLLM(`{"items": []}`), WithTokenCounter(tokens), WithMaxTokens(512))

	_, err := a.Analyze(context.Background(), "text", 8000)
	require.NoError(t, err)
	assert.Equal(t, 2, tokens.calls)
	assert.Equal(t, 512, a.maxTokens)
}

func TestParseRequirements_NullFields(t *testing.T) {
	set, err := ParseRequirements(`{"customer_name": null, "items": [{"description": "Bolt", "quantity": 10, "unit": null, "specifications": null}]}`)
	require.NoError(t, err)

	assert.Empty(t, set.CustomerName)
	require.Len(t, set.Items, 1)
	assert.Equal(t, domain.LineItem{Description: "Bolt", Quantity: qty(10)}, set.Items[0])
}

func TestParseRequirements_OutOfRangeQuantity(t *testing.T) {
	set, err := ParseRequirements(`{"items": [
		{"description": "Huge", "quantity": 1e400},
		{"description": "Bolt", "quantity": 12}
	]}`)
	require.NoError(t, err)

	require.Len(t, set.Items, 2)
	assert.Equal(t, "Huge", set.Items[0].Description)
	assert.Nil(t, set.Items[0].Quantity)
	assert.Equal(t, qty(12), set.Items[1].Quantity)
	assert.Equal(t, 1, set.RejectedQuantities)
}

func TestParseRequirements_NullQuantityIsNotRejected(t *testing.T) {
	set, err := ParseRequirements(`{"items": [{"description": "Gloves", "quantity": null}, {"description": "Tape"}]}`)
	require.NoError(t, err)

	require.Len(t, set.Items, 2)
	assert.Zero(t, set.RejectedQuantities)
}
