package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/logger"
	"github.com/custodia-labs/rfqx/internal/normtext"
	"github.com/custodia-labs/rfqx/internal/quantity"
)

// DefaultAnalyzerMaxTokens bounds the model response.
const DefaultAnalyzerMaxTokens = 4096

// requirementSchema is the accepted shape of a model response. Quantity may
// be a number or a string such as "1,000 pcs"; coercion happens after
// validation.
const requirementSchema = `{
  "type": "object",
  "required": ["items"],
  "properties": {
    "customer_name":  {"type": ["string", "null"]},
    "project_name":   {"type": ["string", "null"]},
    "deadline":       {"type": ["string", "null"]},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description":    {"type": ["string", "null"]},
          "quantity":       {"type": ["number", "string", "null"]},
          "unit":           {"type": ["string", "null"]},
          "specifications": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var requirementJSONSchema = jsonschema.MustCompileString("requirements.json", requirementSchema)

const defaultAnalyzePrompt = `Extract every requested line item from the RFQ text. ` +
	`Respond with one JSON object: {"customer_name": string, "project_name": string, "deadline": string, ` +
	`"items": [{"description": string, "quantity": number, "unit": string, "specifications": string}]}. ` +
	`Leave unit empty when the document does not state one.`

// Analyzer turns normalised text into a RequirementSet with one model call.
type Analyzer struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	tokens    driven.TokenCounter
	maxTokens int
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithTokenCounter enables prompt size logging.
func WithTokenCounter(tc driven.TokenCounter) AnalyzerOption {
	return func(a *Analyzer) {
		a.tokens = tc
	}
}

// WithMaxTokens sets the response token limit.
func WithMaxTokens(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// NewAnalyzer creates an analyzer. The prompt store may be nil, in which
// case a built-in prompt is used.
func NewAnalyzer(llm driven.LLMService, prompts driven.PromptStore, opts ...AnalyzerOption) (*Analyzer, error) {
	if llm == nil {
		return nil, fmt.Errorf("%w: analyzer needs an LLM service", domain.ErrConfiguration)
	}
	a := &Analyzer{
		llm:       llm,
		prompts:   prompts,
		maxTokens: DefaultAnalyzerMaxTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// SetPromptStore implements driven.PromptStoreAware.
func (a *Analyzer) SetPromptStore(store driven.PromptStore) {
	a.prompts = store
}

// Analyze extracts requirements from text, sending at most budget runes.
//
// The returned set is never nil. A response that is not valid JSON or does
// not match the schema yields an empty set and an error wrapping
// domain.ErrAnalysisParseFailed. Model failures wrap
// domain.ErrExternalService. Cancellation returns ctx.Err().
func (a *Analyzer) Analyze(ctx context.Context, text string, budget int) (*domain.RequirementSet, error) {
	if err := ctx.Err(); err != nil {
		return domain.NewRequirementSet(), err
	}

	if normtext.CheckIntegrity(text) != nil {
		text = normtext.Repair(text)
	}
	cut := Truncate(text, budget)
	if cut.Truncated {
		logger.Debug("analyzer input truncated",
			"budget", budget,
			"original", normtext.RuneLen(text),
			"kept", normtext.RuneLen(cut.Text),
			"tables_kept", cut.TablesKept,
			"tables_total", cut.TablesTotal,
			"clipped", cut.Clipped,
		)
	}

	system := a.systemPrompt()
	if a.tokens != nil {
		logger.Debug("analyzer prompt", "tokens", a.tokens.Count(system)+a.tokens.Count(cut.Text), "model", a.llm.ModelName())
	}

	resp, err := a.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: cut.Text},
	}, driven.ChatOptions{
		MaxTokens:   a.maxTokens,
		Temperature: 0,
		JSON:        true,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.NewRequirementSet(), ctxErr
	}
	if err != nil {
		if !errors.Is(err, domain.ErrExternalService) {
			err = fmt.Errorf("%w: %w", domain.ErrExternalService, err)
		}
		return domain.NewRequirementSet(), fmt.Errorf("analyze: %w", err)
	}

	set, err := ParseRequirements(resp)
	if err != nil {
		logger.Warn("analyzer response rejected", "error", err, "response_len", len(resp))
		return domain.NewRequirementSet(), err
	}
	return set, nil
}

func (a *Analyzer) systemPrompt() string {
	if a.prompts == nil {
		return defaultAnalyzePrompt
	}
	prompt, err := a.prompts.Load(driven.PromptAnalyzeSystem)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return defaultAnalyzePrompt
	}
	return prompt
}

type rawSet struct {
	CustomerName *string   `json:"customer_name"`
	ProjectName  *string   `json:"project_name"`
	Deadline     *string   `json:"deadline"`
	Items        []rawItem `json:"items"`
}

type rawItem struct {
	Description    *string `json:"description"`
	Quantity       any     `json:"quantity"`
	Unit           *string `json:"unit"`
	Specifications *string `json:"specifications"`
}

// ParseRequirements parses a model response into a RequirementSet.
// Code fences and chatter around the outermost JSON object are ignored.
// Failures wrap domain.ErrAnalysisParseFailed.
func ParseRequirements(resp string) (*domain.RequirementSet, error) {
	body, err := jsonObject(resp)
	if err != nil {
		return nil, err
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisParseFailed, err)
	}
	if err := requirementJSONSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisParseFailed, err)
	}

	var raw rawSet
	dec = json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisParseFailed, err)
	}

	set := &domain.RequirementSet{
		CustomerName: deref(raw.CustomerName),
		ProjectName:  deref(raw.ProjectName),
		Deadline:     deref(raw.Deadline),
		Items:        make([]domain.LineItem, 0, len(raw.Items)),
	}
	for _, r := range raw.Items {
		item := domain.LineItem{
			Description:    deref(r.Description),
			Unit:           deref(r.Unit),
			Specifications: deref(r.Specifications),
		}
		item.Quantity, item.Unit = coerceQuantity(r.Quantity, item.Unit)
		if r.Quantity != nil && item.Quantity == nil && item.HasDescription() {
			set.RejectedQuantities++
		}
		set.Items = append(set.Items, item)
	}
	set.Clean()
	return set, nil
}

// coerceQuantity turns a JSON number or numeric string into a valid
// quantity. Numbers outside the float64 range are unset. A unit written
// inside the string is used only when the item has none.
func coerceQuantity(v any, unit string) (*float64, string) {
	switch q := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(q.String(), 64)
		if err != nil {
			return nil, unit
		}
		return domain.Qty(f), unit
	case float64:
		return domain.Qty(q), unit
	case string:
		parsed := quantity.Parse(q)
		if parsed.Value == nil {
			return nil, unit
		}
		if strings.TrimSpace(unit) == "" {
			unit = parsed.Unit
		}
		return domain.Qty(*parsed.Value), unit
	default:
		return nil, unit
	}
}

func jsonObject(resp string) ([]byte, error) {
	start := strings.Index(resp, "{")
	end := strings.LastIndex(resp, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in response", domain.ErrAnalysisParseFailed)
	}
	return []byte(resp[start : end+1]), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
