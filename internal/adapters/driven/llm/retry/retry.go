// Package retry decorates an LLMService with per-call timeouts, retries with
// exponential backoff and jitter, and a shared client-side rate limit.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/custodia-labs/rfqx/internal/adapters/driven/llm"
	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.LLMService = (*Service)(nil)

const jitterPercent = 20

// Config holds the retry policy.
type Config struct {
	// Retries is how many times a failed call is repeated.
	Retries int

	// BaseDelay is the first backoff; it doubles per retry.
	BaseDelay time.Duration

	// MaxDelay caps a single backoff.
	MaxDelay time.Duration

	// AttemptTimeout bounds each call. Zero means no timeout.
	AttemptTimeout time.Duration
}

// ConfigFrom takes the retry policy from the cascade parameters.
func ConfigFrom(cfg domain.ExtractionConfig) Config {
	return Config{
		Retries:        cfg.RetryAttempts,
		BaseDelay:      cfg.RetryBaseDelay,
		MaxDelay:       cfg.RetryMaxDelay,
		AttemptTimeout: cfg.ModelTimeout,
	}
}

// Service retries transient failures of the wrapped service.
type Service struct {
	next    driven.LLMService
	cfg     Config
	limiter *Limiter
}

// Option configures a Service.
type Option func(*Service)

// WithLimiter shares a limiter between services, such as the analysis and
// vision models of one process.
func WithLimiter(l *Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// New wraps next with the retry policy. Without WithLimiter calls are not
// rate limited.
func New(next driven.LLMService, cfg Config, opts ...Option) *Service {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = domain.DefaultRetryBaseDelay
	}
	if cfg.MaxDelay > 0 && cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	s := &Service{
		next:    next,
		cfg:     cfg,
		limiter: NewLimiter(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces text completion from a prompt.
func (s *Service) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.do(ctx, "generate", func(ctx context.Context) (string, error) {
		return s.next.Generate(ctx, prompt, opts)
	})
}

// Chat conducts a multi-turn conversation.
func (s *Service) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.do(ctx, "chat", func(ctx context.Context) (string, error) {
		return s.next.Chat(ctx, messages, opts)
	})
}

func (s *Service) backoff() retry.Backoff {
	b := retry.NewExponential(s.cfg.BaseDelay)
	if s.cfg.MaxDelay > 0 {
		b = retry.WithCappedDuration(s.cfg.MaxDelay, b)
	}
	b = retry.WithJitterPercent(jitterPercent, b)
	return retry.WithMaxRetries(uint64(s.cfg.Retries), b) // #nosec G115 -- Retries is non-negative
}

// do runs call under the policy. Cancellation of ctx is returned as is;
// every other final failure wraps domain.ErrExternalService.
func (s *Service) do(ctx context.Context, op string, call func(context.Context) (string, error)) (string, error) {
	var out string
	attempts := 0

	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attempts++
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if s.cfg.AttemptTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, s.cfg.AttemptTimeout)
		}
		res, err := call(callCtx)
		cancel()

		if err == nil {
			out = res
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !llm.IsTransient(err) {
			return err
		}
		if errors.Is(err, domain.ErrRateLimited) {
			s.limiter.Backoff(max(llm.RetryAfter(err), s.cfg.BaseDelay))
		}
		logger.Debug("model call failed, retrying",
			"model", s.next.ModelName(),
			"op", op,
			"attempt", attempts,
			"error", err,
		)
		return retry.RetryableError(err)
	})
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	return "", fmt.Errorf("%w: %s %s failed after %d attempt(s): %w",
		domain.ErrExternalService, s.next.ModelName(), op, attempts, err)
}

// ModelName returns the wrapped model name.
func (s *Service) ModelName() string {
	return s.next.ModelName()
}

// Ping checks the wrapped service once, without retries.
func (s *Service) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *Service) Close() error {
	return s.next.Close()
}
