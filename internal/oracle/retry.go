package oracle

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/standgate/internal/model"
)

// MaxRetries bounds retry attempts per oracle call.
const MaxRetries = 3

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// WithRetry wraps a client so rate limits and transient backend errors
// are retried with jittered exponential backoff. Non-retryable errors
// pass through immediately.
func WithRetry(client Client) Client {
	return &retryClient{inner: client}
}

type retryClient struct {
	inner Client
}

func (r *retryClient) Available() bool { return r.inner.Available() }

func retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (r *retryClient) ExtractStandard(ctx context.Context, text, filename string) (*model.RuleSet, error) {
	var out *model.RuleSet
	err := retry(ctx, func() error {
		var callErr error
		out, callErr = r.inner.ExtractStandard(ctx, text, filename)
		return callErr
	})
	return out, err
}

func (r *retryClient) EvaluateCompliance(ctx context.Context, text string, rules *model.RuleSet) (*ComplianceReport, error) {
	var out *ComplianceReport
	err := retry(ctx, func() error {
		var callErr error
		out, callErr = r.inner.EvaluateCompliance(ctx, text, rules)
		return callErr
	})
	return out, err
}

func (r *retryClient) AnalyzeCompatibility(ctx context.Context, rules *model.RuleSet, targetText string) (*CompatibilityReport, error) {
	var out *CompatibilityReport
	err := retry(ctx, func() error {
		var callErr error
		out, callErr = r.inner.AnalyzeCompatibility(ctx, rules, targetText)
		return callErr
	})
	return out, err
}

func (r *retryClient) SelectRules(ctx context.Context, rules *model.RuleSet, compatibilityScore float64) (*RuleSelection, error) {
	var out *RuleSelection
	err := retry(ctx, func() error {
		var callErr error
		out, callErr = r.inner.SelectRules(ctx, rules, compatibilityScore)
		return callErr
	})
	return out, err
}

func (r *retryClient) Transform(ctx context.Context, text string, approved ApprovedRules, competenceLevel string) (*TransformResult, error) {
	var out *TransformResult
	err := retry(ctx, func() error {
		var callErr error
		out, callErr = r.inner.Transform(ctx, text, approved, competenceLevel)
		return callErr
	})
	return out, err
}
