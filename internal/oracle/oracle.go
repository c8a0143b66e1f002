// Package oracle defines the capability contract for the external
// generative model and its Gemini-backed implementation. Any backend —
// the live model, a recorded fixture, a deterministic stub — must satisfy
// the same schema contract, so the decision flow can be tested without a
// live model.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/standgate/internal/model"
)

// Client is the four-phase oracle contract. Every operation is idempotent
// with respect to its inputs and returns schema-validated structured data.
type Client interface {
	// Available reports whether a credential is configured. When false,
	// every operation returns ErrNotConfigured and callers degrade to
	// deterministic-only behavior.
	Available() bool

	// ExtractStandard reverse-engineers the implicit rule set a document
	// demonstrates.
	ExtractStandard(ctx context.Context, text, filename string) (*model.RuleSet, error)

	// EvaluateCompliance scores a document against a standard and returns
	// the multi-dimension scorecard with per-violation obligation levels.
	EvaluateCompliance(ctx context.Context, text string, rules *model.RuleSet) (*ComplianceReport, error)

	// AnalyzeCompatibility scores how appropriate it is to apply a
	// standard to a target document.
	AnalyzeCompatibility(ctx context.Context, rules *model.RuleSet, targetText string) (*CompatibilityReport, error)

	// SelectRules partitions a standard's rules into safe, conditional
	// and forbidden sets for the given compatibility score.
	SelectRules(ctx context.Context, rules *model.RuleSet, compatibilityScore float64) (*RuleSelection, error)

	// Transform applies only the approved rules to the document text and
	// accounts for every change with a deviation record.
	Transform(ctx context.Context, text string, approved ApprovedRules, competenceLevel string) (*TransformResult, error)
}

// ErrNotConfigured is returned by every operation when no credential is
// present.
var ErrNotConfigured = errors.New("oracle not configured")

// RetryableError indicates a transient backend failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable oracle error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
