// Package decision gates document transformation behind a compatibility
// analysis. Nothing is rewritten until the standard has been scored
// against the target and the rules partitioned into safe, conditional
// and forbidden sets.
package decision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/oracle"
)

// Actions the score gate can take.
const (
	ActionSafeApply      = "safe_apply"
	ActionSelectiveApply = "selective_apply"
	ActionReportOnly     = "report_only"
)

// ApprovedSet is the gate outcome: which rules may be applied and under
// which action. Forbidden rules are excluded at every score.
type ApprovedSet struct {
	Action   string                `json:"action"`
	Rules    []oracle.RuleBrief    `json:"approved_rules"`
	Warnings []string              `json:"warnings,omitempty"`
	Excluded []oracle.SelectedRule `json:"excluded_rules,omitempty"`
}

// Analysis is the pre-transform phase result.
type Analysis struct {
	Compatibility *oracle.CompatibilityReport `json:"compatibility"`
	Selection     *oracle.RuleSelection       `json:"rule_selection"`
	Approved      ApprovedSet                 `json:"approved"`
}

// Outcome is the full pipeline result. TransformError is set when the
// backend signalled failure; the analysis fields stay valid either way.
type Outcome struct {
	Analysis       *Analysis               `json:"analysis"`
	Transform      *oracle.TransformResult `json:"transform,omitempty"`
	Transformed    bool                    `json:"transformed"`
	TransformError string                  `json:"transform_error,omitempty"`
}

type Flow struct {
	oracle oracle.Client
	log    *slog.Logger
}

func New(client oracle.Client, log *slog.Logger) *Flow {
	return &Flow{oracle: client, log: log}
}

// Analyze scores the standard against the target text and partitions the
// rules, without transforming anything.
func (f *Flow) Analyze(ctx context.Context, text string, rules *model.RuleSet) (*Analysis, error) {
	compat, err := f.oracle.AnalyzeCompatibility(ctx, rules, text)
	if err != nil {
		return nil, fmt.Errorf("compatibility analysis: %w", err)
	}
	selection, err := f.oracle.SelectRules(ctx, rules, compat.TotalScore)
	if err != nil {
		return nil, fmt.Errorf("rule selection: %w", err)
	}
	return &Analysis{
		Compatibility: compat,
		Selection:     selection,
		Approved:      BuildApprovedSet(selection, compat.TotalScore),
	}, nil
}

// Apply runs the full flow: analyze, gate, and transform with only the
// approved rules. When the gate approves nothing the transform phase is
// skipped entirely.
func (f *Flow) Apply(ctx context.Context, text string, rules *model.RuleSet, competenceLevel string) (*Outcome, error) {
	analysis, err := f.Analyze(ctx, text, rules)
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{Analysis: analysis}

	if len(analysis.Approved.Rules) == 0 {
		f.log.Info("transform skipped, no approved rules",
			"action", analysis.Approved.Action,
			"score", analysis.Compatibility.TotalScore)
		return outcome, nil
	}

	result, err := f.oracle.Transform(ctx, text, oracle.ApprovedRules{
		ApprovedRules:  analysis.Approved.Rules,
		SourceStandard: rules,
	}, competenceLevel)
	if err != nil {
		// The analysis and gate already succeeded; a transform failure is
		// recorded on the outcome so callers keep the partial report.
		outcome.TransformError = err.Error()
		f.log.Warn("transform failed", "error", err)
		return outcome, nil
	}

	if failed, reason := transformFailed(result.TransformedText); failed {
		// The backend reported failure inside the content instead of the
		// error channel. Discard the content, keep the accounting.
		result.TransformedText = ""
		outcome.TransformError = reason
		outcome.Transform = result
		f.log.Warn("transform reported failure", "reason", reason)
		return outcome, nil
	}

	outcome.Transform = result
	outcome.Transformed = true
	return outcome, nil
}

// BuildApprovedSet applies the score gate to a rule selection. It is
// pure: the same selection and score always produce the same set.
//
//	score >= 75: safe and conditional rules apply
//	40 <= score < 75: safe rules plus conditional rules, one warning each
//	score < 40: nothing applies, report only
func BuildApprovedSet(selection *oracle.RuleSelection, score float64) ApprovedSet {
	set := ApprovedSet{
		Rules:    []oracle.RuleBrief{},
		Excluded: selection.ForbiddenRules,
	}

	switch {
	case score >= oracle.ScoreSafeApply:
		set.Action = ActionSafeApply
		set.Rules = append(set.Rules, briefs(selection.SafeRules)...)
		set.Rules = append(set.Rules, briefs(selection.ConditionalRules)...)

	case score >= oracle.ScoreSelectiveApply:
		set.Action = ActionSelectiveApply
		set.Rules = append(set.Rules, briefs(selection.SafeRules)...)
		for _, rule := range selection.ConditionalRules {
			set.Rules = append(set.Rules, oracle.RuleBrief{
				RulePath:    rule.RulePath,
				Description: rule.Description,
			})
			set.Warnings = append(set.Warnings,
				fmt.Sprintf("conditional rule %s applied at compatibility %.0f", rule.RulePath, score))
		}

	default:
		set.Action = ActionReportOnly
	}
	return set
}

func briefs(rules []oracle.SelectedRule) []oracle.RuleBrief {
	out := make([]oracle.RuleBrief, 0, len(rules))
	for _, rule := range rules {
		out = append(out, oracle.RuleBrief{
			RulePath:    rule.RulePath,
			Description: rule.Description,
		})
	}
	return out
}

// transformFailed detects the failure marker some backends embed in the
// content: a short response containing "failed" is an error narrative,
// not a transformed document.
func transformFailed(text string) (bool, string) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 200 && strings.Contains(strings.ToLower(trimmed), "failed") {
		return true, trimmed
	}
	return false, ""
}
