package validate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/oracle"
	"github.com/dgallion1/standgate/internal/parser"
)

// Evaluator runs the deterministic engine and, when an oracle credential
// is configured, augments the report with a model-based compliance
// evaluation. The deterministic verdict is never weakened by the oracle:
// the merged report can only add errors, never remove them.
type Evaluator struct {
	oracle oracle.Client
	log    *slog.Logger
}

func NewEvaluator(client oracle.Client, log *slog.Logger) *Evaluator {
	return &Evaluator{oracle: client, log: log}
}

// Evaluate validates data against rules. Oracle failures degrade to a
// warning on the deterministic report; they never fail the run.
func (e *Evaluator) Evaluate(ctx context.Context, data []byte, filename string, rules *model.RuleSet) *Report {
	report := Run(data, rules)

	if e.oracle == nil || !e.oracle.Available() {
		return report
	}

	text, err := parser.ExtractText(data, filename)
	if err != nil || text == "" {
		// Formats we cannot extract text from keep the deterministic
		// report untouched.
		return report
	}

	aiReport, err := e.oracle.EvaluateCompliance(ctx, text, rules)
	if err != nil {
		e.log.Warn("oracle compliance evaluation failed",
			"filename", filename,
			"error", err)
		report.warn("AI-enhanced validation failed: %v", err)
		report.Details["ai_evaluation"] = map[string]any{"error": err.Error()}
		return report
	}

	mergeAIReport(report, aiReport)
	return report
}

func mergeAIReport(report *Report, ai *oracle.ComplianceReport) {
	report.Details["ai_evaluation"] = ai
	report.Details["ai_score"] = ai.Scorecard.WeightedOverall()

	if ai.Compliant {
		return
	}
	report.Compliant = false
	for _, v := range ai.Violations {
		msg := fmt.Sprintf("[%s] %s", v.ObligationLevel, v.Description)
		if v.RulePath != "" {
			msg += fmt.Sprintf(" (%s)", v.RulePath)
		}
		report.Errors = append(report.Errors, msg)
	}
	if len(ai.FixOptions) > 0 {
		report.Details["fix_options"] = ai.FixOptions
	}
}
