package validate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/oracle"
)

// stubOracle returns canned compliance reports, or a fixed error when err
// is set.
type stubOracle struct {
	available bool
	report    *oracle.ComplianceReport
	err       error
	calls     int
}

func (s *stubOracle) Available() bool { return s.available }

func (s *stubOracle) EvaluateCompliance(_ context.Context, _ string, _ *model.RuleSet) (*oracle.ComplianceReport, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubOracle) ExtractStandard(context.Context, string, string) (*model.RuleSet, error) {
	return nil, oracle.ErrNotConfigured
}

func (s *stubOracle) AnalyzeCompatibility(context.Context, *model.RuleSet, string) (*oracle.CompatibilityReport, error) {
	return nil, oracle.ErrNotConfigured
}

func (s *stubOracle) SelectRules(context.Context, *model.RuleSet, float64) (*oracle.RuleSelection, error) {
	return nil, oracle.ErrNotConfigured
}

func (s *stubOracle) Transform(context.Context, string, oracle.ApprovedRules, string) (*oracle.TransformResult, error) {
	return nil, oracle.ErrNotConfigured
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func flowDoc() []byte {
	return []byte("---\ntitle: Manual\n---\n# Scope\nBody.\n")
}

func flowRules() *model.RuleSet {
	return &model.RuleSet{Metadata: map[string]string{"title": "Manual"}}
}

func TestEvaluateSkipsUnavailableOracle(t *testing.T) {
	stub := &stubOracle{available: false}
	ev := NewEvaluator(stub, discardLogger())

	report := ev.Evaluate(context.Background(), flowDoc(), "manual.md", flowRules())
	if !report.Compliant {
		t.Fatalf("errors: %v", report.Errors)
	}
	if stub.calls != 0 {
		t.Errorf("oracle called %d times despite being unavailable", stub.calls)
	}
	if _, ok := report.Details["ai_evaluation"]; ok {
		t.Error("no ai details expected without an oracle")
	}
}

func TestEvaluateOracleFailureDegradesToWarning(t *testing.T) {
	stub := &stubOracle{available: true, err: errors.New("model overloaded")}
	ev := NewEvaluator(stub, discardLogger())

	report := ev.Evaluate(context.Background(), flowDoc(), "manual.md", flowRules())
	if !report.Compliant {
		t.Fatalf("oracle failure must not fail the run: %v", report.Errors)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "AI-enhanced validation failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected degradation warning, got %v", report.Warnings)
	}
	detail, ok := report.Details["ai_evaluation"].(map[string]any)
	if !ok || detail["error"] == nil {
		t.Errorf("ai_evaluation detail = %v", report.Details["ai_evaluation"])
	}
}

func TestEvaluateCompliantOracleAddsNothing(t *testing.T) {
	stub := &stubOracle{available: true, report: &oracle.ComplianceReport{
		ComplianceScore: 92,
		Compliant:       true,
		Scorecard: oracle.Scorecard{
			Authority: 95, Obligation: 90, Structural: 92, Metadata: 90, Terminology: 95,
		},
	}}
	ev := NewEvaluator(stub, discardLogger())

	report := ev.Evaluate(context.Background(), flowDoc(), "manual.md", flowRules())
	if !report.Compliant {
		t.Fatalf("errors: %v", report.Errors)
	}
	if _, ok := report.Details["ai_score"]; !ok {
		t.Error("expected ai_score detail")
	}
}

func TestEvaluateNonCompliantOracleFailsRun(t *testing.T) {
	stub := &stubOracle{available: true, report: &oracle.ComplianceReport{
		ComplianceScore: 40,
		Compliant:       false,
		Violations: []oracle.Violation{
			{RulePath: "formatting.font_rules.body", Description: "Body font differs", ObligationLevel: "shall"},
		},
		FixOptions: []string{"Apply the mandated body font"},
	}}
	ev := NewEvaluator(stub, discardLogger())

	report := ev.Evaluate(context.Background(), flowDoc(), "manual.md", flowRules())
	if report.Compliant {
		t.Fatal("ai non-compliance must fail the run")
	}
	found := false
	for _, e := range report.Errors {
		if strings.Contains(e, "[shall]") && strings.Contains(e, "formatting.font_rules.body") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected tagged violation error, got %v", report.Errors)
	}
	if _, ok := report.Details["fix_options"]; !ok {
		t.Error("expected fix_options detail")
	}
}

func TestEvaluateDeterministicVerdictNeverWeakened(t *testing.T) {
	// Deterministic failure stands even when the oracle says compliant.
	stub := &stubOracle{available: true, report: &oracle.ComplianceReport{Compliant: true, ComplianceScore: 99}}
	ev := NewEvaluator(stub, discardLogger())

	rules := &model.RuleSet{Metadata: map[string]string{"title": "Manual", "subject": "QA"}}
	report := ev.Evaluate(context.Background(), flowDoc(), "manual.md", rules)
	if report.Compliant {
		t.Fatal("deterministic failure must survive a compliant ai report")
	}
}
