package decision

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/oracle"
)

// stubOracle returns canned responses and counts transform calls.
type stubOracle struct {
	score           float64
	selection       oracle.RuleSelection
	transformResult oracle.TransformResult
	transformErr    error
	transformCalls  int
	lastApproved    oracle.ApprovedRules
}

func (s *stubOracle) Available() bool { return true }

func (s *stubOracle) ExtractStandard(ctx context.Context, text, filename string) (*model.RuleSet, error) {
	return &model.RuleSet{}, nil
}

func (s *stubOracle) EvaluateCompliance(ctx context.Context, text string, rules *model.RuleSet) (*oracle.ComplianceReport, error) {
	return &oracle.ComplianceReport{Compliant: true}, nil
}

func (s *stubOracle) AnalyzeCompatibility(ctx context.Context, rules *model.RuleSet, targetText string) (*oracle.CompatibilityReport, error) {
	return &oracle.CompatibilityReport{
		TotalScore:         s.score,
		RiskClassification: oracle.ClassifyRisk(s.score),
	}, nil
}

func (s *stubOracle) SelectRules(ctx context.Context, rules *model.RuleSet, compatibilityScore float64) (*oracle.RuleSelection, error) {
	sel := s.selection
	return &sel, nil
}

func (s *stubOracle) Transform(ctx context.Context, text string, approved oracle.ApprovedRules, competenceLevel string) (*oracle.TransformResult, error) {
	s.transformCalls++
	s.lastApproved = approved
	if s.transformErr != nil {
		return nil, s.transformErr
	}
	res := s.transformResult
	return &res, nil
}

func testSelection() oracle.RuleSelection {
	return oracle.RuleSelection{
		SafeRules: []oracle.SelectedRule{
			{RulePath: "structure.section_order", Description: "reorder sections"},
		},
		ConditionalRules: []oracle.SelectedRule{
			{RulePath: "language.modal_verbs", Description: "normalize modal verbs"},
		},
		ForbiddenRules: []oracle.SelectedRule{
			{RulePath: "safety.warnings", Description: "safety instruction content"},
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildApprovedSetGating(t *testing.T) {
	sel := testSelection()
	cases := []struct {
		score      float64
		wantAction string
		wantRules  int
	}{
		{0, ActionReportOnly, 0},
		{39.9, ActionReportOnly, 0},
		{40, ActionSelectiveApply, 2},
		{74.9, ActionSelectiveApply, 2},
		{75, ActionSafeApply, 2},
		{100, ActionSafeApply, 2},
	}
	for _, tc := range cases {
		set := BuildApprovedSet(&sel, tc.score)
		if set.Action != tc.wantAction {
			t.Errorf("score %v: action = %q, want %q", tc.score, set.Action, tc.wantAction)
		}
		if len(set.Rules) != tc.wantRules {
			t.Errorf("score %v: %d approved rules, want %d", tc.score, len(set.Rules), tc.wantRules)
		}
	}
}

func TestBuildApprovedSetForbiddenNeverApproved(t *testing.T) {
	sel := testSelection()
	for _, score := range []float64{0, 40, 75, 100} {
		set := BuildApprovedSet(&sel, score)
		for _, rule := range set.Rules {
			if rule.RulePath == "safety.warnings" {
				t.Errorf("score %v: forbidden rule approved", score)
			}
		}
		if len(set.Excluded) != 1 {
			t.Errorf("score %v: expected 1 excluded rule, got %d", score, len(set.Excluded))
		}
	}
}

func TestBuildApprovedSetConditionalWarnings(t *testing.T) {
	sel := testSelection()

	set := BuildApprovedSet(&sel, 60)
	if len(set.Warnings) != 1 {
		t.Fatalf("expected one warning per conditional rule, got %d", len(set.Warnings))
	}
	if !strings.Contains(set.Warnings[0], "language.modal_verbs") {
		t.Errorf("warning should name the rule: %q", set.Warnings[0])
	}

	if set := BuildApprovedSet(&sel, 90); len(set.Warnings) != 0 {
		t.Errorf("safe apply should carry no warnings, got %v", set.Warnings)
	}
}

func TestBuildApprovedSetDeterministic(t *testing.T) {
	sel := testSelection()
	a := BuildApprovedSet(&sel, 55)
	b := BuildApprovedSet(&sel, 55)
	if a.Action != b.Action || len(a.Rules) != len(b.Rules) || len(a.Warnings) != len(b.Warnings) {
		t.Error("same inputs produced different approved sets")
	}
}

func TestApplySkipsTransformBelowThreshold(t *testing.T) {
	stub := &stubOracle{score: 35, selection: testSelection()}
	flow := New(stub, testLogger())

	outcome, err := flow.Apply(context.Background(), "doc text", &model.RuleSet{}, "")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if stub.transformCalls != 0 {
		t.Errorf("transform called %d times below threshold", stub.transformCalls)
	}
	if outcome.Transformed {
		t.Error("outcome marked transformed without a transform")
	}
	if outcome.Analysis.Approved.Action != ActionReportOnly {
		t.Errorf("action = %q, want report_only", outcome.Analysis.Approved.Action)
	}
}

func TestApplyTransformsWithApprovedRulesOnly(t *testing.T) {
	stub := &stubOracle{
		score:     80,
		selection: testSelection(),
		transformResult: oracle.TransformResult{
			TransformedText: strings.Repeat("## Section\ncontent\n", 30),
			ChangeSummary:   "reordered sections",
		},
	}
	flow := New(stub, testLogger())

	outcome, err := flow.Apply(context.Background(), "doc text", &model.RuleSet{}, oracle.CompetenceOperator)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if stub.transformCalls != 1 {
		t.Fatalf("expected 1 transform call, got %d", stub.transformCalls)
	}
	if !outcome.Transformed {
		t.Error("expected transformed outcome")
	}
	for _, rule := range stub.lastApproved.ApprovedRules {
		if rule.RulePath == "safety.warnings" {
			t.Error("forbidden rule passed to transform")
		}
	}
}

func TestApplyDetectsFailureMarker(t *testing.T) {
	stub := &stubOracle{
		score:     80,
		selection: testSelection(),
		transformResult: oracle.TransformResult{
			TransformedText: "Transformation failed: model could not process the document.",
		},
	}
	flow := New(stub, testLogger())

	outcome, err := flow.Apply(context.Background(), "doc text", &model.RuleSet{}, "")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if outcome.Transformed {
		t.Error("failure narrative treated as a transform")
	}
	if outcome.TransformError == "" {
		t.Error("expected transform error to be surfaced")
	}
	if outcome.Transform.TransformedText != "" {
		t.Error("failure content should be discarded")
	}
}

func TestApplyKeepsAnalysisOnTransformError(t *testing.T) {
	stub := &stubOracle{
		score:        80,
		selection:    testSelection(),
		transformErr: errors.New("backend unavailable"),
	}
	flow := New(stub, testLogger())

	outcome, err := flow.Apply(context.Background(), "doc text", &model.RuleSet{}, "")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if outcome == nil {
		t.Fatal("transform error discarded the outcome")
	}
	if outcome.Transformed {
		t.Error("outcome marked transformed despite the error")
	}
	if outcome.TransformError == "" {
		t.Error("expected transform error to be surfaced")
	}
	if outcome.Analysis == nil || outcome.Analysis.Compatibility.TotalScore != 80 {
		t.Error("compatibility analysis must survive a transform error")
	}
	if outcome.Analysis.Approved.Action != ActionSafeApply {
		t.Errorf("action = %q, want safe_apply", outcome.Analysis.Approved.Action)
	}
}

func TestApplyKeepsLongContentMentioningFailed(t *testing.T) {
	long := strings.Repeat("The previous audit failed and was repeated. ", 10)
	stub := &stubOracle{
		score:           80,
		selection:       testSelection(),
		transformResult: oracle.TransformResult{TransformedText: long},
	}
	flow := New(stub, testLogger())

	outcome, err := flow.Apply(context.Background(), "doc text", &model.RuleSet{}, "")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !outcome.Transformed {
		t.Error("long document mentioning failure was discarded")
	}
}
