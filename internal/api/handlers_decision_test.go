package api

import (
	"testing"

	"github.com/dgallion1/standgate/internal/decision"
	"github.com/dgallion1/standgate/internal/oracle"
)

func TestFixArtifactEntries(t *testing.T) {
	outcome := &decision.Outcome{
		Analysis: &decision.Analysis{
			Compatibility: &oracle.CompatibilityReport{
				TotalScore:         82,
				RiskClassification: oracle.RiskLow,
			},
			Approved: decision.ApprovedSet{Action: decision.ActionSafeApply},
		},
		Transform: &oracle.TransformResult{
			Deviations: []oracle.Deviation{
				{RuleReference: "language.modal_verbs", Reason: "ambiguous source sentence"},
			},
			ChangeSummary: "normalized modal verbs",
		},
		Transformed: true,
	}

	entries := fixArtifactEntries("fixed/abc/manual.odt.fixed.txt", outcome)
	if entries["fixed_path"] != "fixed/abc/manual.odt.fixed.txt" {
		t.Errorf("fixed_path = %v", entries["fixed_path"])
	}
	df, ok := entries["decision_flow"].(map[string]any)
	if !ok {
		t.Fatalf("decision_flow = %T", entries["decision_flow"])
	}
	if df["action"] != decision.ActionSafeApply {
		t.Errorf("action = %v", df["action"])
	}
	if df["compatibility_score"] != 82.0 {
		t.Errorf("compatibility_score = %v", df["compatibility_score"])
	}
	if df["risk_classification"] != oracle.RiskLow {
		t.Errorf("risk_classification = %v", df["risk_classification"])
	}
	if df["change_summary"] != "normalized modal verbs" {
		t.Errorf("change_summary = %v", df["change_summary"])
	}
	devs, ok := df["deviations"].([]oracle.Deviation)
	if !ok || len(devs) != 1 {
		t.Errorf("deviations = %v", df["deviations"])
	}
}
