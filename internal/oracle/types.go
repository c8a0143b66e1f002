package oracle

// Gating thresholds, keyed strictly on the compatibility total score.
// These are fixed business constants; do not re-derive them.
const (
	ScoreSafeApply      = 75.0
	ScoreSelectiveApply = 40.0
)

// Risk classifies a compatibility score. HIGH means safe to apply.
type Risk string

const (
	RiskHigh   Risk = "HIGH"
	RiskMedium Risk = "MEDIUM"
	RiskLow    Risk = "LOW"
)

// ClassifyRisk buckets a compatibility total score.
func ClassifyRisk(score float64) Risk {
	switch {
	case score >= ScoreSafeApply:
		return RiskHigh
	case score >= ScoreSelectiveApply:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Scorecard is the multi-dimension compliance score, 0-100 per dimension.
type Scorecard struct {
	Authority   float64 `json:"authority_compliance"`
	Obligation  float64 `json:"obligation_compliance"`
	Structural  float64 `json:"structural_compliance"`
	Metadata    float64 `json:"metadata_compliance"`
	Terminology float64 `json:"terminology_compliance"`
	Overall     float64 `json:"overall"`
}

// Compliance scorecard weights.
const (
	WeightAuthority   = 0.25
	WeightObligation  = 0.30
	WeightStructural  = 0.20
	WeightMetadata    = 0.15
	WeightTerminology = 0.10
)

// WeightedOverall computes the fixed weighted sum of the dimensions.
func (s Scorecard) WeightedOverall() float64 {
	return s.Authority*WeightAuthority +
		s.Obligation*WeightObligation +
		s.Structural*WeightStructural +
		s.Metadata*WeightMetadata +
		s.Terminology*WeightTerminology
}

// ObligationSummary aggregates rule outcomes per enforcement level.
type ObligationSummary struct {
	Level      string `json:"level"`
	TotalRules int    `json:"total_rules"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
}

// Violation is one rule breach found during compliance evaluation.
type Violation struct {
	RulePath        string `json:"rule_path"`
	Description     string `json:"description"`
	Severity        string `json:"severity,omitempty"`
	ObligationLevel string `json:"obligation_level"`
}

// SkippedRule records a rule not enforced, with the reason.
type SkippedRule struct {
	RulePath string `json:"rule_path"`
	Reason   string `json:"reason"`
}

// ComplianceReport is the evaluateCompliance result. Any mandatory-level
// violation forces Compliant=false regardless of score.
type ComplianceReport struct {
	ComplianceScore      float64             `json:"compliance_score"`
	Compliant            bool                `json:"compliant"`
	CompatibilityScore   float64             `json:"compatibility_score"`
	CompatibilityWarning string              `json:"compatibility_warning,omitempty"`
	Scorecard            Scorecard           `json:"scorecard"`
	ObligationSummary    []ObligationSummary `json:"obligation_summary,omitempty"`
	Violations           []Violation         `json:"violations"`
	SkippedRules         []SkippedRule       `json:"skipped_rules,omitempty"`
	FixOptions           []string            `json:"fix_options,omitempty"`
	AutoFixPossible      bool                `json:"auto_fix_possible"`
}

// Dimensions are the five weighted compatibility dimensions, 0-100 each.
type Dimensions struct {
	DocumentType         float64 `json:"document_type_score"`
	Structural           float64 `json:"structural_similarity_score"`
	LanguageModel        float64 `json:"language_model_score"`
	CompliancePhilosophy float64 `json:"compliance_philosophy_score"`
	TerminologyOverlap   float64 `json:"terminology_overlap_score"`
}

// Compatibility dimension weights.
const (
	WeightDocumentType         = 0.30
	WeightStructuralSimilarity = 0.25
	WeightLanguageModel        = 0.20
	WeightCompliancePhil       = 0.15
	WeightTerminologyOverlap   = 0.10
)

// WeightedTotal computes the fixed weighted sum of the dimensions.
func (d Dimensions) WeightedTotal() float64 {
	return d.DocumentType*WeightDocumentType +
		d.Structural*WeightStructuralSimilarity +
		d.LanguageModel*WeightLanguageModel +
		d.CompliancePhilosophy*WeightCompliancePhil +
		d.TerminologyOverlap*WeightTerminologyOverlap
}

// CompatibilityReport is the analyzeCompatibility result.
type CompatibilityReport struct {
	TotalScore         float64    `json:"total_score"`
	RiskClassification Risk       `json:"risk_classification"`
	Dimensions         Dimensions `json:"dimensions"`
	TargetDocumentType string     `json:"target_document_type,omitempty"`
	Reasoning          string     `json:"reasoning,omitempty"`
}

// SelectedRule is one rule in a selection partition.
type SelectedRule struct {
	RulePath      string `json:"rule_path"`
	Description   string `json:"description"`
	Justification string `json:"justification,omitempty"`
}

// RuleSelection is the fixed three-way partition of a standard's rules.
// Forbidden rules must never appear in an approved set regardless of
// score.
type RuleSelection struct {
	SafeRules        []SelectedRule `json:"safe_rules"`
	ConditionalRules []SelectedRule `json:"conditional_rules"`
	ForbiddenRules   []SelectedRule `json:"forbidden_rules"`
}

// RuleBrief is a rule reference passed to the transform phase.
type RuleBrief struct {
	RulePath    string `json:"rule_path"`
	Description string `json:"description"`
}

// ApprovedRules is the transform input: the approved rule set plus the
// standard it came from.
type ApprovedRules struct {
	ApprovedRules  []RuleBrief `json:"approved_rules"`
	SourceStandard any         `json:"source_standard,omitempty"`
}

// Deviation severities.
const (
	SeverityCosmetic   = "cosmetic"
	SeverityStructural = "structural"
	SeveritySemantic   = "semantic"
)

// Deviation is one logged change made during transformation. Every
// distinct change carries exactly one deviation record.
type Deviation struct {
	Location      string `json:"location"`
	OriginalText  string `json:"original_text"`
	ChangedTo     string `json:"changed_to"`
	Reason        string `json:"reason"`
	RuleReference string `json:"rule_reference"`
	Severity      string `json:"severity"`
}

// TransformResult is the transform output. Obligation strength is never
// escalated and embedded images pass through byte-identical; those are
// contract invariants on the backend.
type TransformResult struct {
	TransformedText string      `json:"transformed_text"`
	Deviations      []Deviation `json:"deviations"`
	PreservedItems  []string    `json:"preserved_items,omitempty"`
	ChangeSummary   string      `json:"change_summary"`
}

// Competence levels accepted by Transform.
const (
	CompetenceGeneral    = "general"
	CompetenceOperator   = "operator"
	CompetenceTechnician = "technician"
	CompetenceEngineer   = "engineer"
)
