package model

// RuleSet is the structured rule document stored in a standard version's
// rules_json column. The structure/formatting/language/metadata sections
// drive validation; the remaining fields are produced by the extraction
// phase and carried through for the oracle.
type RuleSet struct {
	StandardID   string `json:"standard_id,omitempty"`
	Version      string `json:"version,omitempty"`
	DocumentType string `json:"document_type,omitempty"`

	AuthorityModel  string `json:"authority_model,omitempty"`
	ComplianceModel string `json:"compliance_model,omitempty"`

	Structure  *StructureRules  `json:"structure,omitempty"`
	Formatting *FormattingRules `json:"formatting,omitempty"`
	Language   *LanguageRules   `json:"language,omitempty"`

	// Metadata maps required document metadata fields to their expected
	// values. A field absent from the document is a hard failure; a field
	// present with a different value is a warning.
	Metadata map[string]string `json:"metadata,omitempty"`

	Governance *GovernanceRules `json:"governance,omitempty"`

	// Styles maps named styles to their expected text properties.
	Styles map[string]StyleRule `json:"styles,omitempty"`

	// Extraction-phase fields.
	AuthorityChain      []AuthorityEntry `json:"authority_chain,omitempty"`
	HierarchyMap        *HierarchyMap    `json:"hierarchy_map,omitempty"`
	ObligationSemantics []ObligationTerm `json:"obligation_semantics,omitempty"`
	DomainMarkers       []string         `json:"domain_markers,omitempty"`
}

// StructureRules describe required sections and their ordering.
type StructureRules struct {
	MandatorySections    []string `json:"mandatory_sections,omitempty"`
	SectionOrderEnforced bool     `json:"section_order_enforced,omitempty"`
	HierarchyPattern     string   `json:"hierarchy_pattern,omitempty"`
}

// FormattingRules describe heading style and fonts.
type FormattingRules struct {
	HeadingStyle string    `json:"heading_style,omitempty"`
	FontRules    *FontRule `json:"font_rules,omitempty"`
}

type FontRule struct {
	Body    string `json:"body,omitempty"`
	Heading string `json:"heading,omitempty"`
}

// LanguageRules describe controlled vocabulary and modal-verb usage.
type LanguageRules struct {
	ControlledVocabulary    bool              `json:"controlled_vocabulary,omitempty"`
	ControlledVocabularyMap map[string]string `json:"controlled_vocabulary_map,omitempty"`
	Tone                    string            `json:"tone,omitempty"`
	ModalVerbs              []string          `json:"modal_verbs,omitempty"`
}

// GovernanceRules describe versioning and approval discipline.
type GovernanceRules struct {
	VersioningRequired    bool               `json:"versioning_required,omitempty"`
	ApprovalBlockRequired bool               `json:"approval_block_required,omitempty"`
	Traceability          *TraceabilityRules `json:"traceability,omitempty"`
}

type TraceabilityRules struct {
	PartNumbers      bool `json:"part_numbers,omitempty"`
	FigureReferences bool `json:"figure_references,omitempty"`
	FormNumbers      bool `json:"form_numbers,omitempty"`
	AnnexReferences  bool `json:"annex_references,omitempty"`
}

// StyleRule is the expected text-property map for one named style.
type StyleRule struct {
	Properties map[string]string `json:"properties,omitempty"`
}

// AuthorityEntry names one party in a document's authority chain.
type AuthorityEntry struct {
	Level         string `json:"level,omitempty"`
	Entity        string `json:"entity,omitempty"`
	AuthorityType string `json:"authority_type,omitempty"`
}

// HierarchyMap captures a document's internal level structure.
type HierarchyMap struct {
	Levels       []string `json:"levels,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// ObligationTerm records one modal verb and its enforcement bucket.
type ObligationTerm struct {
	Term             string `json:"term"`
	EnforcementLevel string `json:"enforcement_level"`
	Count            int    `json:"count,omitempty"`
}

// Enforcement levels for obligation terms.
const (
	EnforcementMandatory   = "mandatory"
	EnforcementRecommended = "recommended"
	EnforcementOptional    = "optional"
	EnforcementForbidden   = "forbidden"
)
