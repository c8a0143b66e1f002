package oracle

import "google.golang.org/genai"

// Response schemas constrain the model to the exact JSON shapes the
// contract types unmarshal from.

func strProp() *genai.Schema    { return &genai.Schema{Type: genai.TypeString} }
func numProp() *genai.Schema    { return &genai.Schema{Type: genai.TypeNumber} }
func intProp() *genai.Schema    { return &genai.Schema{Type: genai.TypeInteger} }
func boolProp() *genai.Schema   { return &genai.Schema{Type: genai.TypeBoolean} }
func strArray() *genai.Schema   { return &genai.Schema{Type: genai.TypeArray, Items: strProp()} }

var extractStandardSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"standard_id":      strProp(),
		"version":          strProp(),
		"document_type":    {Type: genai.TypeString, Enum: []string{"policy", "manual", "specification", "training", "legal", "other"}},
		"authority_model":  {Type: genai.TypeString, Enum: []string{"governance", "safety_first", "procedural", "regulatory"}},
		"compliance_model": {Type: genai.TypeString, Enum: []string{"audit_based", "checklist", "regulatory_reference", "none"}},
		"authority_chain": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"level":          strProp(),
					"entity":         strProp(),
					"authority_type": strProp(),
				},
				Required: []string{"level", "entity"},
			},
		},
		"hierarchy_map": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"levels":       strArray(),
				"dependencies": strArray(),
			},
		},
		"obligation_semantics": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"term":              strProp(),
					"enforcement_level": {Type: genai.TypeString, Enum: []string{"mandatory", "recommended", "optional", "forbidden"}},
					"count":             intProp(),
				},
				Required: []string{"term", "enforcement_level"},
			},
		},
		"structure": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"mandatory_sections":     strArray(),
				"section_order_enforced": boolProp(),
				"hierarchy_pattern":      strProp(),
			},
		},
		"formatting": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"heading_style": strProp(),
				"font_rules": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"body":    strProp(),
						"heading": strProp(),
					},
				},
			},
		},
		"language": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"controlled_vocabulary": boolProp(),
				"tone":                  strProp(),
				"modal_verbs":           strArray(),
			},
		},
		"governance": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"versioning_required":     boolProp(),
				"approval_block_required": boolProp(),
				"traceability": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"part_numbers":      boolProp(),
						"figure_references": boolProp(),
						"form_numbers":      boolProp(),
						"annex_references":  boolProp(),
					},
				},
			},
		},
		"domain_markers": strArray(),
	},
	Required: []string{"document_type", "authority_model", "compliance_model"},
}

var violationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"rule_path":        strProp(),
		"obligation_level": {Type: genai.TypeString, Enum: []string{"mandatory", "recommended", "optional"}},
		"description":      strProp(),
		"severity":         strProp(),
	},
	Required: []string{"rule_path", "obligation_level", "description"},
}

var skippedRuleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"rule_path": strProp(),
		"reason":    strProp(),
	},
	Required: []string{"rule_path", "reason"},
}

var evaluateComplianceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"compliance_score": numProp(),
		"compliant":        boolProp(),
		"scorecard": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"authority_compliance":   numProp(),
				"obligation_compliance":  numProp(),
				"structural_compliance":  numProp(),
				"metadata_compliance":    numProp(),
				"terminology_compliance": numProp(),
				"overall":                numProp(),
			},
			Required: []string{
				"authority_compliance", "obligation_compliance",
				"structural_compliance", "metadata_compliance",
				"terminology_compliance", "overall",
			},
		},
		"obligation_summary": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"level":       strProp(),
					"total_rules": intProp(),
					"passed":      intProp(),
					"failed":      intProp(),
				},
				Required: []string{"level", "total_rules", "passed", "failed"},
			},
		},
		"violations":            {Type: genai.TypeArray, Items: violationSchema},
		"compatibility_score":   numProp(),
		"compatibility_warning": strProp(),
		"skipped_rules":         {Type: genai.TypeArray, Items: skippedRuleSchema},
		"fix_options":           strArray(),
		"auto_fix_possible":     boolProp(),
	},
	Required: []string{"compliance_score", "compliant", "scorecard", "violations"},
}

var compatibilitySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"total_score": numProp(),
		"dimensions": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"document_type_score":         numProp(),
				"structural_similarity_score": numProp(),
				"language_model_score":        numProp(),
				"compliance_philosophy_score": numProp(),
				"terminology_overlap_score":   numProp(),
			},
			Required: []string{
				"document_type_score", "structural_similarity_score",
				"language_model_score", "compliance_philosophy_score",
				"terminology_overlap_score",
			},
		},
		"risk_classification":  {Type: genai.TypeString, Enum: []string{string(RiskHigh), string(RiskMedium), string(RiskLow)}},
		"target_document_type": strProp(),
		"reasoning":            strProp(),
	},
	Required: []string{"total_score", "dimensions", "risk_classification"},
}

var selectedRuleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"rule_path":     strProp(),
		"description":   strProp(),
		"justification": strProp(),
	},
	Required: []string{"rule_path", "description"},
}

var ruleSelectionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"safe_rules":        {Type: genai.TypeArray, Items: selectedRuleSchema},
		"conditional_rules": {Type: genai.TypeArray, Items: selectedRuleSchema},
		"forbidden_rules":   {Type: genai.TypeArray, Items: selectedRuleSchema},
	},
	Required: []string{"safe_rules", "conditional_rules", "forbidden_rules"},
}

var transformSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"transformed_text": strProp(),
		"deviations": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"location":       strProp(),
					"original_text":  strProp(),
					"changed_to":     strProp(),
					"reason":         strProp(),
					"rule_reference": strProp(),
					"severity":       {Type: genai.TypeString, Enum: []string{SeverityCosmetic, SeverityStructural, SeveritySemantic}},
				},
				Required: []string{"location", "changed_to", "reason", "severity"},
			},
		},
		"preserved_items": strArray(),
		"change_summary":  strProp(),
	},
	Required: []string{"transformed_text", "deviations", "change_summary"},
}
