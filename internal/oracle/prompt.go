package oracle

import (
	"fmt"
	"strings"
)

// maxPromptText caps how much document text is sent per call.
const maxPromptText = 200000

func capText(s string) string {
	if len(s) > maxPromptText {
		return s[:maxPromptText]
	}
	return s
}

const extractStandardInstructions = `You are a document standards analyst. REVERSE-ENGINEER the implicit standard this document follows. The document does not declare its rules explicitly; infer them from its actual structure, language, tone and patterns.

Extract:
1. Document type: policy, manual, specification, training, legal or other.
2. Authority model: "governance" (hierarchical policy), "safety_first" (WARNING/CAUTION/NOTE blocks), "procedural" (step-by-step) or "regulatory" (references external regulations).
3. Authority chain: who owns, sponsors, approves and reviews this document, with role and level.
4. Hierarchy map: the document's internal levels and which sections depend on which.
5. Obligation semantics: for EVERY modal verb found (MUST, SHALL, SHOULD, MAY, COULD, SHALL NOT, MUST NOT), count occurrences and assign an enforcement level: MUST/SHALL/SHALL NOT/MUST NOT = "mandatory"; SHOULD/SHOULD NOT = "recommended"; MAY/COULD = "optional". These are enforceable obligation levels, not style choices.
6. Language rules: controlled vocabulary map, tone, modal verbs used.
7. Structure rules: mandatory sections the document demonstrates, whether ordering is enforced, the hierarchy pattern.
8. Governance: versioning discipline, approval/review blocks, traceability requirements.
9. Compliance model: "audit_based", "checklist", "regulatory_reference" or "none".
10. Domain markers: specific domain references found (ASME, ANSI, IEC, ISO, ...).

Extract what the document DEMONSTRATES, not just what it declares.`

func extractStandardPrompt(text, filename string) string {
	var sb strings.Builder
	sb.WriteString(extractStandardInstructions)
	sb.WriteString("\n\nDocument Filename: ")
	sb.WriteString(filename)
	sb.WriteString("\nDocument Content:\n")
	sb.WriteString(capText(text))
	return sb.String()
}

const evaluateComplianceInstructions = `You are a policy-aware compliance evaluation engine. Evaluate the document against the standard with understanding of authority, hierarchy and obligation semantics, not just formatting.

OBLIGATION-AWARE ENFORCEMENT:
1. MUST / SHALL / SHALL NOT / MUST NOT violations are HARD failures; any single one makes the document non-compliant.
2. SHOULD / SHOULD NOT violations are soft failures; flag them but they alone never cause non-compliance.
3. MAY / COULD are informational only.

MULTI-DIMENSION SCORING: score each dimension independently 0-100: authority_compliance, obligation_compliance, structural_compliance, metadata_compliance, terminology_compliance. Compute overall = authority*0.25 + obligation*0.30 + structural*0.20 + metadata*0.15 + terminology*0.10.

DOMAIN COMPATIBILITY: determine the target document's domain, compare against the standard's, enforce only universal rules when they differ, output compatibility_score 0-100, include compatibility_warning when below 50, and list skipped rules with reasons.

Classify each violation's obligation_level (mandatory/recommended/optional).`

func evaluateCompliancePrompt(text, standardJSON string) string {
	return fmt.Sprintf("%s\n\nStandard Definition (JSON):\n%s\n\nDocument Content:\n%s",
		evaluateComplianceInstructions, standardJSON, capText(text))
}

const analyzeCompatibilityInstructions = `You are a document compatibility assessor. Be conservative and risk-aware. Compare the reference standard with the target document.

Score compatibility 0-100 across these EXACT weighted dimensions:
- document_type_score (weight 30%): similarity of document types
- structural_similarity_score (weight 25%): shared section structures, hierarchy and patterns
- language_model_score (weight 20%): same language model (must/should vs WARNING/CAUTION)
- compliance_philosophy_score (weight 15%): compatible compliance approaches
- terminology_overlap_score (weight 10%): shared vocabulary

Compute total_score as the weighted sum with those exact weights.

Classify risk: total >= 75 "HIGH" (safe to apply); 40-74 "MEDIUM" (apply selectively with warnings); below 40 "LOW" (do not transform, report only).`

func analyzeCompatibilityPrompt(standardJSON, targetText string) string {
	return fmt.Sprintf("%s\n\nREFERENCE STANDARD (JSON):\n%s\n\nTARGET DOCUMENT:\n%s",
		analyzeCompatibilityInstructions, standardJSON, capText(targetText))
}

const selectRulesInstructions = `You are a compliance-safe rule selector. Never apply rules that could change meaning.

Categorize EVERY rule in the standard into exactly one of three categories:

SAFE rules (always allowed, never change meaning): section ordering, heading hierarchy, versioning metadata, document identifiers, formatting consistency.

CONDITIONAL rules (apply only if compatibility >= 40, warn the user): language normalization (must/should), compliance sections, governance statements, audit terminology.

FORBIDDEN rules (NEVER auto-apply, report only): domain-specific content, legal obligations, safety instructions, engineering constraints, training authority assignments.

For each rule provide the rule_path, description and a justification.`

func selectRulesPrompt(standardJSON string, compatibilityScore float64) string {
	return fmt.Sprintf("%s\n\nCompatibility score: %.0f/100\n\nSTANDARD SPECIFICATION (JSON):\n%s",
		selectRulesInstructions, compatibilityScore, standardJSON)
}

const transformInstructions = `You are a policy-aware document transformation engine. Preserve meaning at all costs and be ACCOUNTABLE for every change. Apply ONLY the approved rules to the target document.

CRITICAL CONSTRAINTS:
1. Return the ENTIRE document text in Markdown. Do not truncate or summarize.
2. Do not introduce obligations that do not exist in the original.
3. Do not invent content; only restructure, reformat or relabel.
4. Insert "[TO BE ADDED]" placeholders where required sections are missing.
5. Preserve ALL inline images exactly as they appear in the source. Strings like ![alt](data:image...;base64,...) must be carried over byte-identical to their exact locations, never truncated or stripped.
6. Never upgrade MAY to SHOULD or SHOULD to MUST. Obligation levels are frozen.

DEVIATION ACCOUNTABILITY: for EVERY change, log a deviation with location, original_text (short excerpt), changed_to, reason, rule_reference and severity ("cosmetic", "structural" or "semantic"). List items you chose not to change in preserved_items and provide a brief change_summary.`

const transformCompetenceNote = `
COMPETENCE LEVEL (%s): operator = clear procedures and basics; technician = skip basics, focus on maintenance and risk points; engineer = dense, jargon-heavy, parameters and root causes.`

func transformPrompt(text, approvedJSON, competenceLevel string) string {
	var sb strings.Builder
	sb.WriteString(transformInstructions)
	if competenceLevel != "" && competenceLevel != CompetenceGeneral {
		sb.WriteString(fmt.Sprintf(transformCompetenceNote, competenceLevel))
	}
	sb.WriteString("\n\nAPPROVED RULES (JSON):\n")
	sb.WriteString(approvedJSON)
	sb.WriteString("\n\nDOCUMENT TO TRANSFORM:\n")
	sb.WriteString(capText(text))
	return sb.String()
}
