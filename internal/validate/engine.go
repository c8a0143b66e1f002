// Package validate checks documents against a standard version's
// structural rules.
package validate

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/parser"
)

// Report is the outcome of one validation run. Hard failures land in
// Errors and force Compliant=false; Warnings are advisory and never do.
type Report struct {
	Compliant bool           `json:"compliant"`
	Errors    []string       `json:"errors"`
	Warnings  []string       `json:"warnings"`
	Details   map[string]any `json:"details"`
}

func newReport() *Report {
	return &Report{
		Compliant: true,
		Errors:    []string{},
		Warnings:  []string{},
		Details:   map[string]any{},
	}
}

func (r *Report) fail(format string, args ...any) {
	r.Compliant = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// requiredODFVersion is the only document format version accepted without
// a hard failure.
const requiredODFVersion = "1.2"

// Run validates document bytes against a rule set. It is pure: identical
// (bytes, rules) pairs always produce identical reports, so results are
// safe to memoize by content hash.
func Run(data []byte, rules *model.RuleSet) *Report {
	report := newReport()

	switch parser.Sniff(data) {
	case parser.FormatPDF:
		report.Details["format"] = "PDF"
		report.warn("PDF documents only support metadata/format validation. Structural standards are skipped.")
		return report

	case parser.FormatODF:
		return validateODF(data, rules, report)

	case parser.FormatOfficeXML:
		report.Details["format"] = "DOCX"
		report.warn("Word documents (.docx) support macro detection but skip structural checks.")
		if entries := docxMacroEntries(data); len(entries) > 0 {
			report.Details["macro_entries"] = entries
			report.fail("Macros detected in Word document.")
		}
		return report

	case parser.FormatFlow:
		return validateFlow(data, rules, report)
	}

	report.fail("Unsupported file format. Please upload ODF, PDF, Word (.docx) or plain-text documents.")
	return report
}

func validateODF(data []byte, rules *model.RuleSet, report *Report) *Report {
	info, err := parser.ParseODF(data)
	if err != nil {
		report.fail("Invalid ODF file: %s", err)
		return report
	}
	report.Details["format"] = "ODF"

	// Version drift is recorded twice on purpose: the warning carries the
	// observed value, the error enforces the strict policy.
	if info.Version != requiredODFVersion {
		report.warn("Document version is %q, expected %q.", info.Version, requiredODFVersion)
		report.fail("Strict ODF %s compliance failed. Found version: %s", requiredODFVersion, info.Version)
	}

	if len(info.MacroEntries) > 0 {
		report.Details["macro_entries"] = info.MacroEntries
		report.fail("Macros detected. Macros are strictly forbidden.")
	}

	checkMetadata(rules.Metadata, info.Metadata, report)
	checkStyles(rules.Styles, info.Styles, report)
	return report
}

func validateFlow(data []byte, rules *model.RuleSet, report *Report) *Report {
	report.Details["format"] = "FLOW"
	report.warn("Flow documents support metadata validation only. Style and structure checks are skipped.")

	info := parser.ParseFlow(data)
	if len(info.Sections) > 0 {
		report.Details["sections"] = info.Sections
	}
	checkMetadata(rules.Metadata, info.FrontMatter, report)
	return report
}

// checkMetadata enforces the two-tier metadata policy: a rule key missing
// from the document is a hard failure, a present key with a differing
// value is a warning only.
func checkMetadata(required map[string]string, found map[string]string, report *Report) {
	for _, key := range sortedKeys(required) {
		want := required[key]
		got, ok := found[key]
		if !ok {
			report.fail("Missing required metadata field: %s", key)
			continue
		}
		if got != want {
			report.warn("Metadata mismatch for %s. Expected %q, got %q", key, want, got)
		}
	}
}

// checkStyles compares rule-declared styles against the document's. Styles
// the document does not use are never penalized.
func checkStyles(ruleStyles map[string]model.StyleRule, docStyles map[string]map[string]string, report *Report) {
	for _, name := range sortedKeys(ruleStyles) {
		docProps, ok := docStyles[name]
		if !ok {
			continue
		}
		ruleProps := ruleStyles[name].Properties
		for _, prop := range sortedKeys(ruleProps) {
			want := ruleProps[prop]
			if got, ok := docProps[prop]; ok && got != want {
				report.warn("Style %q mismatch: %s expected %q, got %q", name, prop, want, got)
			}
		}
	}
}

func docxMacroEntries(data []byte) []string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil
	}
	var entries []string
	for _, f := range zr.File {
		lower := strings.ToLower(f.Name)
		if strings.Contains(f.Name, "vbaProject") || strings.HasSuffix(lower, ".vba") || strings.Contains(lower, "macros") {
			entries = append(entries, f.Name)
		}
	}
	sort.Strings(entries)
	return entries
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StatusFor derives the stored validation status from a report.
func StatusFor(report *Report) model.ValidationStatus {
	if !report.Compliant {
		return model.StatusFail
	}
	if len(report.Warnings) > 0 {
		return model.StatusWarn
	}
	return model.StatusPass
}
