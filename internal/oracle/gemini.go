package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/dgallion1/standgate/internal/model"
)

// Operation names used for latency tracking.
const (
	OpExtractStandard      = "extract_standard"
	OpEvaluateCompliance   = "evaluate_compliance"
	OpAnalyzeCompatibility = "analyze_compatibility"
	OpSelectRules          = "select_rules"
	OpTransform            = "transform"
)

// Gemini implements Client against the Gemini API with structured JSON
// output. A Gemini constructed without an API key is still usable: it
// reports Available() == false and every call returns ErrNotConfigured.
type Gemini struct {
	client *genai.Client
	model  string
	stats  *CallStats
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	g := &Gemini{
		model: modelName,
		stats: NewCallStats(time.Hour),
	}
	if apiKey == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *Gemini) Available() bool {
	return g != nil && g.client != nil
}

// Stats exposes the rolling per-operation latency window.
func (g *Gemini) Stats() *CallStats {
	return g.stats
}

// generate runs one structured-output call and unmarshals the JSON
// response into out. Rate limits and server errors surface as
// RetryableError so callers can back off and retry.
func (g *Gemini) generate(ctx context.Context, op, prompt string, schema *genai.Schema, out any) error {
	if !g.Available() {
		return ErrNotConfigured
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		g.stats.RecordFailure(op)
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500) {
			return &RetryableError{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return fmt.Errorf("gemini %s: %w", op, err)
	}
	g.stats.Record(op, elapsed)

	text := stripCodeBlock(resp.Text())
	if text == "" {
		return fmt.Errorf("gemini %s: empty response", op)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("gemini %s: parse response json: %w (raw: %s)", op, err, truncate(text, 200))
	}
	return nil
}

func (g *Gemini) ExtractStandard(ctx context.Context, text, filename string) (*model.RuleSet, error) {
	var rules model.RuleSet
	if err := g.generate(ctx, OpExtractStandard, extractStandardPrompt(text, filename), extractStandardSchema, &rules); err != nil {
		return nil, err
	}
	return &rules, nil
}

func (g *Gemini) EvaluateCompliance(ctx context.Context, text string, rules *model.RuleSet) (*ComplianceReport, error) {
	standardJSON, err := marshalRules(rules)
	if err != nil {
		return nil, err
	}
	var report ComplianceReport
	if err := g.generate(ctx, OpEvaluateCompliance, evaluateCompliancePrompt(text, standardJSON), evaluateComplianceSchema, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (g *Gemini) AnalyzeCompatibility(ctx context.Context, rules *model.RuleSet, targetText string) (*CompatibilityReport, error) {
	standardJSON, err := marshalRules(rules)
	if err != nil {
		return nil, err
	}
	var report CompatibilityReport
	if err := g.generate(ctx, OpAnalyzeCompatibility, analyzeCompatibilityPrompt(standardJSON, targetText), compatibilitySchema, &report); err != nil {
		return nil, err
	}
	// The score, not the model's label, is authoritative for gating.
	report.RiskClassification = ClassifyRisk(report.TotalScore)
	return &report, nil
}

func (g *Gemini) SelectRules(ctx context.Context, rules *model.RuleSet, compatibilityScore float64) (*RuleSelection, error) {
	standardJSON, err := marshalRules(rules)
	if err != nil {
		return nil, err
	}
	var selection RuleSelection
	if err := g.generate(ctx, OpSelectRules, selectRulesPrompt(standardJSON, compatibilityScore), ruleSelectionSchema, &selection); err != nil {
		return nil, err
	}
	return &selection, nil
}

func (g *Gemini) Transform(ctx context.Context, text string, approved ApprovedRules, competenceLevel string) (*TransformResult, error) {
	approvedJSON, err := json.Marshal(approved)
	if err != nil {
		return nil, fmt.Errorf("marshal approved rules: %w", err)
	}
	var result TransformResult
	if err := g.generate(ctx, OpTransform, transformPrompt(text, string(approvedJSON), competenceLevel), transformSchema, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func marshalRules(rules *model.RuleSet) (string, error) {
	if rules == nil {
		return "", fmt.Errorf("nil rule set")
	}
	b, err := json.Marshal(rules)
	if err != nil {
		return "", fmt.Errorf("marshal rule set: %w", err)
	}
	return string(b), nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
