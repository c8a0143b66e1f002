package api

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/audit"
	"github.com/dgallion1/standgate/internal/blob"
	"github.com/dgallion1/standgate/internal/decision"
	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/oracle"
	"github.com/dgallion1/standgate/internal/parser"
	"github.com/dgallion1/standgate/internal/resolve"
	"github.com/dgallion1/standgate/internal/store"
)

type decisionRequest struct {
	StandardVersionID uuid.UUID `json:"standard_version_id"`
	CompetenceLevel   string    `json:"competence_level"`
}

func (req decisionRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.CompetenceLevel, validation.In(
			oracle.CompetenceGeneral, oracle.CompetenceOperator,
			oracle.CompetenceTechnician, oracle.CompetenceEngineer)),
	)
}

// decisionInputs loads the document text and governing rules for the
// decision flow. A zero version id falls back to tree resolution.
func (s *Server) decisionInputs(w http.ResponseWriter, r *http.Request, versionID uuid.UUID) (*model.Document, string, *model.RuleSet, bool) {
	docID, ok := uuidParam(w, r, "docID")
	if !ok {
		return nil, "", nil, false
	}
	doc, err := s.store.Document(r.Context(), docID)
	if err != nil {
		storeError(w, err)
		return nil, "", nil, false
	}

	if versionID == uuid.Nil {
		res, err := s.resolver.ForDocument(r.Context(), doc)
		if err != nil {
			if errors.Is(err, resolve.ErrNoStandard) {
				jsonError(w, err.Error(), http.StatusConflict)
			} else {
				jsonError(w, err.Error(), http.StatusInternalServerError)
			}
			return nil, "", nil, false
		}
		versionID = res.Assignment.StandardVersionID
	}
	version, err := s.store.Version(r.Context(), versionID)
	if err != nil {
		storeError(w, err)
		return nil, "", nil, false
	}

	data, err := s.blobs.Get(r.Context(), doc.StorageKey)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return nil, "", nil, false
	}
	text, err := parser.ExtractText(data, doc.Filename)
	if err != nil {
		jsonError(w, "cannot extract text: "+err.Error(), http.StatusUnprocessableEntity)
		return nil, "", nil, false
	}
	return doc, text, &version.Rules, true
}

func decodeDecisionRequest(w http.ResponseWriter, r *http.Request) (decisionRequest, bool) {
	var req decisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return req, false
		}
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// handleAnalyzeDocument runs compatibility analysis and rule selection
// without transforming anything.
func (s *Server) handleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	if !s.oracleClient.Available() {
		jsonError(w, oracle.ErrNotConfigured.Error(), http.StatusServiceUnavailable)
		return
	}
	req, ok := decodeDecisionRequest(w, r)
	if !ok {
		return
	}
	doc, text, rules, ok := s.decisionInputs(w, r, req.StandardVersionID)
	if !ok {
		return
	}

	analysis, err := s.flow.Analyze(r.Context(), text, rules)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionAnalyze, doc.ID.String(),
		map[string]any{
			"score":  analysis.Compatibility.TotalScore,
			"action": analysis.Approved.Action,
		})
	respondJSON(w, http.StatusOK, analysis)
}

// handleTransformDocument runs the full gated flow. When content is
// produced it is stored as a fixed artifact next to the original.
func (s *Server) handleTransformDocument(w http.ResponseWriter, r *http.Request) {
	if !s.oracleClient.Available() {
		jsonError(w, oracle.ErrNotConfigured.Error(), http.StatusServiceUnavailable)
		return
	}
	req, ok := decodeDecisionRequest(w, r)
	if !ok {
		return
	}
	doc, text, rules, ok := s.decisionInputs(w, r, req.StandardVersionID)
	if !ok {
		return
	}

	outcome, err := s.flow.Apply(r.Context(), text, rules, req.CompetenceLevel)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	response := map[string]any{"outcome": outcome}
	if outcome.Transformed {
		key := blob.FixedKey(doc.ID, doc.Filename)
		if err := s.blobs.Put(r.Context(), key, []byte(outcome.Transform.TransformedText), "text/plain"); err != nil {
			s.log.Warn("fixed artifact save failed", "key", key, "error", err)
		} else {
			response["fixed_key"] = key
			s.appendFixArtifacts(r, doc.ID, key, outcome)
		}
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionTransform, doc.ID.String(),
		map[string]any{
			"action":      outcome.Analysis.Approved.Action,
			"transformed": outcome.Transformed,
		})
	respondJSON(w, http.StatusOK, response)
}

// appendFixArtifacts attaches the fix to the document's latest validation
// result so its report carries the artifact path and what was applied. A
// document transformed before its first validation simply has no result
// to annotate.
func (s *Server) appendFixArtifacts(r *http.Request, docID uuid.UUID, fixedKey string, outcome *decision.Outcome) {
	entries := fixArtifactEntries(fixedKey, outcome)
	if err := s.store.AppendToLatestReport(r.Context(), docID, entries); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return
		}
		s.log.Warn("fix artifact append failed", "document_id", docID, "error", err)
	}
}

// fixArtifactEntries builds the report fragment recording where the
// fixed content lives and what the flow applied to produce it.
func fixArtifactEntries(fixedKey string, outcome *decision.Outcome) map[string]any {
	return map[string]any{
		"fixed_path": fixedKey,
		"decision_flow": map[string]any{
			"action":              outcome.Analysis.Approved.Action,
			"compatibility_score": outcome.Analysis.Compatibility.TotalScore,
			"risk_classification": outcome.Analysis.Compatibility.RiskClassification,
			"deviations":          outcome.Transform.Deviations,
			"change_summary":      outcome.Transform.ChangeSummary,
		},
	}
}
