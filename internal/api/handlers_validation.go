package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/audit"
	"github.com/dgallion1/standgate/internal/pipeline"
)

// handleValidateDocument queues a validation run. The standard version
// can be pinned with ?standard_version_id=; otherwise the worker
// resolves the governing standard from the folder tree.
func (s *Server) handleValidateDocument(w http.ResponseWriter, r *http.Request) {
	docID, ok := uuidParam(w, r, "docID")
	if !ok {
		return
	}
	if _, err := s.store.Document(r.Context(), docID); err != nil {
		storeError(w, err)
		return
	}

	versionID := uuid.Nil
	if v := r.URL.Query().Get("standard_version_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			jsonError(w, "invalid standard_version_id", http.StatusBadRequest)
			return
		}
		if _, err := s.store.Version(r.Context(), id); err != nil {
			storeError(w, err)
			return
		}
		versionID = id
	}

	job, err := s.orchestrator.Submit(r.Context(), pipeline.Task{
		Kind:              pipeline.TaskValidate,
		DocumentID:        docID,
		StandardVersionID: versionID,
	})
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionValidate, docID.String(),
		map[string]any{"job_id": job.ID})
	respondJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleLatestValidation(w http.ResponseWriter, r *http.Request) {
	docID, ok := uuidParam(w, r, "docID")
	if !ok {
		return
	}
	result, err := s.store.LatestResult(r.Context(), docID)
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleValidationHistory(w http.ResponseWriter, r *http.Request) {
	docID, ok := uuidParam(w, r, "docID")
	if !ok {
		return
	}
	results, err := s.store.ListResults(r.Context(), docID)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, job.Snapshot())
}
