package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/audit"
	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/pipeline"
	"github.com/dgallion1/standgate/internal/resolve"
)

type assignmentRequest struct {
	TargetType        string    `json:"target_type"`
	TargetID          uuid.UUID `json:"target_id"`
	StandardVersionID uuid.UUID `json:"standard_version_id"`
}

func (req assignmentRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.TargetType, validation.Required,
			validation.In(string(model.TargetFolder), string(model.TargetDocument))),
		validation.Field(&req.TargetID, validation.Required, validation.By(requireUUID)),
		validation.Field(&req.StandardVersionID, validation.Required, validation.By(requireUUID)),
	)
}

func requireUUID(value any) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("must be a non-zero uuid")
	}
	return nil
}

// handleAssignStandard binds a standard version to a folder or document
// and queues revalidation of everything the binding governs.
func (s *Server) handleAssignStandard(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	kind, err := model.ParseTargetKind(req.TargetType)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.store.Version(r.Context(), req.StandardVersionID); err != nil {
		storeError(w, err)
		return
	}
	target := model.TargetRef{Kind: kind, ID: req.TargetID}
	switch kind {
	case model.TargetFolder:
		if _, err := s.store.Folder(r.Context(), req.TargetID); err != nil {
			storeError(w, err)
			return
		}
	case model.TargetDocument:
		if _, err := s.store.Document(r.Context(), req.TargetID); err != nil {
			storeError(w, err)
			return
		}
	}

	assignment := &model.StandardAssignment{
		Target:            target,
		StandardVersionID: req.StandardVersionID,
	}
	if err := s.store.UpsertAssignment(r.Context(), assignment); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionAssignStandard, target.String(),
		map[string]any{"standard_version_id": req.StandardVersionID})

	// A new binding invalidates prior results for everything under it.
	task := pipeline.Task{
		Kind:              pipeline.TaskRevalidateFolder,
		FolderID:          req.TargetID,
		StandardVersionID: req.StandardVersionID,
	}
	if kind == model.TargetDocument {
		task = pipeline.Task{
			Kind:              pipeline.TaskValidate,
			DocumentID:        req.TargetID,
			StandardVersionID: req.StandardVersionID,
		}
	}
	job, err := s.orchestrator.Submit(r.Context(), task)
	if err != nil {
		s.log.Warn("revalidation dispatch failed", "target", target, "error", err)
		respondJSON(w, http.StatusOK, map[string]any{"assignment": assignment})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"assignment":          assignment,
		"revalidation_job_id": job.ID,
	})
}

func (s *Server) handleUnassignStandard(w http.ResponseWriter, r *http.Request) {
	targetType := r.URL.Query().Get("target_type")
	targetID := r.URL.Query().Get("target_id")
	kind, err := model.ParseTargetKind(targetType)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(targetID)
	if err != nil {
		jsonError(w, "invalid target_id", http.StatusBadRequest)
		return
	}

	target := model.TargetRef{Kind: kind, ID: id}
	if err := s.store.DeleteAssignment(r.Context(), target); err != nil {
		storeError(w, err)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionUnassignStandard, target.String(), nil)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := s.store.ListAssignments(r.Context())
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if assignments == nil {
		assignments = []model.StandardAssignment{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"assignments": assignments})
}

// handleResolve reports which standard governs a target and where the
// binding came from.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	kind, err := model.ParseTargetKind(chi.URLParam(r, "targetType"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, ok := uuidParam(w, r, "targetID")
	if !ok {
		return
	}

	var res *resolve.Resolution
	switch kind {
	case model.TargetDocument:
		doc, err := s.store.Document(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		res, err = s.resolver.ForDocument(r.Context(), doc)
		if err != nil {
			resolveError(w, err)
			return
		}
	case model.TargetFolder:
		res, err = s.resolver.ForFolder(r.Context(), id)
		if err != nil {
			resolveError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, res)
}

func resolveError(w http.ResponseWriter, err error) {
	if errors.Is(err, resolve.ErrNoStandard) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}
