package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/audit"
	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/oracle"
	"github.com/dgallion1/standgate/internal/parser"
)

type createStandardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req createStandardRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Description, validation.Length(0, 4000)),
	)
}

func (s *Server) handleCreateStandard(w http.ResponseWriter, r *http.Request) {
	var req createStandardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	std := &model.Standard{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.store.CreateStandard(r.Context(), std); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionCreateStandard, std.ID.String(),
		map[string]any{"name": std.Name})
	respondJSON(w, http.StatusCreated, std)
}

func (s *Server) handleListStandards(w http.ResponseWriter, r *http.Request) {
	standards, err := s.store.ListStandards(r.Context())
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if standards == nil {
		standards = []model.Standard{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"standards": standards})
}

func (s *Server) handleGetStandard(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "standardID")
	if !ok {
		return
	}
	std, err := s.store.Standard(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, std)
}

func (s *Server) handleDeleteStandard(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "standardID")
	if !ok {
		return
	}
	if err := s.store.DeleteStandard(r.Context(), id); err != nil {
		storeError(w, err)
		return
	}
	s.audit.Record(r.Context(), actor(r), audit.ActionDeleteStandard, id.String(), nil)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

type createVersionRequest struct {
	Rules model.RuleSet `json:"rules_json"`
}

func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	standardID, ok := uuidParam(w, r, "standardID")
	if !ok {
		return
	}
	var req createVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	version := &model.StandardVersion{
		ID:         uuid.New(),
		StandardID: standardID,
		Rules:      req.Rules,
	}
	if err := s.store.CreateVersion(r.Context(), version); err != nil {
		storeError(w, err)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionCreateVersion, version.ID.String(),
		map[string]any{"standard_id": standardID, "version_number": version.VersionNumber})
	respondJSON(w, http.StatusCreated, version)
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	standardID, ok := uuidParam(w, r, "standardID")
	if !ok {
		return
	}
	versions, err := s.store.ListVersions(r.Context(), standardID)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if versions == nil {
		versions = []model.StandardVersion{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

// handleExtractStandard reverse-engineers a rule set from an exemplar
// document and stores it as a new standard with one version.
func (s *Server) handleExtractStandard(w http.ResponseWriter, r *http.Request) {
	if !s.oracleClient.Available() {
		jsonError(w, oracle.ErrNotConfigured.Error(), http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	name := r.FormValue("name")
	if name == "" {
		jsonError(w, "name is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	text, err := parser.ExtractText(data, filename)
	if err != nil {
		jsonError(w, "cannot extract text: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	rules, err := s.oracleClient.ExtractStandard(r.Context(), text, filename)
	if err != nil {
		jsonError(w, "standard extraction failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	std := &model.Standard{
		ID:          uuid.New(),
		Name:        name,
		Description: r.FormValue("description"),
	}
	if err := s.store.CreateStandard(r.Context(), std); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	version := &model.StandardVersion{
		ID:         uuid.New(),
		StandardID: std.ID,
		Rules:      *rules,
	}
	if err := s.store.CreateVersion(r.Context(), version); err != nil {
		storeError(w, err)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionExtractStandard, std.ID.String(),
		map[string]any{"source_filename": filename, "version_id": version.ID})
	respondJSON(w, http.StatusCreated, map[string]any{
		"standard": std,
		"version":  version,
	})
}
