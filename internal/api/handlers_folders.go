package api

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/audit"
	"github.com/dgallion1/standgate/internal/model"
)

type createFolderRequest struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
}

func (req createFolderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
	)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.ParentID != nil {
		if _, err := s.store.Folder(r.Context(), *req.ParentID); err != nil {
			storeError(w, err)
			return
		}
	}

	folder := &model.Folder{
		ID:       uuid.New(),
		Name:     req.Name,
		ParentID: req.ParentID,
	}
	if err := s.store.CreateFolder(r.Context(), folder); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionCreateFolder, folder.ID.String(),
		map[string]any{"name": folder.Name})
	respondJSON(w, http.StatusCreated, folder)
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	var parentID *uuid.UUID
	if v := r.URL.Query().Get("parent_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			jsonError(w, "invalid parent_id", http.StatusBadRequest)
			return
		}
		parentID = &id
	}

	folders, err := s.store.ListFolders(r.Context(), parentID)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if folders == nil {
		folders = []model.Folder{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

func (s *Server) handleGetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "folderID")
	if !ok {
		return
	}
	folder, err := s.store.Folder(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, folder)
}

// handleDeleteFolder removes a folder and everything below it. Documents
// in the subtree lose their rows via cascade; their blobs are removed
// best-effort first.
func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "folderID")
	if !ok {
		return
	}

	folderIDs, err := s.store.ListDescendantFolders(r.Context(), id)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	docs, err := s.store.ListDocumentsInFolders(r.Context(), folderIDs)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, doc := range docs {
		if err := s.blobs.Delete(r.Context(), doc.StorageKey); err != nil {
			s.log.Warn("blob delete failed", "key", doc.StorageKey, "error", err)
		}
	}

	if err := s.store.DeleteFolder(r.Context(), id); err != nil {
		storeError(w, err)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionDeleteFolder, id.String(),
		map[string]any{"documents_removed": len(docs)})
	respondJSON(w, http.StatusOK, map[string]any{
		"deleted":           true,
		"documents_removed": len(docs),
	})
}
