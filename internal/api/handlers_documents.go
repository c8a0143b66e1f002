package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/audit"
	"github.com/dgallion1/standgate/internal/blob"
	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/pipeline"
	"github.com/dgallion1/standgate/internal/resolve"
)

// handleUploadDocument stores the document bytes and row, then queues a
// validation when a standard governs the target folder.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

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

	var folderID *uuid.UUID
	if v := r.FormValue("folder_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			jsonError(w, "invalid folder_id", http.StatusBadRequest)
			return
		}
		if _, err := s.store.Folder(r.Context(), id); err != nil {
			storeError(w, err)
			return
		}
		folderID = &id
	}

	doc := &model.Document{
		ID:          uuid.New(),
		Filename:    filename,
		FolderID:    folderID,
		ContentHash: pipeline.ContentHashHex(data),
	}
	doc.StorageKey = blob.DocumentKey(doc.ID, filename)

	if err := s.blobs.Put(r.Context(), doc.StorageKey, data, contentTypeFor(filename)); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.store.CreateDocument(r.Context(), doc); err != nil {
		// Keep storage consistent with the failed row.
		if delErr := s.blobs.Delete(r.Context(), doc.StorageKey); delErr != nil {
			s.log.Warn("orphan blob cleanup failed", "key", doc.StorageKey, "error", delErr)
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionUploadDocument, doc.ID.String(),
		map[string]any{"filename": filename, "content_hash": doc.ContentHash})

	// Validate right away when a standard already governs this location.
	response := map[string]any{"document": doc}
	if _, err := s.resolver.ForDocument(r.Context(), doc); err == nil {
		job, err := s.orchestrator.Submit(r.Context(), pipeline.Task{
			Kind:       pipeline.TaskValidate,
			DocumentID: doc.ID,
		})
		if err != nil {
			s.log.Warn("auto-validate dispatch failed", "doc_id", doc.ID, "error", err)
		} else {
			response["validation_job_id"] = job.ID
		}
	} else if !errors.Is(err, resolve.ErrNoStandard) {
		s.log.Warn("standard resolution failed on upload", "doc_id", doc.ID, "error", err)
	}

	respondJSON(w, http.StatusCreated, response)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	var folderID *uuid.UUID
	if v := r.URL.Query().Get("folder_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			jsonError(w, "invalid folder_id", http.StatusBadRequest)
			return
		}
		folderID = &id
	}

	docs, err := s.store.ListDocuments(r.Context(), folderID)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "docID")
	if !ok {
		return
	}
	doc, err := s.store.Document(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// handleDocumentContent streams the stored bytes back.
func (s *Server) handleDocumentContent(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "docID")
	if !ok {
		return
	}
	doc, err := s.store.Document(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	data, err := s.blobs.Get(r.Context(), doc.StorageKey)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeFor(doc.Filename))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Write(data)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "docID")
	if !ok {
		return
	}
	doc, err := s.store.Document(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}

	if err := s.blobs.Delete(r.Context(), doc.StorageKey); err != nil {
		s.log.Warn("blob delete failed", "key", doc.StorageKey, "error", err)
	}
	if err := s.store.DeleteDocument(r.Context(), id); err != nil {
		storeError(w, err)
		return
	}

	s.audit.Record(r.Context(), actor(r), audit.ActionDeleteDocument, id.String(),
		map[string]any{"filename": doc.Filename})
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
