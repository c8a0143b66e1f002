// Package model holds the domain entities shared across the service.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Folder is a node in the containment tree. A folder with a nil parent is
// a root.
type Folder struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Document is a stored file. Content is immutable after upload; fixing a
// document produces a new artifact under a separate blob key.
type Document struct {
	ID          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	FolderID    *uuid.UUID `json:"folder_id,omitempty"`
	ContentHash string     `json:"content_hash"`
	StorageKey  string     `json:"storage_key"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Standard is a named family of rule sets.
type Standard struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// StandardVersion is one immutable revision of a standard's rules.
type StandardVersion struct {
	ID            uuid.UUID `json:"id"`
	StandardID    uuid.UUID `json:"standard_id"`
	VersionNumber int       `json:"version_number"`
	Rules         RuleSet   `json:"rules_json"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// StandardAssignment binds one target to one standard version. At most one
// assignment exists per target; re-assignment replaces it.
type StandardAssignment struct {
	Target            TargetRef `json:"target"`
	StandardVersionID uuid.UUID `json:"standard_version_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// ValidationStatus is the summary outcome of one validation run.
type ValidationStatus string

const (
	StatusPass ValidationStatus = "PASS"
	StatusFail ValidationStatus = "FAIL"
	StatusWarn ValidationStatus = "WARN"
)

// ValidationResult is an immutable snapshot of one validation of a document
// against a standard version. The most recent result for a document is its
// current one.
type ValidationResult struct {
	ID                uuid.UUID        `json:"id"`
	DocumentID        uuid.UUID        `json:"document_id"`
	StandardVersionID uuid.UUID        `json:"standard_version_id"`
	Status            ValidationStatus `json:"status"`
	Report            map[string]any   `json:"report"`
	CreatedAt         time.Time        `json:"created_at"`
}

// AuditEntry is one fire-and-forget audit record.
type AuditEntry struct {
	ID        uuid.UUID      `json:"id"`
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	TargetID  string         `json:"target_id"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
