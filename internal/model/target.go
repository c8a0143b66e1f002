package model

import (
	"fmt"

	"github.com/google/uuid"
)

// TargetKind discriminates what a TargetRef points at.
type TargetKind string

const (
	TargetFolder   TargetKind = "FOLDER"
	TargetDocument TargetKind = "DOCUMENT"
)

// TargetRef identifies a folder or a document. Carrying the kind and the id
// together keeps assignment, resolution and audit from ever pairing an id
// with the wrong kind.
type TargetRef struct {
	Kind TargetKind `json:"target_type"`
	ID   uuid.UUID  `json:"target_id"`
}

// FolderTarget builds a folder reference.
func FolderTarget(id uuid.UUID) TargetRef {
	return TargetRef{Kind: TargetFolder, ID: id}
}

// DocumentTarget builds a document reference.
func DocumentTarget(id uuid.UUID) TargetRef {
	return TargetRef{Kind: TargetDocument, ID: id}
}

// ParseTargetKind validates a wire-level target type string.
func ParseTargetKind(s string) (TargetKind, error) {
	switch TargetKind(s) {
	case TargetFolder:
		return TargetFolder, nil
	case TargetDocument:
		return TargetDocument, nil
	}
	return "", fmt.Errorf("unknown target type %q", s)
}

func (t TargetRef) String() string {
	return string(t.Kind) + ":" + t.ID.String()
}
