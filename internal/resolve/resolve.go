// Package resolve walks the folder tree to find which standard version
// governs a document or folder. Direct assignments win; otherwise the
// nearest ancestor with an assignment applies.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/model"
)

// ErrNoStandard means neither the target nor any ancestor carries an
// assignment.
var ErrNoStandard = errors.New("no standard assigned")

// AssignmentSource looks up the direct assignment for a target.
// A nil assignment with a nil error means no assignment exists.
type AssignmentSource interface {
	AssignmentFor(ctx context.Context, target model.TargetRef) (*model.StandardAssignment, error)
}

// FolderSource loads folders for parent-chain traversal.
type FolderSource interface {
	Folder(ctx context.Context, id uuid.UUID) (*model.Folder, error)
}

// Resolution is a resolved assignment plus where it came from.
type Resolution struct {
	Assignment *model.StandardAssignment `json:"assignment"`
	// Source is the target the assignment is attached to. For inherited
	// assignments this is an ancestor folder, not the queried target.
	Source model.TargetRef `json:"source"`
	// Inherited is false only for direct assignments.
	Inherited bool `json:"inherited"`
}

type Resolver struct {
	assignments AssignmentSource
	folders     FolderSource
	maxDepth    int
}

func New(assignments AssignmentSource, folders FolderSource, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = 64
	}
	return &Resolver{
		assignments: assignments,
		folders:     folders,
		maxDepth:    maxDepth,
	}
}

// ForDocument resolves the governing assignment for a document: the
// document's own assignment if present, else the nearest ancestor
// folder's. Returns ErrNoStandard when the whole chain is bare.
func (r *Resolver) ForDocument(ctx context.Context, doc *model.Document) (*Resolution, error) {
	target := model.DocumentTarget(doc.ID)
	assignment, err := r.assignments.AssignmentFor(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("lookup document assignment: %w", err)
	}
	if assignment != nil {
		return &Resolution{Assignment: assignment, Source: target}, nil
	}
	if doc.FolderID == nil {
		return nil, ErrNoStandard
	}
	res, err := r.ForFolder(ctx, *doc.FolderID)
	if err != nil {
		return nil, err
	}
	res.Inherited = true
	return res, nil
}

// ForFolder resolves the governing assignment for a folder by walking up
// the parent chain. The walk is bounded and cycle-safe: a corrupted
// parent chain fails instead of spinning.
func (r *Resolver) ForFolder(ctx context.Context, folderID uuid.UUID) (*Resolution, error) {
	visited := make(map[uuid.UUID]struct{}, 8)
	current := folderID

	for depth := 0; depth < r.maxDepth; depth++ {
		if _, seen := visited[current]; seen {
			return nil, fmt.Errorf("folder parent cycle at %s", current)
		}
		visited[current] = struct{}{}

		target := model.FolderTarget(current)
		assignment, err := r.assignments.AssignmentFor(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("lookup folder assignment: %w", err)
		}
		if assignment != nil {
			return &Resolution{
				Assignment: assignment,
				Source:     target,
				Inherited:  depth > 0,
			}, nil
		}

		folder, err := r.folders.Folder(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("load folder %s: %w", current, err)
		}
		if folder.ParentID == nil {
			return nil, ErrNoStandard
		}
		current = *folder.ParentID
	}
	return nil, fmt.Errorf("folder chain deeper than %d levels", r.maxDepth)
}
