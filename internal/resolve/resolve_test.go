package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/model"
)

type fakeSources struct {
	assignments map[model.TargetRef]*model.StandardAssignment
	folders     map[uuid.UUID]*model.Folder
}

func newFakeSources() *fakeSources {
	return &fakeSources{
		assignments: make(map[model.TargetRef]*model.StandardAssignment),
		folders:     make(map[uuid.UUID]*model.Folder),
	}
}

func (f *fakeSources) AssignmentFor(ctx context.Context, target model.TargetRef) (*model.StandardAssignment, error) {
	return f.assignments[target], nil
}

func (f *fakeSources) Folder(ctx context.Context, id uuid.UUID) (*model.Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, errors.New("folder missing")
	}
	return folder, nil
}

func (f *fakeSources) addFolder(parent *uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.folders[id] = &model.Folder{ID: id, Name: id.String()[:8], ParentID: parent}
	return id
}

func (f *fakeSources) assign(target model.TargetRef) uuid.UUID {
	versionID := uuid.New()
	f.assignments[target] = &model.StandardAssignment{
		Target:            target,
		StandardVersionID: versionID,
	}
	return versionID
}

func TestForDocumentDirectAssignmentWins(t *testing.T) {
	src := newFakeSources()
	folderID := src.addFolder(nil)
	src.assign(model.FolderTarget(folderID))

	doc := &model.Document{ID: uuid.New(), FolderID: &folderID}
	wantVersion := src.assign(model.DocumentTarget(doc.ID))

	res, err := New(src, src, 0).ForDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Assignment.StandardVersionID != wantVersion {
		t.Error("folder assignment shadowed the document's own")
	}
	if res.Inherited {
		t.Error("direct assignment reported as inherited")
	}
}

func TestForDocumentNearestAncestorWins(t *testing.T) {
	src := newFakeSources()
	root := src.addFolder(nil)
	mid := src.addFolder(&root)
	leaf := src.addFolder(&mid)

	src.assign(model.FolderTarget(root))
	wantVersion := src.assign(model.FolderTarget(mid))

	doc := &model.Document{ID: uuid.New(), FolderID: &leaf}
	res, err := New(src, src, 0).ForDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Assignment.StandardVersionID != wantVersion {
		t.Error("expected the nearest ancestor's assignment")
	}
	if !res.Inherited {
		t.Error("inherited assignment not flagged")
	}
	if res.Source != model.FolderTarget(mid) {
		t.Errorf("source = %v, want mid folder", res.Source)
	}
}

func TestForFolderSelfAssignmentNotInherited(t *testing.T) {
	src := newFakeSources()
	folderID := src.addFolder(nil)
	src.assign(model.FolderTarget(folderID))

	res, err := New(src, src, 0).ForFolder(context.Background(), folderID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Inherited {
		t.Error("self assignment reported as inherited")
	}
}

func TestForDocumentNoStandard(t *testing.T) {
	src := newFakeSources()
	root := src.addFolder(nil)
	leaf := src.addFolder(&root)

	doc := &model.Document{ID: uuid.New(), FolderID: &leaf}
	_, err := New(src, src, 0).ForDocument(context.Background(), doc)
	if !errors.Is(err, ErrNoStandard) {
		t.Errorf("expected ErrNoStandard, got %v", err)
	}
}

func TestForDocumentUnfiledNoStandard(t *testing.T) {
	src := newFakeSources()
	doc := &model.Document{ID: uuid.New()}
	_, err := New(src, src, 0).ForDocument(context.Background(), doc)
	if !errors.Is(err, ErrNoStandard) {
		t.Errorf("expected ErrNoStandard, got %v", err)
	}
}

func TestForFolderDetectsCycle(t *testing.T) {
	src := newFakeSources()
	a := src.addFolder(nil)
	b := src.addFolder(&a)
	src.folders[a].ParentID = &b

	_, err := New(src, src, 0).ForFolder(context.Background(), a)
	if err == nil || errors.Is(err, ErrNoStandard) {
		t.Errorf("expected cycle error, got %v", err)
	}
}

func TestForFolderDepthBound(t *testing.T) {
	src := newFakeSources()
	parent := src.addFolder(nil)
	leaf := parent
	for range 10 {
		leaf = src.addFolder(&parent)
		parent = leaf
	}

	_, err := New(src, src, 3).ForFolder(context.Background(), leaf)
	if err == nil || errors.Is(err, ErrNoStandard) {
		t.Errorf("expected depth error, got %v", err)
	}
}
