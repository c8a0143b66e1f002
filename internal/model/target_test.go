package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseTargetKind(t *testing.T) {
	if k, err := ParseTargetKind("FOLDER"); err != nil || k != TargetFolder {
		t.Errorf("expected FOLDER, got %v (err=%v)", k, err)
	}
	if k, err := ParseTargetKind("DOCUMENT"); err != nil || k != TargetDocument {
		t.Errorf("expected DOCUMENT, got %v (err=%v)", k, err)
	}
}

func TestParseTargetKindRejectsUnknown(t *testing.T) {
	for _, bad := range []string{"", "folder", "File", "FOLDERS"} {
		if _, err := ParseTargetKind(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestTargetRefString(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	got := FolderTarget(id).String()
	if !strings.HasPrefix(got, "FOLDER:") || !strings.Contains(got, id.String()) {
		t.Errorf("unexpected string form %q", got)
	}
}

func TestTargetRefJSONFields(t *testing.T) {
	id := uuid.New()
	b, err := json.Marshal(DocumentTarget(id))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["target_type"] != "DOCUMENT" {
		t.Errorf("expected target_type=DOCUMENT, got %q", m["target_type"])
	}
	if m["target_id"] != id.String() {
		t.Errorf("expected target_id=%s, got %q", id, m["target_id"])
	}
}
