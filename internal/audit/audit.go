// Package audit records who did what to which target. Recording is
// fire-and-forget: an audit failure is logged, never surfaced to the
// caller.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/store"
)

// Actions recorded in the audit log.
const (
	ActionUploadDocument   = "upload_document"
	ActionDeleteDocument   = "delete_document"
	ActionCreateFolder     = "create_folder"
	ActionDeleteFolder     = "delete_folder"
	ActionCreateStandard   = "create_standard"
	ActionDeleteStandard   = "delete_standard"
	ActionCreateVersion    = "create_standard_version"
	ActionExtractStandard  = "extract_standard"
	ActionAssignStandard   = "assign_standard"
	ActionUnassignStandard = "unassign_standard"
	ActionValidate         = "validate_document"
	ActionAnalyze          = "analyze_document"
	ActionTransform        = "transform_document"
)

type Recorder struct {
	store *store.Store
	log   *slog.Logger
}

func NewRecorder(st *store.Store, log *slog.Logger) *Recorder {
	return &Recorder{store: st, log: log}
}

// Record writes one audit entry. The write gets its own short deadline
// so a slow database cannot stall the caller's request.
func (r *Recorder) Record(ctx context.Context, actorID, action, targetID string, details map[string]any) {
	entry := &model.AuditEntry{
		ID:       uuid.New(),
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Details:  details,
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.store.InsertAudit(ctx, entry); err != nil {
		r.log.Warn("audit write failed",
			"action", action,
			"target_id", targetID,
			"error", err)
	}
}
