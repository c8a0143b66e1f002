package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/blob"
	"github.com/dgallion1/standgate/internal/model"
	"github.com/dgallion1/standgate/internal/resolve"
	"github.com/dgallion1/standgate/internal/store"
	"github.com/dgallion1/standgate/internal/validate"
)

// Worker executes a single dequeued task.
type Worker struct {
	store     *store.Store
	blobs     *blob.Store
	resolver  *resolve.Resolver
	evaluator *validate.Evaluator
	queue     *Queue
	log       *slog.Logger
}

func NewWorker(st *store.Store, blobs *blob.Store, resolver *resolve.Resolver, evaluator *validate.Evaluator, queue *Queue, log *slog.Logger) *Worker {
	return &Worker{
		store:     st,
		blobs:     blobs,
		resolver:  resolver,
		evaluator: evaluator,
		queue:     queue,
		log:       log,
	}
}

// Process runs one task and records the outcome on the job.
func (w *Worker) Process(ctx context.Context, task *Task, job *Job) {
	log := w.log.With("job_id", task.JobID, "kind", task.Kind)
	if job != nil {
		job.SetStatus(StatusRunning)
	}

	var err error
	switch task.Kind {
	case TaskValidate:
		err = w.validateDocument(ctx, task.DocumentID, task.StandardVersionID)
	case TaskRevalidateFolder:
		err = w.revalidateFolder(ctx, task, job)
	default:
		err = fmt.Errorf("unknown task kind %q", task.Kind)
	}

	if err != nil {
		log.Error("task failed", "error", err)
		if job != nil {
			job.AddError(err.Error())
			job.SetStatus(StatusFailed)
		}
		return
	}
	log.Info("task completed")
	if job != nil {
		job.SetStatus(StatusCompleted)
	}
}

// validateDocument loads the document bytes, resolves the governing
// standard when none was pinned, runs validation and persists the
// result.
func (w *Worker) validateDocument(ctx context.Context, docID, versionID uuid.UUID) error {
	doc, err := w.store.Document(ctx, docID)
	if err != nil {
		return err
	}

	if versionID == uuid.Nil {
		res, err := w.resolver.ForDocument(ctx, doc)
		if err != nil {
			return fmt.Errorf("resolve standard for %s: %w", docID, err)
		}
		versionID = res.Assignment.StandardVersionID
	}
	version, err := w.store.Version(ctx, versionID)
	if err != nil {
		return err
	}

	data, err := w.blobs.Get(ctx, doc.StorageKey)
	if err != nil {
		return fmt.Errorf("fetch document bytes: %w", err)
	}

	report := w.evaluator.Evaluate(ctx, data, doc.Filename, &version.Rules)
	result := &model.ValidationResult{
		ID:                uuid.New(),
		DocumentID:        doc.ID,
		StandardVersionID: version.ID,
		Status:            validate.StatusFor(report),
		Report:            reportMap(report),
	}
	if err := w.store.SaveValidationResult(ctx, result); err != nil {
		return err
	}
	w.log.Info("document validated",
		"doc_id", doc.ID,
		"standard_version_id", version.ID,
		"status", result.Status)
	return nil
}

// revalidateFolder fans out one validate task per document in the folder
// subtree, all pinned to the same standard version.
func (w *Worker) revalidateFolder(ctx context.Context, task *Task, job *Job) error {
	folderIDs, err := w.store.ListDescendantFolders(ctx, task.FolderID)
	if err != nil {
		return err
	}
	docs, err := w.store.ListDocumentsInFolders(ctx, folderIDs)
	if err != nil {
		return err
	}
	if job != nil {
		job.SetTotal(len(docs))
	}

	for _, doc := range docs {
		err := w.queue.Enqueue(ctx, Task{
			JobID:             task.JobID,
			Kind:              TaskValidate,
			DocumentID:        doc.ID,
			StandardVersionID: task.StandardVersionID,
		})
		if err != nil {
			return fmt.Errorf("fan out %s: %w", doc.ID, err)
		}
		if job != nil {
			job.IncrDone()
		}
	}
	w.log.Info("folder revalidation dispatched",
		"folder_id", task.FolderID,
		"documents", len(docs))
	return nil
}

func reportMap(report *validate.Report) map[string]any {
	return map[string]any{
		"compliant": report.Compliant,
		"errors":    report.Errors,
		"warnings":  report.Warnings,
		"details":   report.Details,
	}
}
