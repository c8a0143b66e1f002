package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSubmitRefusesWhenQueueFull(t *testing.T) {
	q := testQueue(t)
	log := slog.New(slog.DiscardHandler)
	orch := NewOrchestrator(q, nil, 1, 2, time.Hour, log)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := orch.Submit(ctx, Task{Kind: TaskValidate, DocumentID: uuid.New()}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	_, err := orch.Submit(ctx, Task{Kind: TaskValidate, DocumentID: uuid.New()})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull at the bound, got %v", err)
	}
	if n, _ := q.Depth(ctx); n != 2 {
		t.Errorf("refused submit changed the queue, depth = %d", n)
	}
}

func TestSubmitRegistersJob(t *testing.T) {
	q := testQueue(t)
	log := slog.New(slog.DiscardHandler)
	orch := NewOrchestrator(q, nil, 1, 10, time.Hour, log)

	job, err := orch.Submit(context.Background(), Task{Kind: TaskValidate, DocumentID: uuid.New()})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected a generated job id")
	}
	got := orch.GetJob(job.ID)
	if got == nil || got.Status != StatusQueued {
		t.Errorf("job not registered as queued: %+v", got)
	}
}
