package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testQueue(t *testing.T) *Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewQueue(client, "")
}

func TestQueueRoundTrip(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	task := Task{
		JobID:             uuid.NewString(),
		Kind:              TaskValidate,
		DocumentID:        uuid.New(),
		StandardVersionID: uuid.New(),
	}
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	got, err := q.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got == nil {
		t.Fatal("expected a task")
	}
	if got.JobID != task.JobID || got.Kind != task.Kind {
		t.Errorf("task identity mismatch: %+v", got)
	}
	if got.DocumentID != task.DocumentID || got.StandardVersionID != task.StandardVersionID {
		t.Errorf("task targets mismatch: %+v", got)
	}
}

func TestQueueFIFO(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	first := Task{JobID: "first", Kind: TaskValidate}
	second := Task{JobID: "second", Kind: TaskRevalidateFolder, FolderID: uuid.New()}
	if err := q.Enqueue(ctx, first); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, second); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	got, err := q.Dequeue(ctx, time.Second)
	if err != nil || got == nil {
		t.Fatalf("Dequeue: %v, %v", got, err)
	}
	if got.JobID != "first" {
		t.Errorf("expected first, got %s", got.JobID)
	}
	got, err = q.Dequeue(ctx, time.Second)
	if err != nil || got == nil {
		t.Fatalf("Dequeue: %v, %v", got, err)
	}
	if got.JobID != "second" {
		t.Errorf("expected second, got %s", got.JobID)
	}
}

func TestQueueEmptyTimeout(t *testing.T) {
	q := testQueue(t)

	got, err := q.Dequeue(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil task on timeout, got %+v", got)
	}
}

func TestQueueDepth(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := q.Enqueue(ctx, Task{JobID: uuid.NewString(), Kind: TaskValidate}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	n, err := q.Depth(ctx)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if n != 3 {
		t.Errorf("Depth = %d, want 3", n)
	}
}
