// Package pipeline runs validation work off the request path: tasks go
// through a Redis list, a worker pool consumes them, and an in-memory
// registry tracks task state for status polling.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TaskKind discriminates queued work.
type TaskKind string

const (
	TaskValidate         TaskKind = "validate_document"
	TaskRevalidateFolder TaskKind = "revalidate_folder"
)

// Task is one unit of queued work. A zero StandardVersionID means the
// worker resolves the governing standard at execution time.
type Task struct {
	JobID             string    `json:"job_id"`
	Kind              TaskKind  `json:"kind"`
	DocumentID        uuid.UUID `json:"document_id,omitempty"`
	FolderID          uuid.UUID `json:"folder_id,omitempty"`
	StandardVersionID uuid.UUID `json:"standard_version_id,omitempty"`
}

// Queue is a Redis-list task queue. Delivery is at-least-once: a worker
// crash between pop and completion drops in-flight progress but the
// validation it redoes is idempotent.
type Queue struct {
	client *redis.Client
	key    string
}

const defaultQueueKey = "standgate:tasks"

func NewQueue(client *redis.Client, key string) *Queue {
	if key == "" {
		key = defaultQueueKey
	}
	return &Queue{client: client, key: key}
}

// ConnectRedis opens and verifies a Redis client from a URL.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (q *Queue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next task. Returns (nil, nil)
// when the wait times out with nothing queued.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue task: %w", err)
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected brpop reply length %d", len(res))
	}
	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

// Depth returns the number of queued tasks.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return n, nil
}
