package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by Submit when the backlog has reached the
// configured bound.
var ErrQueueFull = errors.New("task queue is full")

// Orchestrator owns the worker pool and the job registry.
type Orchestrator struct {
	jobs     *JobStore
	queue    *Queue
	worker   *Worker
	log      *slog.Logger
	workers  int
	maxQueue int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(queue *Queue, worker *Worker, workers, maxQueue int, jobTTL time.Duration, log *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = 2
	}
	if maxQueue <= 0 {
		maxQueue = 100
	}
	return &Orchestrator{
		jobs:     NewJobStore(jobTTL),
		queue:    queue,
		worker:   worker,
		log:      log,
		workers:  workers,
		maxQueue: int64(maxQueue),
	}
}

// Start launches worker goroutines consuming the queue.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := range o.workers {
		o.wg.Add(1)
		go func(id int) {
			defer o.wg.Done()
			log := o.log.With("worker", id)
			for {
				select {
				case <-workerCtx.Done():
					return
				default:
				}
				task, err := o.queue.Dequeue(workerCtx, 2*time.Second)
				if err != nil {
					if workerCtx.Err() != nil {
						return
					}
					log.Error("dequeue failed", "error", err)
					time.Sleep(time.Second)
					continue
				}
				if task == nil {
					continue
				}
				o.worker.Process(workerCtx, task, o.jobs.Get(task.JobID))
			}
		}(i)
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop drains the worker pool.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit registers a job and queues its task. It refuses with
// ErrQueueFull when the backlog is at its bound; fan-out enqueues from
// workers bypass Submit and are not bounded.
func (o *Orchestrator) Submit(ctx context.Context, task Task) (*Job, error) {
	depth, err := o.queue.Depth(ctx)
	if err != nil {
		return nil, err
	}
	if depth >= o.maxQueue {
		return nil, ErrQueueFull
	}
	if task.JobID == "" {
		task.JobID = uuid.NewString()
	}
	job := &Job{
		ID:        task.JobID,
		Kind:      task.Kind,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	o.jobs.Put(job)

	if err := o.queue.Enqueue(ctx, task); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed)
		return job, err
	}
	return job, nil
}

// GetJob returns a job by ID, or nil when unknown or expired.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns the number of queued tasks.
func (o *Orchestrator) QueueDepth(ctx context.Context) int64 {
	n, err := o.queue.Depth(ctx)
	if err != nil {
		return -1
	}
	return n
}
