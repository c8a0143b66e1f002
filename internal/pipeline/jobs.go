package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of a queued task.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the state of one submitted task for status polling.
type Job struct {
	mu sync.Mutex

	ID   string   `json:"job_id"`
	Kind TaskKind `json:"kind"`

	Status JobStatus `json:"status"`

	// Revalidation fan-out counters.
	DocumentsTotal int `json:"documents_total,omitempty"`
	DocumentsDone  int `json:"documents_done,omitempty"`

	Errors []string `json:"errors,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

func (j *Job) AddError(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Errors = append(j.Errors, msg)
	j.UpdatedAt = time.Now()
}

func (j *Job) SetTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DocumentsTotal = n
	j.UpdatedAt = time.Now()
}

func (j *Job) IncrDone() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DocumentsDone++
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a race-free copy of a job's state for serialization.
type JobSnapshot struct {
	ID             string    `json:"job_id"`
	Kind           TaskKind  `json:"kind"`
	Status         JobStatus `json:"status"`
	DocumentsTotal int       `json:"documents_total,omitempty"`
	DocumentsDone  int       `json:"documents_done,omitempty"`
	Errors         []string  `json:"errors"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:             j.ID,
		Kind:           j.Kind,
		Status:         j.Status,
		DocumentsTotal: j.DocumentsTotal,
		DocumentsDone:  j.DocumentsDone,
		Errors:         errs,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// ContentHashHex returns the hex sha256 of data, used to pair stored
// bytes with their database row and to memoize validation.
func ContentHashHex(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
