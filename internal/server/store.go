package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pre-msc-2027/remedy/internal/worker"
)

// JobStatus is the lifecycle state of a submitted job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job is one submitted analysis job.
type Job struct {
	ID        string          `json:"job_id"`
	Status    JobStatus       `json:"status"`
	Params    worker.Params   `json:"params"`
	Summary   *worker.Summary `json:"summary,omitempty"`
	Error     string          `json:"error,omitempty"`
	Logs      []string        `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	cancel func()
}

// Store holds jobs in memory behind a mutex. All accessors return copies;
// callers never share Job pointers with the store.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

// Create registers a new pending job and returns its snapshot.
func (s *Store) Create(params worker.Params) Job {
	now := time.Now()
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return snapshot(job)
}

// Get returns a snapshot of the job, or false if it does not exist.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return snapshot(job), true
}

// List returns snapshots of all jobs, newest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, snapshot(job))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Delete removes a job, cancelling it first if it is still running.
// Returns false if it does not exist.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	if job.cancel != nil {
		job.cancel()
	}
	return true
}

// SetCancel attaches the running job's cancel function.
func (s *Store) SetCancel(id string, cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.cancel = cancel
	}
}

// SetStatus transitions a job's lifecycle state.
func (s *Store) SetStatus(id string, status JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
		job.UpdatedAt = time.Now()
	}
}

// Complete marks a job completed with its result.
func (s *Store) Complete(id string, summary *worker.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = StatusCompleted
		job.Summary = summary
		job.UpdatedAt = time.Now()
	}
}

// Fail marks a job failed with the error message.
func (s *Store) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = StatusFailed
		job.Error = err.Error()
		job.UpdatedAt = time.Now()
	}
}

// AppendLog records a timestamped log line on the job.
func (s *Store) AppendLog(id, format string, args ...any) {
	line := fmt.Sprintf("%s %s", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Logs = append(job.Logs, line)
	}
}

// Logs returns a copy of the job's log lines, or false if it does not exist.
func (s *Store) Logs(id string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	out := make([]string, len(job.Logs))
	copy(out, job.Logs)
	return out, true
}

func snapshot(job *Job) Job {
	c := *job
	c.Logs = nil
	c.cancel = nil
	return c
}
