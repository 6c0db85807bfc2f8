// Package publish renders tutorials to their public artifacts: a markdown
// export on disk and a PDF built from it by an external command.
package publish

import (
	"sync"
	"time"
)

// JobStatus represents the state of a publication job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusExporting JobStatus = "exporting"
	StatusRendering JobStatus = "rendering"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks one tutorial publication.
type Job struct {
	mu sync.Mutex

	ID         string `json:"job_id"`
	TutorialID int64  `json:"tutorial_id"`
	Slug       string `json:"slug"`
	Actor      string `json:"actor"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	MarkdownPath string `json:"markdown_path,omitempty"`
	PDFPath      string `json:"pdf_path,omitempty"`
	Error        string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed with an error message.
func (j *Job) Fail(phase, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.Phase = phase
	j.Error = msg
	j.UpdatedAt = time.Now()
}

// SetArtifacts records the produced file paths.
func (j *Job) SetArtifacts(markdownPath, pdfPath string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.MarkdownPath = markdownPath
	j.PDFPath = pdfPath
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string    `json:"job_id"`
	TutorialID   int64     `json:"tutorial_id"`
	Slug         string    `json:"slug"`
	Actor        string    `json:"actor"`
	Status       JobStatus `json:"status"`
	Phase        string    `json:"phase"`
	MarkdownPath string    `json:"markdown_path,omitempty"`
	PDFPath      string    `json:"pdf_path,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:           j.ID,
		TutorialID:   j.TutorialID,
		Slug:         j.Slug,
		Actor:        j.Actor,
		Status:       j.Status,
		Phase:        j.Phase,
		MarkdownPath: j.MarkdownPath,
		PDFPath:      j.PDFPath,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
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
