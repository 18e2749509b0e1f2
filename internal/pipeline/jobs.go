package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/arifaulakh/AscentCast/internal/insight"
	"github.com/google/uuid"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusLoading      JobStatus = "loading"
	StatusSegmenting   JobStatus = "segmenting"
	StatusExtracting   JobStatus = "extracting"
	StatusSynthesizing JobStatus = "synthesizing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// Job tracks the state of a single transcript analysis.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Filename string `json:"filename"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CacheHit  bool      `json:"cache_hit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Optional segmentation overrides, set before Submit.
	ChunkSize    int `json:"-"`
	ChunkOverlap int `json:"-"`

	// Internal: not serialized.
	fileData    []byte
	userContext string
	report      *insight.Report
	errors      []string
}

// Progress tracks per-chunk processing progress.
type Progress struct {
	TotalChunks     int      `json:"total_chunks"`
	ChunksProcessed int      `json:"chunks_processed"`
	ChunksFailed    int      `json:"chunks_failed"`
	Errors          []string `json:"errors"`
}

// NewJob creates a queued job holding the uploaded transcript bytes.
func NewJob(filename, userContext string, fileData []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		Filename:    filename,
		Status:      StatusQueued,
		Phase:       "queued",
		fileData:    fileData,
		userContext: userContext,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Job implements Observer so a running analysis reports progress
// directly into job state. PhaseChange maps pipeline phases onto job
// statuses.
func (j *Job) PhaseChange(name string) {
	switch name {
	case "segmenting":
		j.SetStatus(StatusSegmenting, name)
	case "extracting":
		j.SetStatus(StatusExtracting, name)
	case "synthesizing":
		j.SetStatus(StatusSynthesizing, name)
	}
}

func (j *Job) ChunksTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChunks = n
	j.UpdatedAt = time.Now()
}

func (j *Job) ChunkDone(index int, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksProcessed++
	if err != nil {
		j.Progress.ChunksFailed++
		j.errors = append(j.errors, fmt.Sprintf("chunk %d: %s", index, err))
		j.Progress.Errors = j.errors
	}
	j.UpdatedAt = time.Now()
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetReport stores the finished report.
func (j *Job) SetReport(r *insight.Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.report = r
	j.UpdatedAt = time.Now()
}

// Report returns the finished report, or nil.
func (j *Job) Report() *insight.Report {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.report
}

// SetCacheHit marks the job as served from the report cache.
func (j *Job) SetCacheHit() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.CacheHit = true
	j.UpdatedAt = time.Now()
}

// FileData returns the raw transcript bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// UserContext returns the caller's career context string.
func (j *Job) UserContext() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.userContext
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Partial  bool      `json:"partial"`
	CacheHit bool      `json:"cache_hit"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	partial := j.report != nil && j.report.Partial
	return JobSnapshot{
		ID:       j.ID,
		Filename: j.Filename,
		Status:   j.Status,
		Phase:    j.Phase,
		Partial:  partial,
		CacheHit: j.CacheHit,
		Progress: Progress{
			TotalChunks:     j.Progress.TotalChunks,
			ChunksProcessed: j.Progress.ChunksProcessed,
			ChunksFailed:    j.Progress.ChunksFailed,
			Errors:          errs,
		},
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
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}
