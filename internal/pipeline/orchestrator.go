package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arifaulakh/AscentCast/internal/config"
)

// Orchestrator manages the queued analysis pipeline behind the HTTP API.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	analyzer *Analyzer
	cache    *ReportCache
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, analyzer *Analyzer, cache *ReportCache, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		analyzer: analyzer,
		cache:    cache,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches the worker pool and the job store janitor.
func (o *Orchestrator) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for id := 0; id < o.cfg.WorkerCount; id++ {
		o.wg.Add(1)
		go o.runWorker(runCtx, id)
	}

	o.wg.Add(1)
	go o.runJanitor(runCtx)
}

// runWorker drains the queue until it closes or ctx is cancelled.
func (o *Orchestrator) runWorker(ctx context.Context, id int) {
	defer o.wg.Done()

	log := o.log.With("worker", id)
	w := NewWorker(o.analyzer, o.cache, log)
	log.Debug("worker started")
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

// runJanitor evicts expired jobs from the store on a fixed interval.
func (o *Orchestrator) runJanitor(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.jobs.Cleanup()
		}
	}
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		o.log.Warn("queue full, rejecting job", "job_id", job.ID)
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
