package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/arifaulakh/AscentCast/internal/loader"
)

// Worker processes a single queued analysis job.
type Worker struct {
	analyzer *Analyzer
	cache    *ReportCache
	log      *slog.Logger
}

func NewWorker(analyzer *Analyzer, cache *ReportCache, log *slog.Logger) *Worker {
	return &Worker{
		analyzer: analyzer,
		cache:    cache,
		log:      log,
	}
}

// Process runs the full analysis pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	data := job.FileData()
	userContext := job.UserContext()

	var cacheKey string
	if w.cache != nil {
		cacheKey = w.cache.Key(data, userContext)
		if report, ok := w.cache.Get(cacheKey); ok {
			log.Info("report cache hit")
			job.SetReport(report)
			job.SetCacheHit()
			job.SetStatus(StatusCompleted, "done")
			return
		}
	}

	job.SetStatus(StatusLoading, "loading")
	p, err := loader.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "loading")
		return
	}

	doc, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return
	}

	analyzer := w.analyzer
	if job.ChunkSize > 0 {
		overlap := job.ChunkOverlap
		if overlap <= 0 || overlap >= job.ChunkSize {
			overlap = job.ChunkSize / 10
		}
		analyzer = analyzer.WithChunking(job.ChunkSize, overlap)
	}

	report, err := analyzer.AnalyzeDocument(ctx, doc, userContext, job)
	if err != nil {
		log.Error("analysis failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, job.Phase)
		return
	}

	job.SetReport(report)
	if w.cache != nil {
		w.cache.Put(cacheKey, report)
	}
	job.SetStatus(StatusCompleted, "done")
	log.Info("analysis complete",
		"chunks", report.Provenance.ChunkCount,
		"fragments", report.Provenance.FragmentCount,
		"partial", report.Partial)
}
