// Package pipeline runs the transcript analysis pipeline: segmentation,
// concurrent per-chunk extraction, and synthesis into a report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arifaulakh/AscentCast/internal/config"
	"github.com/arifaulakh/AscentCast/internal/insight"
	"github.com/arifaulakh/AscentCast/internal/llm"
	"github.com/arifaulakh/AscentCast/internal/loader"
	"github.com/arifaulakh/AscentCast/internal/segmenter"
	"github.com/arifaulakh/AscentCast/internal/transcript"
)

// Observer receives progress callbacks during a run. Implementations
// must tolerate concurrent ChunkDone calls.
type Observer interface {
	PhaseChange(name string)
	ChunksTotal(n int)
	ChunkDone(index int, err error)
}

type noopObserver struct{}

func (noopObserver) PhaseChange(string) {}
func (noopObserver) ChunksTotal(int) {}
func (noopObserver) ChunkDone(int, error) {}

// Analyzer turns a transcript into an insight report.
type Analyzer struct {
	cfg       config.Config
	completer llm.Completer
	retry     RetryPolicy
	log       *slog.Logger
	model     string
}

func NewAnalyzer(cfg config.Config, completer llm.Completer, log *slog.Logger) *Analyzer {
	model := "unknown"
	if m, ok := completer.(interface{ Model() string }); ok {
		model = m.Model()
	}
	return &Analyzer{
		cfg:       cfg,
		completer: completer,
		retry: RetryPolicy{
			MaxAttempts: cfg.MaxRetryAttempts,
			BaseDelay:   cfg.BackoffBaseDelay,
			MaxDelay:    cfg.BackoffMaxDelay,
		},
		log:   log,
		model: model,
	}
}

// WithChunking returns a copy of the analyzer using the given
// segmentation parameters.
func (a *Analyzer) WithChunking(size, overlap int) *Analyzer {
	clone := *a
	clone.cfg.ChunkSize = size
	clone.cfg.ChunkOverlap = overlap
	return &clone
}

// Analyze loads a transcript from disk and runs the full pipeline.
func (a *Analyzer) Analyze(ctx context.Context, path, userContext string) (*insight.Report, error) {
	doc, err := loader.Load(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	return a.AnalyzeDocument(ctx, doc, userContext, nil)
}

// AnalyzeDocument runs segmentation, extraction, and synthesis over a
// parsed transcript, bounded by the configured run timeout.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, doc *transcript.Document, userContext string, obs Observer) (*insight.Report, error) {
	if a.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.RunTimeout)
		defer cancel()
	}
	if obs == nil {
		obs = noopObserver{}
	}
	start := time.Now()
	log := a.log.With("title", doc.Title)

	if strings.TrimSpace(doc.Text) == "" {
		return nil, &InvalidInputError{Reason: "transcript has no text"}
	}

	obs.PhaseChange("segmenting")
	chunks, err := segmenter.Split(doc.Text, a.cfg.ChunkSize, a.cfg.ChunkOverlap)
	if err != nil {
		return nil, &InvalidInputError{Reason: "segmentation failed", Cause: err}
	}
	obs.ChunksTotal(len(chunks))
	log.Info("segmented transcript", "chunks", len(chunks))

	obs.PhaseChange("extracting")
	results, omitted, err := a.extractAll(ctx, doc, chunks, userContext, obs)
	if err != nil {
		return nil, err
	}

	var fragments []insight.Fragment
	for _, r := range results {
		fragments = append(fragments, r.Fragments...)
	}
	log.Info("extraction complete", "fragments", len(fragments), "omitted", len(omitted))

	obs.PhaseChange("synthesizing")
	sections, err := a.synthesize(ctx, doc.Title, userContext, fragments)
	if err != nil {
		return nil, err
	}

	return &insight.Report{
		Sections: sections,
		Partial:  len(omitted) > 0,
		Provenance: insight.Provenance{
			Title:         doc.Title,
			Model:         a.model,
			ChunkCount:    len(chunks),
			FragmentCount: len(fragments),
			Omitted:       omitted,
			DurationMs:    time.Since(start).Milliseconds(),
			GeneratedAt:   time.Now().UTC(),
		},
	}, nil
}

// extractAll runs per-chunk extraction with bounded concurrency.
// Successful results come back sorted by chunk index.
func (a *Analyzer) extractAll(ctx context.Context, doc *transcript.Document, chunks []transcript.Chunk, userContext string, obs Observer) ([]insight.ExtractionResult, []insight.Omission, error) {
	type chunkResult struct {
		idx       int
		fragments []insight.Fragment
		err       error
	}
	results := make(chan chunkResult, len(chunks))
	sem := make(chan struct{}, a.cfg.MaxConcurrentExtractions)

	for _, chunk := range chunks {
		go func(chunk transcript.Chunk) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results <- chunkResult{idx: chunk.Index, err: ctx.Err()}
				return
			}

			fragments, err := a.extractChunk(ctx, doc, chunk, userContext, len(chunks))
			results <- chunkResult{idx: chunk.Index, fragments: fragments, err: err}
		}(chunk)
	}

	var succeeded []insight.ExtractionResult
	var failed []chunkResult
	for range chunks {
		r := <-results
		obs.ChunkDone(r.idx, r.err)
		if r.err != nil {
			a.log.Error("chunk extraction failed", "chunk", r.idx, "error", r.err)
			failed = append(failed, r)
			continue
		}
		succeeded = append(succeeded, insight.ExtractionResult{Index: r.idx, Fragments: r.fragments})
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, &CancelledError{Phase: "extracting", Cause: err}
	}

	sort.Slice(succeeded, func(i, j int) bool { return succeeded[i].Index < succeeded[j].Index })
	sort.Slice(failed, func(i, j int) bool { return failed[i].idx < failed[j].idx })

	if len(failed) > 0 {
		if a.cfg.ExtractionFailurePolicy == config.FailurePolicyFatal || len(succeeded) == 0 {
			f := failed[0]
			return nil, nil, &ExtractionError{Index: f.idx, Cause: f.err}
		}
	}

	var omitted []insight.Omission
	for _, f := range failed {
		omitted = append(omitted, insight.Omission{Index: f.idx, Reason: f.err.Error()})
	}
	return succeeded, omitted, nil
}

// extractChunk runs one extraction call with retries and parses the
// fragments, tagging each with its source page.
func (a *Analyzer) extractChunk(ctx context.Context, doc *transcript.Document, chunk transcript.Chunk, userContext string, total int) ([]insight.Fragment, error) {
	prompt := insight.BuildExtractionPrompt(doc.Title, userContext, chunk.Text, chunk.Index, total)

	raw, attempts, err := a.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return a.completer.Complete(ctx, insight.SystemPrompt, prompt)
	})
	if err != nil {
		return nil, fmt.Errorf("after %d attempts: %w", attempts, err)
	}

	fragments, err := insight.ParseFragments(raw)
	if err != nil {
		return nil, err
	}
	page := doc.PageAt(chunk.Start)
	for i := range fragments {
		if fragments[i].Page == 0 {
			fragments[i].Page = page
		}
	}
	return fragments, nil
}

// synthesize folds the fragments into the final report sections. When
// the fragment text exceeds the synthesis budget, intermediate digest
// calls condense groups of fragments first.
func (a *Analyzer) synthesize(ctx context.Context, title, userContext string, fragments []insight.Fragment) ([]insight.Section, error) {
	if fragmentSize(fragments) > a.cfg.SynthesisInputBudget {
		var condensed []insight.Fragment
		for _, group := range partitionFragments(fragments, a.cfg.SynthesisInputBudget) {
			digest, err := a.digest(ctx, title, group)
			if err != nil {
				return nil, err
			}
			condensed = append(condensed, digest...)
		}
		a.log.Info("condensed fragments for synthesis",
			"before", len(fragments), "after", len(condensed))
		fragments = condensed
	}

	prompt := insight.BuildSynthesisPrompt(title, userContext, fragments)
	raw, attempts, err := a.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return a.completer.Complete(ctx, insight.SystemPrompt, prompt)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &CancelledError{Phase: "synthesizing", Cause: err}
		}
		return nil, &SynthesisError{Cause: fmt.Errorf("after %d attempts: %w", attempts, err)}
	}

	sections := insight.ParseSections(raw)
	if len(sections) == 0 {
		return nil, &SynthesisError{Cause: fmt.Errorf("empty synthesis response")}
	}
	return sections, nil
}

// digest runs one intermediate fold call over a fragment group.
func (a *Analyzer) digest(ctx context.Context, title string, group []insight.Fragment) ([]insight.Fragment, error) {
	prompt := insight.BuildDigestPrompt(title, group)
	raw, attempts, err := a.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return a.completer.Complete(ctx, insight.SystemPrompt, prompt)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &CancelledError{Phase: "synthesizing", Cause: err}
		}
		return nil, &SynthesisError{Cause: fmt.Errorf("digest after %d attempts: %w", attempts, err)}
	}
	return insight.ParseFragments(raw)
}

// partitionFragments splits fragments in order into groups whose text
// fits within budget runes. A group always holds at least one fragment.
func partitionFragments(fragments []insight.Fragment, budget int) [][]insight.Fragment {
	var groups [][]insight.Fragment
	var current []insight.Fragment
	size := 0
	for _, f := range fragments {
		fsize := utf8.RuneCountInString(f.Text)
		if len(current) > 0 && size+fsize > budget {
			groups = append(groups, current)
			current = nil
			size = 0
		}
		current = append(current, f)
		size += fsize
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func fragmentSize(fragments []insight.Fragment) int {
	total := 0
	for _, f := range fragments {
		total += utf8.RuneCountInString(f.Text)
	}
	return total
}
