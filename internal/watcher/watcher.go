// Package watcher monitors a directory for new transcript files and
// hands them to a processing handler.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arifaulakh/AscentCast/internal/loader"
	"github.com/fsnotify/fsnotify"
)

// Handler processes one newly created transcript file.
type Handler func(ctx context.Context, path string) error

// Watcher watches an input directory and runs the handler for each
// new transcript, with bounded concurrency.
type Watcher struct {
	inputDir      string
	handler       Handler
	log           *slog.Logger
	fs            *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup
}

func New(inputDir string, maxConcurrent int, handler Handler, log *slog.Logger) (*Watcher, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(inputDir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", inputDir, err)
	}
	return &Watcher{
		inputDir:      inputDir,
		handler:       handler,
		log:           log,
		fs:            fs,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
	}, nil
}

// Start blocks processing events until the context ends.
func (w *Watcher) Start(ctx context.Context) error {
	w.log.Info("watching for transcripts",
		"dir", w.inputDir, "max_concurrent", w.maxConcurrent)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("waiting for in-flight transcripts")
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !loader.IsSupportedExtension(event.Name) {
				continue
			}
			w.log.Info("new transcript detected", "path", event.Name)

			// Give the writer a moment to finish the file.
			time.Sleep(500 * time.Millisecond)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if err := w.handler(ctx, path); err != nil {
						w.log.Error("transcript processing failed", "path", path, "error", err)
					}
				}(event.Name)
			case <-ctx.Done():
				return ctx.Err()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

// Stop closes the underlying filesystem watcher.
func (w *Watcher) Stop() error {
	return w.fs.Close()
}
