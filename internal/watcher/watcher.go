package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
)

const transcriptExt = ".json"

type implWatcher struct {
	inputDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	settle        time.Duration
	wg            sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Start dispatches transcripts already waiting in the input directory, then
// monitors it for new ones until ctx is cancelled.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inputDir)

	if err := w.scanExisting(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return w.drain(ctx)

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// Only process CREATE events
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isTranscriptFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-transcript file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New transcript detected: %s", event.Name)

			// Small delay to ensure file is fully written
			time.Sleep(w.settle)

			if err := w.dispatch(ctx, event.Name); err != nil {
				return w.drain(ctx)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// scanExisting picks up transcripts dropped while the watcher was down
func (w *implWatcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inputDir)
	if err != nil {
		return fmt.Errorf("scan input dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && isTranscriptFile(e.Name()) {
			paths = append(paths, filepath.Join(w.inputDir, e.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) > 0 {
		w.logger.Info(ctx, "Found %d pending transcripts", len(paths))
	}
	for _, path := range paths {
		if err := w.dispatch(ctx, path); err != nil {
			return w.drain(ctx)
		}
	}
	return nil
}

// dispatch runs the handler in a goroutine once a slot is free. A path that is
// already being handled, or that is gone by now, is skipped: a file created
// between New and the start-up scan shows up both as an event and in the scan.
func (w *implWatcher) dispatch(ctx context.Context, path string) error {
	if !w.claim(path) {
		w.logger.Debug(ctx, "Already processing %s, skipping", path)
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		w.unclaim(path)
		w.logger.Debug(ctx, "Skipping %s: %v", path, err)
		return nil
	}

	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		w.unclaim(path)
		return ctx.Err()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }()
		defer w.unclaim(path)

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
	return nil
}

func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inflight[path]; ok {
		return false
	}
	w.inflight[path] = struct{}{}
	return true
}

func (w *implWatcher) unclaim(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, path)
}

func (w *implWatcher) drain(ctx context.Context) error {
	w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
	w.wg.Wait()
	w.logger.Info(ctx, "File watcher stopped")
	return ctx.Err()
}

// isTranscriptFile accepts visible .json files
func isTranscriptFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.ToLower(filepath.Ext(base)) == transcriptExt
}
