package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
)

const (
	defaultMaxConcurrent = 2
	defaultSettleDelay   = 500 * time.Millisecond
)

// New watches inputDir for new transcripts
func New(inputDir string, handler EventHandler, log logger.Logger, opts Options) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	} else if opts.SettleDelay == 0 {
		opts.SettleDelay = defaultSettleDelay
	}

	return &implWatcher{
		inputDir:      inputDir,
		handler:       handler,
		logger:        log,
		watcher:       watcher,
		maxConcurrent: opts.MaxConcurrent,
		semaphore:     make(chan struct{}, opts.MaxConcurrent),
		settle:        opts.SettleDelay,
		inflight:      make(map[string]struct{}),
	}, nil
}
