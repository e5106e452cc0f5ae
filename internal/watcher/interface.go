// Package watcher feeds transcript files dropped into a directory to a handler.
package watcher

import (
	"context"
	"time"
)

// Watcher defines the interface for inbox monitoring
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one transcript file
type EventHandler func(ctx context.Context, filePath string) error

// Options tunes the watcher. Zero values fall back to defaults.
type Options struct {
	// MaxConcurrent bounds running handlers (default 2).
	MaxConcurrent int
	// SettleDelay is waited after a CREATE event so the writer can finish (default 500ms).
	SettleDelay time.Duration
}
