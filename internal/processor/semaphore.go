package processor

import "context"

// semaphore caps the number of diarization jobs running at once
type semaphore struct {
	ch chan struct{}
}

func newSemaphore(capacity int) *semaphore {
	if capacity <= 0 {
		capacity = 1
	}
	return &semaphore{
		ch: make(chan struct{}, capacity),
	}
}

// acquire blocks until a slot is free or ctx is done
func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *semaphore) release() {
	<-s.ch
}

// inUse reports the number of held slots
func (s *semaphore) inUse() int {
	return len(s.ch)
}
