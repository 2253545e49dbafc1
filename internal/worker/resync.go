package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned by Start on a running Resyncer.
var ErrAlreadyRunning = errors.New("resync loop is already running")

// Resyncer rewrites the current year's sheet on a fixed interval, covering
// change messages lost while the broker or worker was down.
type Resyncer struct {
	worker   *SyncWorker
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewResyncer(worker *SyncWorker, interval time.Duration) *Resyncer {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Resyncer{worker: worker, interval: interval}
}

// Start syncs once immediately, then every interval until Stop or ctx ends.
func (r *Resyncer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go r.loop(ctx)
	slog.InfoContext(ctx, "Resync loop started", "interval", r.interval)
	return nil
}

func (r *Resyncer) loop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.syncOnce(ctx)
	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.syncOnce(ctx)
		}
	}
}

func (r *Resyncer) syncOnce(ctx context.Context) {
	if err := r.worker.SyncYear(ctx, r.worker.now()); err != nil {
		slog.ErrorContext(ctx, "Periodic resync failed", "error", err)
	}
}

// Stop ends the loop and waits for the current sync to finish.
func (r *Resyncer) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	close(r.stopCh)
	done := r.doneCh
	r.mu.Unlock()

	select {
	case <-done:
		slog.InfoContext(ctx, "Resync loop stopped")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Resync loop stop timed out")
		return ctx.Err()
	}
}

func (r *Resyncer) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
