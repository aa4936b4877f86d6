package snapshot

import (
	"context"
	"sync"
	"time"

	"trustmap/internal/metrics"
	"trustmap/pkg/errors"
	"trustmap/pkg/logger"
)

// Holder keeps the most recent Index and reloads it on demand or on a timer.
// A failed reload keeps serving the previous Index.
type Holder struct {
	source  Source
	logger  logger.Logger
	metrics *metrics.Collector

	mu      sync.RWMutex
	current *Index

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewHolder(source Source, log logger.Logger, m *metrics.Collector) *Holder {
	return &Holder{
		source:  source,
		logger:  log,
		metrics: m,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Current returns the latest Index.
func (h *Holder) Current() (*Index, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return nil, errors.ErrSnapshotNotLoaded
	}
	return h.current, nil
}

// Refresh loads a fresh snapshot, normalizes it and swaps it in.
func (h *Holder) Refresh(ctx context.Context) (*Index, error) {
	start := time.Now()
	snap, err := h.source.Load(ctx)
	h.metrics.RecordRefresh(err)
	if err != nil {
		h.logger.Error("Snapshot refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, errors.Wrap(errors.ErrSnapshotSource, err.Error())
	}

	idx := Normalize(snap)
	h.metrics.ObserveCompute("normalize", time.Since(start))
	h.metrics.SetSnapshotSize(idx.Counts(), len(idx.Warnings))

	for _, w := range idx.Warnings {
		h.logger.Warn("Snapshot record problem", map[string]interface{}{
			"snapshot_id": idx.ID,
			"problem":     w,
		})
	}

	h.mu.Lock()
	h.current = idx
	h.mu.Unlock()

	h.logger.Info("Snapshot refreshed", map[string]interface{}{
		"snapshot_id":  idx.ID,
		"participants": len(idx.PIDs()),
		"equivalents":  len(idx.Equivalents()),
		"warnings":     len(idx.Warnings),
		"duration_ms":  time.Since(start).Milliseconds(),
	})
	return idx, nil
}

// Start reloads the snapshot every interval until Stop is called.
func (h *Holder) Start(interval time.Duration) {
	if interval <= 0 {
		close(h.done)
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer close(h.done)
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				_, _ = h.Refresh(ctx)
				cancel()
			case <-h.stop:
				ticker.Stop()
				return
			}
		}
	}()
	h.logger.Info("Snapshot refresher started", map[string]interface{}{
		"interval": interval.String(),
	})
}

// Stop ends the refresh loop started by Start and waits for it to exit.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}
