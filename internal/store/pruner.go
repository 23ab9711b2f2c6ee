package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Pruner periodically removes revisions older than the retention window.
type Pruner struct {
	scheduler gocron.Scheduler
	store     Store
	retention time.Duration
}

// NewPruner creates a pruner that runs every interval and deletes revisions
// older than retention. A zero retention disables pruning.
func NewPruner(store Store, retention, interval time.Duration) (*Pruner, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	p := &Pruner{scheduler: s, store: store, retention: retention}

	if retention > 0 {
		if _, err := s.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(p.runOnce),
			gocron.WithName("revision-prune"),
		); err != nil {
			_ = s.Shutdown()
			return nil, fmt.Errorf("failed to create prune job: %w", err)
		}
	}

	return p, nil
}

// Start begins the schedule.
func (p *Pruner) Start() {
	if p.retention <= 0 {
		slog.Info("Revision pruning disabled")
		return
	}
	slog.Info("Starting revision pruner", "retention", p.retention.String())
	p.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (p *Pruner) Stop() error {
	return p.scheduler.Shutdown()
}

func (p *Pruner) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-p.retention)
	n, err := p.store.PruneRevisions(ctx, cutoff)
	if err != nil {
		slog.Error("Revision prune failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Pruned old revisions", "removed", n, "cutoff", cutoff.Format(time.RFC3339))
	}
}
