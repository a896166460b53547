package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/curator-cli/internal/logger"
)

// JanitorConfig configures abandoned-run cleanup.
type JanitorConfig struct {
	// Enabled turns the background sweep on. Off by default: a run
	// that never receives an answer stays suspended indefinitely
	// unless an operator opts into expiry.
	Enabled bool

	// TTL is how long a checkpoint may sit untouched before it is
	// considered abandoned.
	TTL time.Duration

	// Interval is how often the sweep runs.
	Interval time.Duration
}

// DefaultJanitorConfig returns the stock janitor settings.
func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		Enabled:  false,
		TTL:      7 * 24 * time.Hour,
		Interval: time.Hour,
	}
}

// Janitor removes checkpoints of abandoned suspended runs.
// It is a pure core service with no external control API.
type Janitor struct {
	config JanitorConfig
	runs   driven.RunStateStore

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewJanitor creates a janitor over the run state store.
func NewJanitor(config JanitorConfig, runs driven.RunStateStore) *Janitor {
	if config.TTL <= 0 {
		config.TTL = DefaultJanitorConfig().TTL
	}
	if config.Interval <= 0 {
		config.Interval = DefaultJanitorConfig().Interval
	}
	return &Janitor{config: config, runs: runs}
}

// Start begins the sweep loop. This method blocks until Stop is called
// or the context is cancelled.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil // Already running
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.mu.Unlock()

	if _, err := j.Sweep(ctx); err != nil {
		logger.Warn("Janitor sweep failed: %v", err)
	}

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-j.stopCh:
			return nil
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				logger.Warn("Janitor sweep failed: %v", err)
			}
		}
	}
}

// Stop gracefully shuts down the janitor.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.running {
		return
	}
	j.running = false
	close(j.stopCh)
}

// Sweep deletes checkpoints older than the TTL and returns how many
// were removed. Only suspended runs are eligible; a run mid-drive is
// never older than its last checkpoint anyway.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	states, err := j.runs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list runs: %w", err)
	}

	cutoff := time.Now().Add(-j.config.TTL)
	removed := 0
	for i := range states {
		if states[i].UpdatedAt.After(cutoff) {
			continue
		}
		if err := j.runs.Delete(ctx, states[i].RunID); err != nil {
			logger.Warn("Failed to expire run %s: %v", states[i].RunID, err)
			continue
		}
		logger.Info("Expired abandoned run %s (idle since %s)", states[i].RunID, states[i].UpdatedAt.Format(time.RFC3339))
		removed++
	}
	return removed, nil
}
