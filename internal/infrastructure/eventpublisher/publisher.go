package eventpublisher

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StaleCommandSource re-emits transfer commands that never reached a worker.
type StaleCommandSource interface {
	RepublishStale(ctx context.Context, maxAge time.Duration, limit int) (int, error)
}

// Recorder counts republished commands. Optional.
type Recorder interface {
	Republished(n int)
}

// Republisher periodically sweeps sagas stuck in requested and publishes
// their command again.
type Republisher struct {
	source    StaleCommandSource
	recorder  Recorder
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
	maxAge    time.Duration
}

// Config for Republisher.
type Config struct {
	Source    StaleCommandSource
	Recorder  Recorder
	Logger    zerolog.Logger
	BatchSize int           // Sagas republished per sweep
	Interval  time.Duration // Sweep interval
	MaxAge    time.Duration // Age after which a requested saga is stale
}

// NewRepublisher creates a new Republisher.
func NewRepublisher(cfg Config) *Republisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 2 * time.Minute
	}

	return &Republisher{
		source:    cfg.Source,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger.With().Str("component", "republisher").Logger(),
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		maxAge:    cfg.MaxAge,
	}
}

// Start sweeps until the context is cancelled.
func (r *Republisher) Start(ctx context.Context) error {
	r.logger.Info().
		Int("batch_size", r.batchSize).
		Dur("interval", r.interval).
		Dur("max_age", r.maxAge).
		Msg("republisher started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("republisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Republisher) sweep(ctx context.Context) {
	n, err := r.source.RepublishStale(ctx, r.maxAge, r.batchSize)
	if err != nil {
		r.logger.Error().Err(err).Int("republished", n).Msg("failed to republish stale transfers")
	}

	if n == 0 {
		return
	}

	if r.recorder != nil {
		r.recorder.Republished(n)
	}

	r.logger.Info().Int("count", n).Msg("republished stale transfer commands")
}
