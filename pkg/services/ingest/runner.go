package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Step is one refresh cycle, e.g. dashboard.Service.Refresh.
type Step func(ctx context.Context) error

type RunnerConfig struct {
	Interval time.Duration
}

type RunnerProgress struct {
	Cycle    int64
	Failures int64
	LastErr  error
	At       time.Time
}

// Runner repeats a Step on a fixed interval until its context is done.
type Runner struct {
	step     Step
	config   RunnerConfig
	done     chan struct{}
	progress chan RunnerProgress
}

func NewRunner(step Step, config RunnerConfig) *Runner {
	return &Runner{
		step:     step,
		config:   config,
		done:     make(chan struct{}),
		progress: make(chan RunnerProgress, 100),
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Progress reports every finished cycle. Updates are dropped when nobody
// reads them.
func (r *Runner) Progress() <-chan RunnerProgress {
	return r.progress
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	defer close(r.done)
	defer close(r.progress)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	var cycle, failures int64
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("refresh runner stopped")
			return
		case <-ticker.C:
			cycle++
			err := r.step(ctx)
			if err != nil {
				failures++
				logger.Error().Err(err).Int64("cycle", cycle).Msg("refresh cycle failed")
			} else {
				logger.Debug().Int64("cycle", cycle).Msg("refresh cycle finished")
			}

			select {
			case r.progress <- RunnerProgress{Cycle: cycle, Failures: failures, LastErr: err, At: time.Now()}:
			default:
			}
		}
	}
}
