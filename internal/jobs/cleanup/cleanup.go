package cleanup

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// StateSweeper drops conversation states that outlived their TTL.
type StateSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type Job struct {
	sweeper StateSweeper
	logger  *zap.Logger
}

func New(sweeper StateSweeper, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		sweeper: sweeper,
		logger:  logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j == nil || j.sweeper == nil {
		return nil
	}

	removed, err := j.sweeper.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("sweep conversation states: %w", err)
	}
	if removed > 0 {
		j.logger.Info("cleanup expired conversations completed", zap.Int("removed", removed))
	}
	return nil
}
