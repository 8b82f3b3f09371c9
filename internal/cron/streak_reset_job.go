package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/danamoreau/strandly-backend/pkg/logger"
)

type streakResetter interface {
	ResetExpired(ctx context.Context, now time.Time) (int64, error)
}

// StreakResetJobParams configures the nightly streak reset.
type StreakResetJobParams struct {
	Logger  *logger.Logger
	Streaks streakResetter
}

// NewStreakResetJob constructs the streak reset cron job.
func NewStreakResetJob(params StreakResetJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Streaks == nil {
		return nil, fmt.Errorf("streak service required")
	}
	return &streakResetJob{
		logg:    params.Logger,
		streaks: params.Streaks,
		now:     time.Now,
	}, nil
}

type streakResetJob struct {
	logg    *logger.Logger
	streaks streakResetter
	now     func() time.Time
}

func (j *streakResetJob) Name() string { return "streak-reset" }

// Run zeroes streaks that missed yesterday. The underlying update is scoped to
// rows whose last log predates the boundary, so re-running is harmless.
func (j *streakResetJob) Run(ctx context.Context) error {
	count, err := j.streaks.ResetExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("reset expired streaks: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "streak reset complete")
	return nil
}
