package cron

import (
	"context"
	"fmt"

	"github.com/danamoreau/strandly-backend/pkg/logger"
)

type invitationExpirer interface {
	ExpireStaleInvitations(ctx context.Context) (int64, error)
}

// InvitationExpiryJobParams configures the invitation cleanup job.
type InvitationExpiryJobParams struct {
	Logger *logger.Logger
	Salons invitationExpirer
}

// NewInvitationExpiryJob constructs the invitation expiry cron job.
func NewInvitationExpiryJob(params InvitationExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Salons == nil {
		return nil, fmt.Errorf("salon service required")
	}
	return &invitationExpiryJob{
		logg:   params.Logger,
		salons: params.Salons,
	}, nil
}

type invitationExpiryJob struct {
	logg   *logger.Logger
	salons invitationExpirer
}

func (j *invitationExpiryJob) Name() string { return "invitation-expiry" }

func (j *invitationExpiryJob) Run(ctx context.Context) error {
	count, err := j.salons.ExpireStaleInvitations(ctx)
	if err != nil {
		return fmt.Errorf("expire stale invitations: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "invitation expiry complete")
	return nil
}
