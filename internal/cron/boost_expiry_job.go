package cron

import (
	"context"
	"fmt"

	"github.com/rhoodstudio/studio-backend/pkg/logger"
)

type boostExpirer interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

// BoostExpiryJobParams configure the boost expiry job.
type BoostExpiryJobParams struct {
	Logger *logger.Logger
	Boosts boostExpirer
}

// NewBoostExpiryJob clears is_active on boosts whose expiry has passed.
func NewBoostExpiryJob(params BoostExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Boosts == nil {
		return nil, fmt.Errorf("boost service required")
	}
	return &boostExpiryJob{logg: params.Logger, boosts: params.Boosts}, nil
}

type boostExpiryJob struct {
	logg   *logger.Logger
	boosts boostExpirer
}

func (j *boostExpiryJob) Name() string { return "boost-expiry" }

func (j *boostExpiryJob) Run(ctx context.Context) error {
	affected, err := j.boosts.DeactivateExpired(ctx)
	if err != nil {
		return err
	}
	if affected > 0 {
		j.logg.Info(j.logg.WithField(ctx, "deactivated", affected), "expired boosts deactivated")
	}
	return nil
}
