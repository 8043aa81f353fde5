package cron

import (
	"context"
	"fmt"

	"github.com/rhoodstudio/studio-backend/internal/credits"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"go.uber.org/multierr"
)

const defaultReconcileLimit = 500

type driftReader interface {
	BalanceDrift(ctx context.Context, limit int) ([]credits.BalanceDrift, error)
}

// BalanceReconcileJobParams configure the reconciliation job.
type BalanceReconcileJobParams struct {
	Logger *logger.Logger
	Ledger driftReader
	Limit  int
}

// NewBalanceReconcileJob reports users whose stored balance disagrees with
// the sum of their ledger rows. It never rewrites balances.
func NewBalanceReconcileJob(params BalanceReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultReconcileLimit
	}
	return &balanceReconcileJob{logg: params.Logger, ledger: params.Ledger, limit: limit}, nil
}

type balanceReconcileJob struct {
	logg   *logger.Logger
	ledger driftReader
	limit  int
}

func (j *balanceReconcileJob) Name() string { return "balance-reconcile" }

func (j *balanceReconcileJob) Run(ctx context.Context) error {
	drift, err := j.ledger.BalanceDrift(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("query balance drift: %w", err)
	}
	if len(drift) == 0 {
		return nil
	}

	var errs error
	for _, row := range drift {
		rowCtx := j.logg.WithFields(ctx, map[string]any{
			"drift_user_id": row.UserID.String(),
			"balance":       row.Balance,
			"ledger_sum":    row.LedgerSum,
			"delta":         row.Balance - row.LedgerSum,
		})
		j.logg.Warn(rowCtx, "balance does not match ledger")
		errs = multierr.Append(errs, fmt.Errorf("user %s: balance %d ledger %d", row.UserID, row.Balance, row.LedgerSum))
	}
	return fmt.Errorf("%d users with balance drift: %w", len(drift), errs)
}
