package boosts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/db"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"github.com/rhoodstudio/studio-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service exposes boost reads and admin controls.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]BoostDTO, error)
	Deactivate(ctx context.Context, boostID uuid.UUID) (*BoostDTO, error)
	DeactivateExpired(ctx context.Context) (int64, error)
}

// BoostDTO reports a boost with its liveness evaluated at read time.
type BoostDTO struct {
	ID             uuid.UUID `json:"id"`
	OpportunityID  uuid.UUID `json:"opportunity_id"`
	UserID         uuid.UUID `json:"user_id"`
	BoostCost      int       `json:"boost_cost"`
	BoostExpiresAt time.Time `json:"boost_expires_at"`
	IsActive       bool      `json:"is_active"`
	Live           bool      `json:"live"`
	CreatedAt      time.Time `json:"created_at"`
}

func FromModel(b models.Boost, now time.Time) BoostDTO {
	return BoostDTO{
		ID:             b.ID,
		OpportunityID:  b.OpportunityID,
		UserID:         b.UserID,
		BoostCost:      b.BoostCost,
		BoostExpiresAt: b.BoostExpiresAt,
		IsActive:       b.IsActive,
		Live:           b.Live(now),
		CreatedAt:      b.CreatedAt,
	}
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("boost repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: db.NowUTC}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]BoostDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListForUser(ctx, userID, pagination.DefaultLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list boosts")
	}
	now := s.now()
	out := make([]BoostDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row, now))
	}
	return out, nil
}

func (s *service) Deactivate(ctx context.Context, boostID uuid.UUID) (*BoostDTO, error) {
	if boostID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "boost id is required")
	}
	boost, err := s.repo.FindByID(ctx, boostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "boost not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load boost")
	}
	if !boost.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "boost is already inactive")
	}

	now := s.now()
	affected, err := s.repo.Deactivate(ctx, boostID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate boost")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "boost is already inactive")
	}

	boost.IsActive = false
	ctx = s.logg.WithFields(ctx, map[string]any{"boost_id": boostID.String(), "opportunity_id": boost.OpportunityID.String()})
	s.logg.Info(ctx, "boost deactivated")

	dto := FromModel(*boost, now)
	return &dto, nil
}

// DeactivateExpired clears the active flag on every boost past its expiry.
func (s *service) DeactivateExpired(ctx context.Context) (int64, error) {
	affected, err := s.repo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("deactivate expired boosts: %w", err)
	}
	return affected, nil
}
