package boosts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/db"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	"gorm.io/gorm"
)

// ErrActiveBoostExists is returned when the partial unique index on live
// (opportunity, user) boosts rejects an insert.
var ErrActiveBoostExists = errors.New("active boost already exists")

// Repository manages persistence for boosts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, boost *models.Boost) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Boost, error)
	FindActive(ctx context.Context, opportunityID, userID uuid.UUID, now time.Time) (*models.Boost, error)
	ExpireStale(ctx context.Context, opportunityID, userID uuid.UUID, now time.Time) (int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Boost, error)
	Deactivate(ctx context.Context, id uuid.UUID, now time.Time) (int64, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, boost *models.Boost) error {
	if err := r.db.WithContext(ctx).Create(boost).Error; err != nil {
		if db.IsUniqueViolation(err, "uq_boosts_active_pair") {
			return ErrActiveBoostExists
		}
		return err
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Boost, error) {
	var boost models.Boost
	if err := r.db.WithContext(ctx).First(&boost, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &boost, nil
}

// FindActive returns the live boost for the pair, or nil when there is none.
func (r *repository) FindActive(ctx context.Context, opportunityID, userID uuid.UUID, now time.Time) (*models.Boost, error) {
	var boost models.Boost
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ? AND user_id = ? AND is_active = ? AND boost_expires_at > ?", opportunityID, userID, true, now).
		Order("boost_expires_at DESC").
		First(&boost).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &boost, nil
}

// ExpireStale clears the active flag on the pair's boosts that have run out,
// freeing the unique slot for a new purchase.
func (r *repository) ExpireStale(ctx context.Context, opportunityID, userID uuid.UUID, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Boost{}).
		Where("opportunity_id = ? AND user_id = ? AND is_active = ? AND boost_expires_at <= ?", opportunityID, userID, true, now).
		Updates(map[string]any{"is_active": false, "updated_at": now})
	return res.RowsAffected, res.Error
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Boost, error) {
	var rows []models.Boost
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Deactivate flips an active boost off. Zero rows means it was already inactive or missing.
func (r *repository) Deactivate(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Boost{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{"is_active": false, "updated_at": now})
	return res.RowsAffected, res.Error
}

func (r *repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Boost{}).
		Where("is_active = ? AND boost_expires_at <= ?", true, now).
		Updates(map[string]any{"is_active": false, "updated_at": now})
	return res.RowsAffected, res.Error
}
