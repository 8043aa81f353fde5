package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes user-related persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListRanked(ctx context.Context, limit int) ([]models.User, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByID loads a user by their UUID.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs loads the requested users keyed by id. Unknown ids are omitted.
func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// LockByID loads the user with a row lock. Must run inside a transaction.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRanked returns users holding credits ordered for the leaderboard:
// highest balance first, then oldest account, then id.
func (r *repository) ListRanked(ctx context.Context, limit int) ([]models.User, error) {
	var rows []models.User
	q := r.db.WithContext(ctx).
		Where("credits > 0").
		Order("credits DESC").
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
