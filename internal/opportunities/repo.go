package opportunities

import (
	"context"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the read-only opportunity lookup used by the boost policy.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
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

// FindByID returns gorm.ErrRecordNotFound when the opportunity does not exist.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	var opp models.Opportunity
	if err := r.db.WithContext(ctx).First(&opp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &opp, nil
}
