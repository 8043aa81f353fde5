package models

import (
	"time"

	"github.com/google/uuid"
)

type Boost struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OpportunityID  uuid.UUID `gorm:"column:opportunity_id;type:uuid;not null"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	BoostCost      int       `gorm:"column:boost_cost;not null"`
	BoostExpiresAt time.Time `gorm:"column:boost_expires_at;not null"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Boost) TableName() string { return "boosts" }

// Live reports whether the boost is flagged active and has not expired at now.
func (b Boost) Live(now time.Time) bool {
	return b.IsActive && b.BoostExpiresAt.After(now)
}
