package models

import (
	"time"

	"github.com/google/uuid"
)

type Opportunity struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	BrandID   *uuid.UUID `gorm:"column:brand_id;type:uuid"`
	Title     string     `gorm:"column:title;not null"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Opportunity) TableName() string { return "opportunities" }
