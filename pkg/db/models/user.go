package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
)

// User is the studio profile row. Credits is the materialised balance and is
// only ever changed together with a credit_transactions insert.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email     string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	FirstName string         `gorm:"column:first_name;not null;default:''"`
	LastName  string         `gorm:"column:last_name;not null;default:''"`
	DJName    *string        `gorm:"column:dj_name"`
	BrandName *string        `gorm:"column:brand_name"`
	Role      enums.UserRole `gorm:"column:role;type:user_role;not null"`
	Credits   int            `gorm:"column:credits;not null;default:0"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
