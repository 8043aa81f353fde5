package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
)

// CreditTransaction is an immutable ledger entry. Positive amounts credit the
// owner, negative amounts debit.
type CreditTransaction struct {
	ID              uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID                   `gorm:"column:user_id;type:uuid;not null"`
	Amount          int                         `gorm:"column:amount;not null"`
	TransactionType enums.CreditTransactionType `gorm:"column:transaction_type;type:credit_transaction_type;not null"`
	Description     *string                     `gorm:"column:description"`
	ReferenceID     *string                     `gorm:"column:reference_id"`
	ReferenceType   *string                     `gorm:"column:reference_type"`
	CreatedAt       time.Time                   `gorm:"column:created_at;autoCreateTime"`
}

func (CreditTransaction) TableName() string { return "credit_transactions" }
