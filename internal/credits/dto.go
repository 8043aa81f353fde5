package credits

import (
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
)

// Caller is the authenticated identity invoking a credit operation.
type Caller struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (c Caller) IsAdmin() bool { return c.Role == enums.UserRoleAdmin }

type AwardInput struct {
	DJID          uuid.UUID
	Rating        int
	ReferenceID   *string
	ReferenceType *string
}

type AwardResult struct {
	Success        bool       `json:"success"`
	TransactionID  *uuid.UUID `json:"transaction_id,omitempty"`
	CreditsAwarded int        `json:"credits_awarded"`
	Message        string     `json:"message"`
}

type BoostResult struct {
	Success bool         `json:"success"`
	Boost   BoostSummary `json:"boost"`
	Balance int          `json:"balance"`
	Message string       `json:"message"`
}

type BoostSummary struct {
	ID        uuid.UUID `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AdjustInput struct {
	UserID      uuid.UUID
	Amount      int
	Description string
	ReferenceID *string
}

type BalanceDTO struct {
	UserID  uuid.UUID `json:"user_id"`
	Credits int       `json:"credits"`
}

type HistoryParams struct {
	UserID *uuid.UUID
	Filter string
	Limit  int
	Offset int
}

type HistoryPage struct {
	Filter       string           `json:"filter"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
	Transactions []TransactionDTO `json:"transactions"`
}

type TransactionDTO struct {
	ID              uuid.UUID                   `json:"id"`
	UserID          uuid.UUID                   `json:"user_id"`
	UserDisplayName *string                     `json:"user_display_name,omitempty"`
	Amount          int                         `json:"amount"`
	TransactionType enums.CreditTransactionType `json:"transaction_type"`
	Description     *string                     `json:"description,omitempty"`
	ReferenceID     *string                     `json:"reference_id,omitempty"`
	ReferenceType   *string                     `json:"reference_type,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
}

func TransactionFromModel(m models.CreditTransaction) TransactionDTO {
	return TransactionDTO{
		ID:              m.ID,
		UserID:          m.UserID,
		Amount:          m.Amount,
		TransactionType: m.TransactionType,
		Description:     m.Description,
		ReferenceID:     m.ReferenceID,
		ReferenceType:   m.ReferenceType,
		CreatedAt:       m.CreatedAt,
	}
}
