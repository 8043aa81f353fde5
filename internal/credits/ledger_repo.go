package credits

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/db"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("ledger user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateReference  = errors.New("ledger reference already recorded")
)

// LedgerRepository owns credit_transactions and the users.credits projection.
type LedgerRepository interface {
	WithTx(tx *gorm.DB) LedgerRepository
	Apply(ctx context.Context, entry *models.CreditTransaction) error
	FindByReference(ctx context.Context, userID uuid.UUID, txType enums.CreditTransactionType, referenceID, referenceType string) (*models.CreditTransaction, error)
	List(ctx context.Context, params ListParams) ([]models.CreditTransaction, error)
	SumForUser(ctx context.Context, userID uuid.UUID) (int, error)
	BalanceDrift(ctx context.Context, limit int) ([]BalanceDrift, error)
}

// ListParams filters a ledger page. A nil UserID lists every user.
type ListParams struct {
	UserID *uuid.UUID
	Filter Filter
	Limit  int
	Offset int
}

// BalanceDrift is a user whose stored balance disagrees with the ledger sum.
type BalanceDrift struct {
	UserID    uuid.UUID `gorm:"column:user_id"`
	Balance   int       `gorm:"column:balance"`
	LedgerSum int       `gorm:"column:ledger_sum"`
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	if tx == nil {
		return r
	}
	return &ledgerRepository{db: tx}
}

// Apply moves the owner's balance by entry.Amount and appends the ledger row as
// one unit. The balance update is conditional so a debit can never take the
// balance below zero; zero affected rows means the user is missing or short.
// When called on a transaction handle the work runs in a savepoint.
func (r *ledgerRepository) Apply(ctx context.Context, entry *models.CreditTransaction) error {
	if entry == nil {
		return fmt.Errorf("ledger entry required")
	}
	if entry.Amount == 0 {
		return fmt.Errorf("ledger amount must be non-zero")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = db.NowUTC()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND credits + ? >= 0", entry.UserID, entry.Amount).
			Updates(map[string]any{
				"credits":    gorm.Expr("credits + ?", entry.Amount),
				"updated_at": entry.CreatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", entry.UserID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrUserNotFound
			}
			return ErrInsufficientBalance
		}

		if err := tx.Create(entry).Error; err != nil {
			if db.IsUniqueViolation(err, "uq_credit_transactions_reference") {
				return ErrDuplicateReference
			}
			return err
		}
		return nil
	})
}

// FindByReference returns nil when no matching entry exists.
func (r *ledgerRepository) FindByReference(ctx context.Context, userID uuid.UUID, txType enums.CreditTransactionType, referenceID, referenceType string) (*models.CreditTransaction, error) {
	var entry models.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND transaction_type = ? AND reference_id = ? AND reference_type = ?", userID, txType, referenceID, referenceType).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns ledger rows newest first.
func (r *ledgerRepository) List(ctx context.Context, params ListParams) ([]models.CreditTransaction, error) {
	q := r.db.WithContext(ctx).Model(&models.CreditTransaction{})
	if params.UserID != nil {
		q = q.Where("user_id = ?", *params.UserID)
	}
	q = params.Filter.apply(q)
	if params.Limit > 0 {
		q = q.Limit(params.Limit)
	}
	if params.Offset > 0 {
		q = q.Offset(params.Offset)
	}

	var rows []models.CreditTransaction
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ledgerRepository) SumForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var sum int
	if err := r.db.WithContext(ctx).
		Model(&models.CreditTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// BalanceDrift lists users whose users.credits differs from their ledger sum.
func (r *ledgerRepository) BalanceDrift(ctx context.Context, limit int) ([]BalanceDrift, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []BalanceDrift
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id AS user_id, u.credits AS balance, COALESCE(SUM(ct.amount), 0) AS ledger_sum
		FROM users u
		LEFT JOIN credit_transactions ct ON ct.user_id = u.id
		GROUP BY u.id, u.credits
		HAVING u.credits <> COALESCE(SUM(ct.amount), 0)
		ORDER BY u.id
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
