package enums

import "fmt"

// CreditTransactionType maps to the credit_transaction_type enum in Postgres.
type CreditTransactionType string

const (
	CreditTransactionGigCompleted     CreditTransactionType = "gig_completed"
	CreditTransactionRatingReceived   CreditTransactionType = "rating_received"
	CreditTransactionBoostUsed        CreditTransactionType = "boost_used"
	CreditTransactionManualAdjustment CreditTransactionType = "manual_adjustment"
	CreditTransactionEndorsement      CreditTransactionType = "endorsement"
	CreditTransactionStreakBonus      CreditTransactionType = "streak_bonus"
)

var validCreditTransactionTypes = []CreditTransactionType{
	CreditTransactionGigCompleted,
	CreditTransactionRatingReceived,
	CreditTransactionBoostUsed,
	CreditTransactionManualAdjustment,
	CreditTransactionEndorsement,
	CreditTransactionStreakBonus,
}

func (t CreditTransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical transaction enum.
func (t CreditTransactionType) IsValid() bool {
	for _, candidate := range validCreditTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseCreditTransactionType converts raw input into a CreditTransactionType.
func ParseCreditTransactionType(value string) (CreditTransactionType, error) {
	for _, candidate := range validCreditTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid credit transaction type %q", value)
}
