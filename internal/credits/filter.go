package credits

import (
	"fmt"
	"strings"

	"github.com/rhoodstudio/studio-backend/pkg/enums"
	"gorm.io/gorm"
)

// Filter narrows the transaction history: all, earned (amount > 0),
// spent (amount < 0) or a single transaction type.
type Filter struct {
	kind   string
	txType enums.CreditTransactionType
}

const (
	filterAll    = "all"
	filterEarned = "earned"
	filterSpent  = "spent"
	filterType   = "type"
)

var (
	FilterAll    = Filter{kind: filterAll}
	FilterEarned = Filter{kind: filterEarned}
	FilterSpent  = Filter{kind: filterSpent}
)

// FilterType restricts history to one transaction type.
func FilterType(t enums.CreditTransactionType) Filter {
	return Filter{kind: filterType, txType: t}
}

// ParseFilter accepts all|earned|spent or any transaction type. Empty means all.
func ParseFilter(raw string) (Filter, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "", filterAll:
		return FilterAll, nil
	case filterEarned:
		return FilterEarned, nil
	case filterSpent:
		return FilterSpent, nil
	}
	t, err := enums.ParseCreditTransactionType(value)
	if err != nil {
		return Filter{}, fmt.Errorf("unknown filter %q", raw)
	}
	return FilterType(t), nil
}

func (f Filter) String() string {
	if f.kind == filterType {
		return string(f.txType)
	}
	if f.kind == "" {
		return filterAll
	}
	return f.kind
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	switch f.kind {
	case filterEarned:
		return q.Where("amount > 0")
	case filterSpent:
		return q.Where("amount < 0")
	case filterType:
		return q.Where("transaction_type = ?", f.txType)
	default:
		return q
	}
}
