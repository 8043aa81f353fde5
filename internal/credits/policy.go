package credits

import "time"

const (
	// BoostCost is the fixed price of one boost.
	BoostCost = 100
	// BoostDuration is how long a purchased boost stays live.
	BoostDuration = 24 * time.Hour

	MinRating = 1
	MaxRating = 5

	// DefaultRatingReferenceType is recorded when a caller supplies a
	// reference id without naming its type.
	DefaultRatingReferenceType = "rating"
	opportunityReferenceType   = "opportunity"
)

var creditsByRating = map[int]int{
	5: 50,
	4: 25,
	3: 10,
	2: 5,
	1: 0,
}

// CreditsForRating maps a star rating to its credit grant. ok is false for
// ratings outside 1..5.
func CreditsForRating(rating int) (credits int, ok bool) {
	credits, ok = creditsByRating[rating]
	return credits, ok
}
