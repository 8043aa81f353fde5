package credits

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rhoodstudio/studio-backend/internal/boosts"
	"github.com/rhoodstudio/studio-backend/internal/opportunities"
	"github.com/rhoodstudio/studio-backend/internal/users"
	"github.com/rhoodstudio/studio-backend/pkg/db"
	"github.com/rhoodstudio/studio-backend/pkg/db/dbtest"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"github.com/rhoodstudio/studio-backend/pkg/metrics"
	"github.com/stretchr/testify/require"
)

type harness struct {
	client *db.Client
	svc    *service
	ledger LedgerRepository
	now    time.Time
}

func newHarness(t *testing.T) harness {
	t.Helper()
	client := dbtest.New(t)
	ledger := NewLedgerRepository(client.DB())
	svc, err := NewService(ServiceParams{
		DB:            client,
		Ledger:        ledger,
		Users:         users.NewRepository(client.DB()),
		Opportunities: opportunities.NewRepository(client.DB()),
		Boosts:        boosts.NewRepository(client.DB()),
		Metrics:       metrics.NewCreditMetrics(prometheus.NewRegistry()),
		Logger:        logger.New(logger.Options{ServiceName: "credits-test", Output: io.Discard}),
	})
	require.NoError(t, err)

	now := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	impl := svc.(*service)
	impl.now = func() time.Time { return now }
	return harness{client: client, svc: impl, ledger: ledger, now: now}
}

// user seeds a zero-balance account and funds it through the ledger so the
// balance always matches the ledger sum.
func (h harness) user(t *testing.T, role enums.UserRole, credits int) models.User {
	t.Helper()
	u := dbtest.SeedUser(t, h.client, role, 0, h.now)
	if credits > 0 {
		require.NoError(t, h.ledger.Apply(context.Background(), ledgerEntry(u.ID, credits, enums.CreditTransactionGigCompleted, h.now)))
		u.Credits = credits
	}
	return u
}

func callerFor(u models.User) Caller {
	return Caller{UserID: u.ID, Role: u.Role}
}

func (h harness) boostCount(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.client.DB().Model(&models.Boost{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestAwardRatingCreditsTable(t *testing.T) {
	h := newHarness(t)
	brand := h.user(t, enums.UserRoleBrand, 0)
	ctx := context.Background()

	want := map[int]int{5: 50, 4: 25, 3: 10, 2: 5, 1: 0}
	for rating, credits := range want {
		dj := h.user(t, enums.UserRoleDJ, 0)
		res, err := h.svc.AwardRatingCredits(ctx, callerFor(brand), AwardInput{DJID: dj.ID, Rating: rating})
		require.NoError(t, err, "rating %d", rating)
		require.True(t, res.Success)
		require.Equal(t, credits, res.CreditsAwarded, "rating %d", rating)
		require.Equal(t, credits, balanceOf(t, h.client, dj.ID))

		rows, err := h.ledger.List(ctx, ListParams{UserID: &dj.ID})
		require.NoError(t, err)
		if rating == 1 {
			require.Empty(t, rows)
			require.Nil(t, res.TransactionID)
		} else {
			require.Len(t, rows, 1)
			require.Equal(t, enums.CreditTransactionRatingReceived, rows[0].TransactionType)
			require.Equal(t, *res.TransactionID, rows[0].ID)
		}
		requireBalanceMatchesLedger(t, h.client, dj.ID)
	}
}

func TestAwardRatingCreditsRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, enums.UserRoleAdmin, 0)
	dj := h.user(t, enums.UserRoleDJ, 0)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := h.svc.AwardRatingCredits(ctx, callerFor(admin), AwardInput{DJID: dj.ID, Rating: rating})
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "rating %d", rating)
	}

	_, err := h.svc.AwardRatingCredits(ctx, callerFor(admin), AwardInput{Rating: 5})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = h.svc.AwardRatingCredits(ctx, callerFor(admin), AwardInput{DJID: uuid.New(), Rating: 5})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = h.svc.AwardRatingCredits(ctx, Caller{}, AwardInput{DJID: dj.ID, Rating: 5})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestAwardRatingCreditsOnlyToDJs(t *testing.T) {
	h := newHarness(t)
	brand := h.user(t, enums.UserRoleBrand, 0)
	otherBrand := h.user(t, enums.UserRoleBrand, 0)
	admin := h.user(t, enums.UserRoleAdmin, 0)
	ctx := context.Background()

	for _, target := range []models.User{otherBrand, admin} {
		for _, rating := range []int{5, 1} {
			_, err := h.svc.AwardRatingCredits(ctx, callerFor(brand), AwardInput{DJID: target.ID, Rating: rating})
			require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "target %s rating %d", target.Role, rating)
		}
		require.Equal(t, 0, balanceOf(t, h.client, target.ID))
		rows, err := h.ledger.List(ctx, ListParams{UserID: &target.ID})
		require.NoError(t, err)
		require.Empty(t, rows)
	}
}

func TestAwardRatingCreditsOnlyOncePerReference(t *testing.T) {
	h := newHarness(t)
	brand := h.user(t, enums.UserRoleBrand, 0)
	dj := h.user(t, enums.UserRoleDJ, 0)
	ctx := context.Background()
	input := AwardInput{DJID: dj.ID, Rating: 5, ReferenceID: strPtr("gig-42")}

	res, err := h.svc.AwardRatingCredits(ctx, callerFor(brand), input)
	require.NoError(t, err)
	require.Equal(t, 50, res.CreditsAwarded)

	_, err = h.svc.AwardRatingCredits(ctx, callerFor(brand), input)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	// explicit default reference type hits the same row
	input.ReferenceType = strPtr(DefaultRatingReferenceType)
	_, err = h.svc.AwardRatingCredits(ctx, callerFor(brand), input)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	require.Equal(t, 50, balanceOf(t, h.client, dj.ID))
	requireBalanceMatchesLedger(t, h.client, dj.ID)

	input.ReferenceType = strPtr("booking")
	_, err = h.svc.AwardRatingCredits(ctx, callerFor(brand), input)
	require.NoError(t, err)
	require.Equal(t, 100, balanceOf(t, h.client, dj.ID))
}

func TestAwardWithoutReferenceIsNotDeduplicated(t *testing.T) {
	h := newHarness(t)
	brand := h.user(t, enums.UserRoleBrand, 0)
	dj := h.user(t, enums.UserRoleDJ, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := h.svc.AwardRatingCredits(ctx, callerFor(brand), AwardInput{DJID: dj.ID, Rating: 3})
		require.NoError(t, err)
	}
	require.Equal(t, 20, balanceOf(t, h.client, dj.ID))
}

func TestBoostInsufficientCreditsMutatesNothing(t *testing.T) {
	h := newHarness(t)
	dj := h.user(t, enums.UserRoleDJ, 99)
	opp := dbtest.SeedOpportunity(t, h.client, "Warehouse party", true)

	_, err := h.svc.BoostOpportunity(context.Background(), callerFor(dj), opp.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientCredits))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	require.Equal(t, BoostCost, details["required"])
	require.Equal(t, 99, details["current"])

	require.Equal(t, 99, balanceOf(t, h.client, dj.ID))
	require.Zero(t, h.boostCount(t, dj.ID))
	requireBalanceMatchesLedger(t, h.client, dj.ID)
}

func TestBoostDebitsAndCreatesBoost(t *testing.T) {
	h := newHarness(t)
	dj := h.user(t, enums.UserRoleDJ, 150)
	opp := dbtest.SeedOpportunity(t, h.client, "Rooftop set", true)

	res, err := h.svc.BoostOpportunity(context.Background(), callerFor(dj), opp.ID)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 50, res.Balance)
	require.Equal(t, "Opportunity boosted for 24 hours", res.Message)
	require.True(t, res.Boost.ExpiresAt.Equal(h.now.Add(24*time.Hour)))

	var boost models.Boost
	require.NoError(t, h.client.DB().First(&boost, "id = ?", res.Boost.ID).Error)
	require.True(t, boost.IsActive)
	require.Equal(t, BoostCost, boost.BoostCost)
	require.True(t, boost.BoostExpiresAt.Equal(boost.CreatedAt.Add(BoostDuration)))

	require.Equal(t, 50, balanceOf(t, h.client, dj.ID))
	rows, err := h.ledger.List(context.Background(), ListParams{UserID: &dj.ID, Filter: FilterSpent})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, -BoostCost, rows[0].Amount)
	require.Equal(t, opp.ID.String(), *rows[0].ReferenceID)
	require.Contains(t, *rows[0].Description, "Rooftop set")
	requireBalanceMatchesLedger(t, h.client, dj.ID)
}

func TestBoostTwiceWhileActiveConflicts(t *testing.T) {
	h := newHarness(t)
	dj := h.user(t, enums.UserRoleDJ, 300)
	opp := dbtest.SeedOpportunity(t, h.client, "Festival slot", true)
	ctx := context.Background()

	_, err := h.svc.BoostOpportunity(ctx, callerFor(dj), opp.ID)
	require.NoError(t, err)

	_, err = h.svc.BoostOpportunity(ctx, callerFor(dj), opp.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	require.Equal(t, 200, balanceOf(t, h.client, dj.ID))
	require.Equal(t, int64(1), h.boostCount(t, dj.ID))
	requireBalanceMatchesLedger(t, h.client, dj.ID)
}

func TestBoostAgainAfterExpiry(t *testing.T) {
	h := newHarness(t)
	dj := h.user(t, enums.UserRoleDJ, 300)
	opp := dbtest.SeedOpportunity(t, h.client, "Festival slot", true)
	ctx := context.Background()

	_, err := h.svc.BoostOpportunity(ctx, callerFor(dj), opp.ID)
	require.NoError(t, err)

	later := h.now.Add(BoostDuration + time.Minute)
	h.svc.now = func() time.Time { return later }
	res, err := h.svc.BoostOpportunity(ctx, callerFor(dj), opp.ID)
	require.NoError(t, err)
	require.Equal(t, 100, res.Balance)
	require.Equal(t, int64(2), h.boostCount(t, dj.ID))
	requireBalanceMatchesLedger(t, h.client, dj.ID)
}

func TestBoostOpportunityChecks(t *testing.T) {
	h := newHarness(t)
	dj := h.user(t, enums.UserRoleDJ, 500)
	inactive := dbtest.SeedOpportunity(t, h.client, "Cancelled gig", false)
	ctx := context.Background()

	_, err := h.svc.BoostOpportunity(ctx, callerFor(dj), uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = h.svc.BoostOpportunity(ctx, callerFor(dj), inactive.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	_, err = h.svc.BoostOpportunity(ctx, callerFor(dj), uuid.Nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = h.svc.BoostOpportunity(ctx, Caller{}, inactive.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	require.Equal(t, 500, balanceOf(t, h.client, dj.ID))
	require.Zero(t, h.boostCount(t, dj.ID))
}

func TestRoleSwappedCallsAreForbidden(t *testing.T) {
	h := newHarness(t)
	dj := h.user(t, enums.UserRoleDJ, 500)
	brand := h.user(t, enums.UserRoleBrand, 500)
	admin := h.user(t, enums.UserRoleAdmin, 500)
	opp := dbtest.SeedOpportunity(t, h.client, "Brand launch", true)
	ctx := context.Background()

	_, err := h.svc.AwardRatingCredits(ctx, callerFor(dj), AwardInput{DJID: dj.ID, Rating: 5})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	for _, u := range []models.User{brand, admin} {
		_, err = h.svc.BoostOpportunity(ctx, callerFor(u), opp.ID)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "role %s", u.Role)
		require.Equal(t, 500, balanceOf(t, h.client, u.ID))
	}
	require.Equal(t, 500, balanceOf(t, h.client, dj.ID))
}

func TestAdjustBalance(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, enums.UserRoleAdmin, 0)
	dj := h.user(t, enums.UserRoleDJ, 40)
	ctx := context.Background()

	dto, err := h.svc.AdjustBalance(ctx, callerFor(admin), AdjustInput{UserID: dj.ID, Amount: 60, Description: "Makeup for outage"})
	require.NoError(t, err)
	require.Equal(t, enums.CreditTransactionManualAdjustment, dto.TransactionType)
	require.Equal(t, 100, balanceOf(t, h.client, dj.ID))

	_, err = h.svc.AdjustBalance(ctx, callerFor(admin), AdjustInput{UserID: dj.ID, Amount: -30})
	require.NoError(t, err)
	require.Equal(t, 70, balanceOf(t, h.client, dj.ID))

	_, err = h.svc.AdjustBalance(ctx, callerFor(admin), AdjustInput{UserID: dj.ID, Amount: -71})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientCredits))
	details := pkgerrors.As(err).Details().(map[string]any)
	require.Equal(t, 71, details["required"])
	require.Equal(t, 70, details["current"])

	_, err = h.svc.AdjustBalance(ctx, callerFor(admin), AdjustInput{UserID: dj.ID, Amount: 0})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = h.svc.AdjustBalance(ctx, callerFor(admin), AdjustInput{UserID: uuid.New(), Amount: 5})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = h.svc.AdjustBalance(ctx, callerFor(dj), AdjustInput{UserID: dj.ID, Amount: 5})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	require.Equal(t, 70, balanceOf(t, h.client, dj.ID))
	requireBalanceMatchesLedger(t, h.client, dj.ID)
}

func TestBalance(t *testing.T) {
	h := newHarness(t)
	dj := h.user(t, enums.UserRoleDJ, 85)

	got, err := h.svc.Balance(context.Background(), callerFor(dj))
	require.NoError(t, err)
	require.Equal(t, 85, got.Credits)
	require.Equal(t, dj.ID, got.UserID)

	_, err = h.svc.Balance(context.Background(), Caller{UserID: uuid.New(), Role: enums.UserRoleDJ})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestHistoryScopesToCaller(t *testing.T) {
	h := newHarness(t)
	dj := h.user(t, enums.UserRoleDJ, 200)
	other := h.user(t, enums.UserRoleDJ, 10)
	admin := h.user(t, enums.UserRoleAdmin, 0)
	opp := dbtest.SeedOpportunity(t, h.client, "Late set", true)
	ctx := context.Background()

	_, err := h.svc.BoostOpportunity(ctx, callerFor(dj), opp.ID)
	require.NoError(t, err)

	page, err := h.svc.History(ctx, callerFor(dj), HistoryParams{})
	require.NoError(t, err)
	require.Equal(t, "all", page.Filter)
	require.Equal(t, 100, page.Limit)
	require.Len(t, page.Transactions, 2)
	for _, row := range page.Transactions {
		require.Equal(t, dj.ID, row.UserID)
		require.Nil(t, row.UserDisplayName)
	}

	spent, err := h.svc.History(ctx, callerFor(dj), HistoryParams{Filter: "spent"})
	require.NoError(t, err)
	require.Len(t, spent.Transactions, 1)

	_, err = h.svc.History(ctx, callerFor(dj), HistoryParams{UserID: &other.ID})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	_, err = h.svc.History(ctx, callerFor(dj), HistoryParams{Filter: "refunds"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	all, err := h.svc.History(ctx, callerFor(admin), HistoryParams{})
	require.NoError(t, err)
	require.Len(t, all.Transactions, 3)
	for _, row := range all.Transactions {
		require.NotNil(t, row.UserDisplayName)
	}

	one, err := h.svc.History(ctx, callerFor(admin), HistoryParams{UserID: &other.ID})
	require.NoError(t, err)
	require.Len(t, one.Transactions, 1)
	require.Equal(t, "Test dj", *one.Transactions[0].UserDisplayName)
}
