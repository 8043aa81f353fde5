package credits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/internal/boosts"
	"github.com/rhoodstudio/studio-backend/internal/opportunities"
	"github.com/rhoodstudio/studio-backend/internal/users"
	"github.com/rhoodstudio/studio-backend/pkg/db"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"github.com/rhoodstudio/studio-backend/pkg/metrics"
	"github.com/rhoodstudio/studio-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service applies the credit policies on top of the ledger.
type Service interface {
	AwardRatingCredits(ctx context.Context, caller Caller, input AwardInput) (*AwardResult, error)
	BoostOpportunity(ctx context.Context, caller Caller, opportunityID uuid.UUID) (*BoostResult, error)
	AdjustBalance(ctx context.Context, caller Caller, input AdjustInput) (*TransactionDTO, error)
	Balance(ctx context.Context, caller Caller) (*BalanceDTO, error)
	History(ctx context.Context, caller Caller, params HistoryParams) (*HistoryPage, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the credits service.
type ServiceParams struct {
	DB            txRunner
	Ledger        LedgerRepository
	Users         users.Repository
	Opportunities opportunities.Repository
	Boosts        boosts.Repository
	Metrics       *metrics.CreditMetrics
	Logger        *logger.Logger
}

type service struct {
	db            txRunner
	ledger        LedgerRepository
	users         users.Repository
	opportunities opportunities.Repository
	boosts        boosts.Repository
	metrics       *metrics.CreditMetrics
	logg          *logger.Logger
	now           func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Opportunities == nil {
		return nil, fmt.Errorf("opportunities repository required")
	}
	if params.Boosts == nil {
		return nil, fmt.Errorf("boosts repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:            params.DB,
		ledger:        params.Ledger,
		users:         params.Users,
		opportunities: params.Opportunities,
		boosts:        params.Boosts,
		metrics:       params.Metrics,
		logg:          params.Logger,
		now:           db.NowUTC,
	}, nil
}

func (s *service) AwardRatingCredits(ctx context.Context, caller Caller, input AwardInput) (*AwardResult, error) {
	const op = "award"
	if caller.UserID == uuid.Nil {
		return nil, s.reject(op, "unauthorized", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
	}
	if !caller.Role.CanAwardCredits() {
		return nil, s.reject(op, "forbidden", pkgerrors.New(pkgerrors.CodeForbidden, "only brands and admins can award credits"))
	}
	if input.DJID == uuid.Nil {
		return nil, s.reject(op, "invalid_input", pkgerrors.New(pkgerrors.CodeValidation, "dj_id is required"))
	}
	amount, ok := CreditsForRating(input.Rating)
	if !ok {
		return nil, s.reject(op, "invalid_input", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating)))
	}
	target, err := s.users.FindByID(ctx, input.DJID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.reject(op, "not_found", pkgerrors.New(pkgerrors.CodeNotFound, "dj not found"))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load dj")
	}
	if target.Role != enums.UserRoleDJ {
		return nil, s.reject(op, "invalid_input", pkgerrors.New(pkgerrors.CodeValidation, "dj_id must reference a DJ account"))
	}
	if amount == 0 {
		return &AwardResult{
			Success: true,
			Message: fmt.Sprintf("No credits awarded for a %d-star rating", input.Rating),
		}, nil
	}

	refID, refType := normalizeReference(input.ReferenceID, input.ReferenceType)
	if refID != nil {
		existing, err := s.ledger.FindByReference(ctx, input.DJID, enums.CreditTransactionRatingReceived, *refID, *refType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing award")
		}
		if existing != nil {
			return nil, s.reject(op, "already_awarded", alreadyAwarded())
		}
	}

	description := fmt.Sprintf("Received %d-star rating", input.Rating)
	entry := &models.CreditTransaction{
		ID:              uuid.New(),
		UserID:          input.DJID,
		Amount:          amount,
		TransactionType: enums.CreditTransactionRatingReceived,
		Description:     &description,
		ReferenceID:     refID,
		ReferenceType:   refType,
		CreatedAt:       s.now(),
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.ledger.WithTx(tx).Apply(ctx, entry)
	})
	switch {
	case errors.Is(err, ErrDuplicateReference):
		return nil, s.reject(op, "already_awarded", alreadyAwarded())
	case errors.Is(err, ErrUserNotFound):
		return nil, s.reject(op, "not_found", pkgerrors.New(pkgerrors.CodeNotFound, "dj not found"))
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "award credits")
	}

	s.metrics.RecordLedger(string(entry.TransactionType), entry.Amount)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"dj_id":          input.DJID.String(),
		"rating":         input.Rating,
		"credits":        amount,
		"transaction_id": entry.ID.String(),
	})
	s.logg.Info(logCtx, "rating credits awarded")

	return &AwardResult{
		Success:        true,
		TransactionID:  &entry.ID,
		CreditsAwarded: amount,
		Message:        fmt.Sprintf("Awarded %d credits for %d-star rating", amount, input.Rating),
	}, nil
}

// BoostOpportunity debits BoostCost and creates a live boost. Every step after
// the role check runs in one transaction holding the caller's row lock, so a
// failure anywhere leaves the balance untouched.
func (s *service) BoostOpportunity(ctx context.Context, caller Caller, opportunityID uuid.UUID) (*BoostResult, error) {
	const op = "boost"
	if caller.UserID == uuid.Nil {
		return nil, s.reject(op, "unauthorized", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
	}
	if !caller.Role.CanBoost() {
		return nil, s.reject(op, "forbidden", pkgerrors.New(pkgerrors.CodeForbidden, "only DJs can boost opportunities"))
	}
	if opportunityID == uuid.Nil {
		return nil, s.reject(op, "invalid_input", pkgerrors.New(pkgerrors.CodeValidation, "opportunity_id is required"))
	}

	now := s.now()
	var (
		boost   *models.Boost
		balance int
		reason  string
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.users.WithTx(tx).LockByID(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				reason = "not_found"
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}
		if user.Credits < BoostCost {
			reason = "insufficient_credits"
			return insufficientCredits(user.Credits)
		}

		opp, err := s.opportunities.WithTx(tx).FindByID(ctx, opportunityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				reason = "not_found"
				return pkgerrors.New(pkgerrors.CodeNotFound, "opportunity not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load opportunity")
		}
		if !opp.IsActive {
			reason = "opportunity_inactive"
			return pkgerrors.New(pkgerrors.CodeConflict, "opportunity is not active")
		}

		boostRepo := s.boosts.WithTx(tx)
		if _, err := boostRepo.ExpireStale(ctx, opportunityID, caller.UserID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expire stale boosts")
		}
		active, err := boostRepo.FindActive(ctx, opportunityID, caller.UserID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check active boost")
		}
		if active != nil {
			reason = "already_boosted"
			return alreadyBoosted()
		}

		refID := opportunityID.String()
		refType := opportunityReferenceType
		description := fmt.Sprintf("Boosted opportunity: %s", opp.Title)
		entry := &models.CreditTransaction{
			ID:              uuid.New(),
			UserID:          caller.UserID,
			Amount:          -BoostCost,
			TransactionType: enums.CreditTransactionBoostUsed,
			Description:     &description,
			ReferenceID:     &refID,
			ReferenceType:   &refType,
			CreatedAt:       now,
		}
		if err := s.ledger.WithTx(tx).Apply(ctx, entry); err != nil {
			if errors.Is(err, ErrInsufficientBalance) {
				reason = "insufficient_credits"
				return insufficientCredits(user.Credits)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit boost cost")
		}

		boost = &models.Boost{
			ID:             uuid.New(),
			OpportunityID:  opportunityID,
			UserID:         caller.UserID,
			BoostCost:      BoostCost,
			BoostExpiresAt: now.Add(BoostDuration),
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := boostRepo.Create(ctx, boost); err != nil {
			if errors.Is(err, boosts.ErrActiveBoostExists) {
				reason = "already_boosted"
				return alreadyBoosted()
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create boost")
		}
		balance = user.Credits - BoostCost
		return nil
	})
	if err != nil {
		if reason != "" {
			s.metrics.IncRejection(op, reason)
		}
		return nil, err
	}

	s.metrics.RecordLedger(string(enums.CreditTransactionBoostUsed), -BoostCost)
	s.metrics.IncBoost()
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"opportunity_id": opportunityID.String(),
		"boost_id":       boost.ID.String(),
		"balance":        balance,
	})
	s.logg.Info(logCtx, "opportunity boosted")

	return &BoostResult{
		Success: true,
		Boost:   BoostSummary{ID: boost.ID, ExpiresAt: boost.BoostExpiresAt},
		Balance: balance,
		Message: "Opportunity boosted for 24 hours",
	}, nil
}

// AdjustBalance records an admin manual_adjustment in either direction.
func (s *service) AdjustBalance(ctx context.Context, caller Caller, input AdjustInput) (*TransactionDTO, error) {
	const op = "adjust"
	if caller.UserID == uuid.Nil {
		return nil, s.reject(op, "unauthorized", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
	}
	if !caller.IsAdmin() {
		return nil, s.reject(op, "forbidden", pkgerrors.New(pkgerrors.CodeForbidden, "only admins can adjust balances"))
	}
	if input.UserID == uuid.Nil {
		return nil, s.reject(op, "invalid_input", pkgerrors.New(pkgerrors.CodeValidation, "user_id is required"))
	}
	if input.Amount == 0 {
		return nil, s.reject(op, "invalid_input", pkgerrors.New(pkgerrors.CodeValidation, "amount must be non-zero"))
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = "Manual adjustment"
	}
	var refID, refType *string
	if input.ReferenceID != nil && strings.TrimSpace(*input.ReferenceID) != "" {
		id := strings.TrimSpace(*input.ReferenceID)
		kind := "admin"
		refID, refType = &id, &kind
	}

	entry := &models.CreditTransaction{
		ID:              uuid.New(),
		UserID:          input.UserID,
		Amount:          input.Amount,
		TransactionType: enums.CreditTransactionManualAdjustment,
		Description:     &description,
		ReferenceID:     refID,
		ReferenceType:   refType,
		CreatedAt:       s.now(),
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.ledger.WithTx(tx).Apply(ctx, entry)
	})
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, s.reject(op, "not_found", pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
	case errors.Is(err, ErrInsufficientBalance):
		current := 0
		if user, findErr := s.users.FindByID(ctx, input.UserID); findErr == nil {
			current = user.Credits
		}
		return nil, s.reject(op, "insufficient_credits", pkgerrors.New(pkgerrors.CodeInsufficientCredits, "adjustment would make the balance negative").
			WithDetails(map[string]any{"required": -input.Amount, "current": current}))
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust balance")
	}

	s.metrics.RecordLedger(string(entry.TransactionType), entry.Amount)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"target_user_id": input.UserID.String(),
		"amount":         input.Amount,
		"transaction_id": entry.ID.String(),
	})
	s.logg.Info(logCtx, "manual credit adjustment recorded")

	dto := TransactionFromModel(*entry)
	return &dto, nil
}

func (s *service) Balance(ctx context.Context, caller Caller) (*BalanceDTO, error) {
	if caller.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load balance")
	}
	return &BalanceDTO{UserID: user.ID, Credits: user.Credits}, nil
}

// History lists ledger rows. Non-admins only ever see their own rows; admins
// may list everyone and get owner display names attached.
func (s *service) History(ctx context.Context, caller Caller, params HistoryParams) (*HistoryPage, error) {
	if caller.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	filter, err := ParseFilter(params.Filter)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	target := params.UserID
	if !caller.IsAdmin() {
		if target != nil && *target != caller.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's transactions")
		}
		self := caller.UserID
		target = &self
	}

	page := pagination.Params{Limit: params.Limit, Offset: params.Offset}.Normalize()
	rows, err := s.ledger.List(ctx, ListParams{UserID: target, Filter: filter, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transactions")
	}

	out := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, TransactionFromModel(row))
	}
	if caller.IsAdmin() && len(out) > 0 {
		if err := s.attachDisplayNames(ctx, out); err != nil {
			return nil, err
		}
	}

	return &HistoryPage{
		Filter:       filter.String(),
		Limit:        page.Limit,
		Offset:       page.Offset,
		Transactions: out,
	}, nil
}

func (s *service) attachDisplayNames(ctx context.Context, rows []TransactionDTO) error {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}
		ids = append(ids, row.UserID)
	}
	byID, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve display names")
	}
	for i := range rows {
		if user, ok := byID[rows[i].UserID]; ok {
			name := users.DisplayName(user)
			rows[i].UserDisplayName = &name
		}
	}
	return nil
}

func (s *service) reject(operation, reason string, err *pkgerrors.Error) error {
	s.metrics.IncRejection(operation, reason)
	return err
}

func normalizeReference(referenceID, referenceType *string) (*string, *string) {
	if referenceID == nil || strings.TrimSpace(*referenceID) == "" {
		return nil, nil
	}
	id := strings.TrimSpace(*referenceID)
	kind := DefaultRatingReferenceType
	if referenceType != nil && strings.TrimSpace(*referenceType) != "" {
		kind = strings.TrimSpace(*referenceType)
	}
	return &id, &kind
}

func insufficientCredits(current int) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInsufficientCredits, "insufficient credits").
		WithDetails(map[string]any{"required": BoostCost, "current": current})
}

func alreadyAwarded() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, "credits already awarded for this rating")
}

func alreadyBoosted() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, "you already have an active boost for this opportunity")
}
