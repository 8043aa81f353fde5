package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/api/middleware"
	"github.com/rhoodstudio/studio-backend/api/responses"
	"github.com/rhoodstudio/studio-backend/api/validators"
	"github.com/rhoodstudio/studio-backend/internal/boosts"
	"github.com/rhoodstudio/studio-backend/internal/credits"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"github.com/rhoodstudio/studio-backend/pkg/pagination"
)

type awardRatingRequest struct {
	DJID          string  `json:"dj_id" validate:"required,uuid"`
	Rating        int     `json:"rating" validate:"required,min=1,max=5"`
	ReferenceID   *string `json:"reference_id,omitempty" validate:"omitempty,max=255"`
	ReferenceType *string `json:"reference_type,omitempty" validate:"omitempty,max=64"`
}

type boostOpportunityRequest struct {
	OpportunityID string `json:"opportunity_id" validate:"required,uuid"`
}

func callerFrom(r *http.Request) credits.Caller {
	return credits.Caller{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   middleware.RoleFromContext(r.Context()),
	}
}

// AwardErrorStatuses keeps award failures inside 400/401/403/500.
var AwardErrorStatuses = responses.StatusOverrides{
	pkgerrors.CodeConflict:    http.StatusBadRequest,
	pkgerrors.CodeNotFound:    http.StatusBadRequest,
	pkgerrors.CodeIdempotency: http.StatusBadRequest,
	pkgerrors.CodeDependency:  http.StatusInternalServerError,
}

// BoostErrorStatuses keeps boost failures inside 400/401/403/404/500.
var BoostErrorStatuses = responses.StatusOverrides{
	pkgerrors.CodeConflict:    http.StatusBadRequest,
	pkgerrors.CodeIdempotency: http.StatusBadRequest,
	pkgerrors.CodeDependency:  http.StatusInternalServerError,
}

// CreditsAwardRating handles POST /api/credits/award-rating-credits. The
// result and any error are written at the top level of the body.
func CreditsAwardRating(svc credits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := responses.WithFlatErrors(r.Context(), AwardErrorStatuses)
		var body awardRatingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		djID, _ := uuid.Parse(body.DJID)

		result, err := svc.AwardRatingCredits(ctx, callerFrom(r), credits.AwardInput{
			DJID:          djID,
			Rating:        body.Rating,
			ReferenceID:   body.ReferenceID,
			ReferenceType: body.ReferenceType,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, http.StatusOK, result)
	}
}

// CreditsBoostOpportunity handles POST /api/credits/boost-opportunity.
func CreditsBoostOpportunity(svc credits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := responses.WithFlatErrors(r.Context(), BoostErrorStatuses)
		var body boostOpportunityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		opportunityID, _ := uuid.Parse(body.OpportunityID)

		result, err := svc.BoostOpportunity(ctx, callerFrom(r), opportunityID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, http.StatusOK, result)
	}
}

func CreditsBalance(svc credits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balance, err := svc.Balance(r.Context(), callerFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

// CreditsTransactions handles GET /api/credits/transactions?filter&limit&offset&user_id.
func CreditsTransactions(svc credits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseOptionalQueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.History(r.Context(), callerFrom(r), credits.HistoryParams{
			UserID: userID,
			Filter: r.URL.Query().Get("filter"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// CreditsBoosts lists the caller's boosts with their live flag.
func CreditsBoosts(svc boosts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		list, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"boosts": list})
	}
}
