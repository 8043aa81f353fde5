package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/api/responses"
	"github.com/rhoodstudio/studio-backend/api/validators"
	"github.com/rhoodstudio/studio-backend/internal/boosts"
	"github.com/rhoodstudio/studio-backend/internal/credits"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
)

type adjustBalanceRequest struct {
	UserID      string  `json:"user_id" validate:"required,uuid"`
	Amount      int     `json:"amount" validate:"required,ne=0"`
	Description string  `json:"description" validate:"max=500"`
	ReferenceID *string `json:"reference_id,omitempty" validate:"omitempty,max=255"`
}

// AdminAdjustCredits handles POST /api/admin/credits/adjust.
func AdminAdjustCredits(svc credits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body adjustBalanceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, _ := uuid.Parse(body.UserID)

		tx, err := svc.AdjustBalance(r.Context(), callerFrom(r), credits.AdjustInput{
			UserID:      userID,
			Amount:      body.Amount,
			Description: body.Description,
			ReferenceID: body.ReferenceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tx)
	}
}

// AdminDeactivateBoost handles POST /api/admin/boosts/{boostId}/deactivate.
func AdminDeactivateBoost(svc boosts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		boostID, err := validators.ParsePathUUID(chi.URLParam(r, "boostId"), "boostId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		boost, err := svc.Deactivate(r.Context(), boostID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, boost)
	}
}
