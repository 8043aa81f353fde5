package controllers

import (
	"net/http"

	"github.com/rhoodstudio/studio-backend/api/responses"
	"github.com/rhoodstudio/studio-backend/api/validators"
	"github.com/rhoodstudio/studio-backend/internal/leaderboard"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
)

func Leaderboard(svc leaderboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := validators.ParseOptionalQueryInt(r, "year", leaderboard.MinYear, leaderboard.MaxYear)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		board, err := svc.Rank(r.Context(), year)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, board)
	}
}
