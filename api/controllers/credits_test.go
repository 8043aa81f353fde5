package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/api/middleware"
	"github.com/rhoodstudio/studio-backend/internal/boosts"
	"github.com/rhoodstudio/studio-backend/internal/credits"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRequest(method, target, body string, userID uuid.UUID, role enums.UserRole) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithCaller(req.Context(), userID, role))
}

func TestCreditsAwardRatingPassesCallerAndInput(t *testing.T) {
	caller := uuid.New()
	dj := uuid.New()
	txID := uuid.New()
	var gotCaller credits.Caller
	var gotInput credits.AwardInput
	svc := stubCreditsService{
		awardFn: func(_ context.Context, c credits.Caller, in credits.AwardInput) (*credits.AwardResult, error) {
			gotCaller, gotInput = c, in
			return &credits.AwardResult{Success: true, TransactionID: &txID, CreditsAwarded: 10, Message: "Awarded 10 credits"}, nil
		},
	}

	body := `{"dj_id":"` + dj.String() + `","rating":5,"reference_id":"rating-1"}`
	rec := httptest.NewRecorder()
	CreditsAwardRating(svc, nil)(rec, authedRequest(http.MethodPost, "/api/credits/award-rating-credits", body, caller, enums.UserRoleBrand))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, caller, gotCaller.UserID)
	assert.Equal(t, enums.UserRoleBrand, gotCaller.Role)
	assert.Equal(t, dj, gotInput.DJID)
	assert.Equal(t, 5, gotInput.Rating)
	require.NotNil(t, gotInput.ReferenceID)
	assert.Equal(t, "rating-1", *gotInput.ReferenceID)

	var result map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, float64(10), result["credits_awarded"])
	assert.Equal(t, txID.String(), result["transaction_id"])
	assert.Equal(t, "Awarded 10 credits", result["message"])
	assert.NotContains(t, result, "data")
}

func TestCreditsAwardRatingRejectsBadBodies(t *testing.T) {
	svc := stubCreditsService{
		awardFn: func(context.Context, credits.Caller, credits.AwardInput) (*credits.AwardResult, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	dj := uuid.NewString()
	cases := map[string]string{
		"empty":       ``,
		"not a uuid":  `{"dj_id":"nope","rating":3}`,
		"rating high": `{"dj_id":"` + dj + `","rating":6}`,
		"rating zero": `{"dj_id":"` + dj + `","rating":0}`,
		"unknown":     `{"dj_id":"` + dj + `","rating":3,"bonus":true}`,
		"two objects": `{"dj_id":"` + dj + `","rating":3}{}`,
		"missing dj":  `{"rating":3}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			CreditsAwardRating(svc, nil)(rec, authedRequest(http.MethodPost, "/", body, uuid.New(), enums.UserRoleBrand))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeFlatError(t, rec).Error)
		})
	}
}

func TestCreditsAwardRatingMapsServiceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"), http.StatusUnauthorized},
		{pkgerrors.New(pkgerrors.CodeForbidden, "only brands can award rating credits"), http.StatusForbidden},
		{pkgerrors.New(pkgerrors.CodeConflict, "credits already awarded for this rating"), http.StatusBadRequest},
		{pkgerrors.New(pkgerrors.CodeNotFound, "dj not found"), http.StatusBadRequest},
		{pkgerrors.New(pkgerrors.CodeValidation, "dj_id must reference a DJ account"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc := stubCreditsService{
			awardFn: func(context.Context, credits.Caller, credits.AwardInput) (*credits.AwardResult, error) {
				return nil, tt.err
			},
		}
		body := `{"dj_id":"` + uuid.NewString() + `","rating":4}`
		rec := httptest.NewRecorder()
		CreditsAwardRating(svc, nil)(rec, authedRequest(http.MethodPost, "/", body, uuid.New(), enums.UserRoleBrand))
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.NotEmpty(t, decodeFlatError(t, rec).Error, tt.err.Error())
	}
}

func TestCreditsBoostOpportunityInsufficientCredits(t *testing.T) {
	opp := uuid.New()
	svc := stubCreditsService{
		boostFn: func(_ context.Context, _ credits.Caller, id uuid.UUID) (*credits.BoostResult, error) {
			require.Equal(t, opp, id)
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientCredits, "insufficient credits").
				WithDetails(map[string]any{"required": 100, "current": 40})
		},
	}

	rec := httptest.NewRecorder()
	reqBody := `{"opportunity_id":"` + opp.String() + `"}`
	CreditsBoostOpportunity(svc, nil)(rec, authedRequest(http.MethodPost, "/", reqBody, uuid.New(), enums.UserRoleDJ))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "insufficient credits", body["error"])
	assert.Equal(t, float64(100), body["required"])
	assert.Equal(t, float64(40), body["current"])
}

func TestCreditsBoostOpportunityWritesBoost(t *testing.T) {
	boostID := uuid.New()
	expires := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)
	svc := stubCreditsService{
		boostFn: func(context.Context, credits.Caller, uuid.UUID) (*credits.BoostResult, error) {
			return &credits.BoostResult{
				Success: true,
				Boost:   credits.BoostSummary{ID: boostID, ExpiresAt: expires},
				Balance: 50,
				Message: "Opportunity boosted for 24 hours",
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	body := `{"opportunity_id":"` + uuid.NewString() + `"}`
	CreditsBoostOpportunity(svc, nil)(rec, authedRequest(http.MethodPost, "/", body, uuid.New(), enums.UserRoleDJ))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Boost   struct {
			ID        uuid.UUID `json:"id"`
			ExpiresAt time.Time `json:"expires_at"`
		} `json:"boost"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Success)
	assert.Equal(t, boostID, got.Boost.ID)
	assert.True(t, expires.Equal(got.Boost.ExpiresAt))
	assert.Equal(t, "Opportunity boosted for 24 hours", got.Message)
}

func TestCreditsBoostOpportunityStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{pkgerrors.New(pkgerrors.CodeForbidden, "only DJs can boost opportunities"), http.StatusForbidden},
		{pkgerrors.New(pkgerrors.CodeNotFound, "opportunity not found"), http.StatusNotFound},
		{pkgerrors.New(pkgerrors.CodeConflict, "opportunity is not active"), http.StatusBadRequest},
		{pkgerrors.New(pkgerrors.CodeConflict, "you already have an active boost for this opportunity"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc := stubCreditsService{
			boostFn: func(context.Context, credits.Caller, uuid.UUID) (*credits.BoostResult, error) {
				return nil, tt.err
			},
		}
		rec := httptest.NewRecorder()
		body := `{"opportunity_id":"` + uuid.NewString() + `"}`
		CreditsBoostOpportunity(svc, nil)(rec, authedRequest(http.MethodPost, "/", body, uuid.New(), enums.UserRoleDJ))
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		got := decodeFlatError(t, rec)
		assert.NotEmpty(t, got.Error)
		assert.Nil(t, got.Required)
	}
}

func TestCreditsBalance(t *testing.T) {
	caller := uuid.New()
	svc := stubCreditsService{
		balanceFn: func(_ context.Context, c credits.Caller) (*credits.BalanceDTO, error) {
			return &credits.BalanceDTO{UserID: c.UserID, Credits: 250}, nil
		},
	}
	rec := httptest.NewRecorder()
	CreditsBalance(svc, nil)(rec, authedRequest(http.MethodGet, "/", "", caller, enums.UserRoleDJ))

	require.Equal(t, http.StatusOK, rec.Code)
	var got credits.BalanceDTO
	decodeData(t, rec, &got)
	assert.Equal(t, caller, got.UserID)
	assert.Equal(t, 250, got.Credits)
}

func TestCreditsTransactionsParsesQuery(t *testing.T) {
	target := uuid.New()
	var got credits.HistoryParams
	svc := stubCreditsService{
		historyFn: func(_ context.Context, _ credits.Caller, p credits.HistoryParams) (*credits.HistoryPage, error) {
			got = p
			return &credits.HistoryPage{Filter: p.Filter, Limit: p.Limit, Offset: p.Offset, Transactions: []credits.TransactionDTO{}}, nil
		},
	}
	rec := httptest.NewRecorder()
	url := "/api/credits/transactions?filter=spent&limit=20&offset=40&user_id=" + target.String()
	CreditsTransactions(svc, nil)(rec, authedRequest(http.MethodGet, url, "", uuid.New(), enums.UserRoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "spent", got.Filter)
	assert.Equal(t, 20, got.Limit)
	assert.Equal(t, 40, got.Offset)
	require.NotNil(t, got.UserID)
	assert.Equal(t, target, *got.UserID)
}

func TestCreditsTransactionsDefaultsAndBadQuery(t *testing.T) {
	var got credits.HistoryParams
	svc := stubCreditsService{
		historyFn: func(_ context.Context, _ credits.Caller, p credits.HistoryParams) (*credits.HistoryPage, error) {
			got = p
			return &credits.HistoryPage{}, nil
		},
	}
	rec := httptest.NewRecorder()
	CreditsTransactions(svc, nil)(rec, authedRequest(http.MethodGet, "/", "", uuid.New(), enums.UserRoleDJ))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, got.Limit)
	assert.Nil(t, got.UserID)

	for _, query := range []string{"?limit=0", "?limit=abc", "?offset=-1", "?user_id=nope"} {
		rec := httptest.NewRecorder()
		CreditsTransactions(svc, nil)(rec, authedRequest(http.MethodGet, "/"+query, "", uuid.New(), enums.UserRoleDJ))
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestCreditsBoostsRequiresCaller(t *testing.T) {
	svc := stubBoostService{
		listFn: func(context.Context, uuid.UUID) ([]boosts.BoostDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	rec := httptest.NewRecorder()
	CreditsBoosts(svc, nil)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreditsBoostsListsCallerBoosts(t *testing.T) {
	caller := uuid.New()
	now := time.Now().UTC()
	svc := stubBoostService{
		listFn: func(_ context.Context, userID uuid.UUID) ([]boosts.BoostDTO, error) {
			require.Equal(t, caller, userID)
			return []boosts.BoostDTO{{ID: uuid.New(), UserID: caller, BoostCost: 100, BoostExpiresAt: now.Add(time.Hour), IsActive: true, Live: true}}, nil
		},
	}
	rec := httptest.NewRecorder()
	CreditsBoosts(svc, nil)(rec, authedRequest(http.MethodGet, "/", "", caller, enums.UserRoleDJ))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Boosts []boosts.BoostDTO `json:"boosts"`
	}
	decodeData(t, rec, &got)
	require.Len(t, got.Boosts, 1)
	assert.True(t, got.Boosts[0].Live)
}
