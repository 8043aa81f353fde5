package controllers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/api/responses"
	"github.com/rhoodstudio/studio-backend/internal/boosts"
	"github.com/rhoodstudio/studio-backend/internal/credits"
	"github.com/rhoodstudio/studio-backend/internal/leaderboard"
)

type stubCreditsService struct {
	awardFn   func(context.Context, credits.Caller, credits.AwardInput) (*credits.AwardResult, error)
	boostFn   func(context.Context, credits.Caller, uuid.UUID) (*credits.BoostResult, error)
	adjustFn  func(context.Context, credits.Caller, credits.AdjustInput) (*credits.TransactionDTO, error)
	balanceFn func(context.Context, credits.Caller) (*credits.BalanceDTO, error)
	historyFn func(context.Context, credits.Caller, credits.HistoryParams) (*credits.HistoryPage, error)
}

func (s stubCreditsService) AwardRatingCredits(ctx context.Context, c credits.Caller, in credits.AwardInput) (*credits.AwardResult, error) {
	return s.awardFn(ctx, c, in)
}

func (s stubCreditsService) BoostOpportunity(ctx context.Context, c credits.Caller, id uuid.UUID) (*credits.BoostResult, error) {
	return s.boostFn(ctx, c, id)
}

func (s stubCreditsService) AdjustBalance(ctx context.Context, c credits.Caller, in credits.AdjustInput) (*credits.TransactionDTO, error) {
	return s.adjustFn(ctx, c, in)
}

func (s stubCreditsService) Balance(ctx context.Context, c credits.Caller) (*credits.BalanceDTO, error) {
	return s.balanceFn(ctx, c)
}

func (s stubCreditsService) History(ctx context.Context, c credits.Caller, p credits.HistoryParams) (*credits.HistoryPage, error) {
	return s.historyFn(ctx, c, p)
}

type stubBoostService struct {
	listFn       func(context.Context, uuid.UUID) ([]boosts.BoostDTO, error)
	deactivateFn func(context.Context, uuid.UUID) (*boosts.BoostDTO, error)
}

func (s stubBoostService) ListForUser(ctx context.Context, userID uuid.UUID) ([]boosts.BoostDTO, error) {
	return s.listFn(ctx, userID)
}

func (s stubBoostService) Deactivate(ctx context.Context, id uuid.UUID) (*boosts.BoostDTO, error) {
	return s.deactivateFn(ctx, id)
}

func (s stubBoostService) DeactivateExpired(context.Context) (int64, error) { return 0, nil }

type stubLeaderboard struct {
	rankFn func(context.Context, *int) (*leaderboard.Board, error)
}

func (s stubLeaderboard) Rank(ctx context.Context, year *int) (*leaderboard.Board, error) {
	return s.rankFn(ctx, year)
}

type stubRevoker struct {
	jti       string
	expiresAt time.Time
	err       error
}

func (s *stubRevoker) Revoke(_ context.Context, jti string, expiresAt, _ time.Time) error {
	s.jti = jti
	s.expiresAt = expiresAt
	return s.err
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) responses.APIError {
	t.Helper()
	var envelope responses.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error
}

func decodeFlatError(t *testing.T, rec *httptest.ResponseRecorder) responses.FlatError {
	t.Helper()
	var body responses.FlatError
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}
