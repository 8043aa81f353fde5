package leaderboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/internal/users"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
)

const (
	// MaxEntries caps the ranked list.
	MaxEntries = 100

	MinYear = 2000
	MaxYear = 2100

	ScopeAllTime = "all_time"
)

// Entry is one ranked row.
type Entry struct {
	RankPosition int            `json:"rank_position"`
	UserID       uuid.UUID      `json:"user_id"`
	DisplayName  string         `json:"display_name"`
	Role         enums.UserRole `json:"role"`
	TotalCredits int            `json:"total_credits"`
}

// Board is the leaderboard response. Year echoes the requested year; the
// ranking itself is always computed over current balances.
type Board struct {
	Scope   string  `json:"scope"`
	Year    *int    `json:"year,omitempty"`
	Entries []Entry `json:"entries"`
}

type Service interface {
	Rank(ctx context.Context, year *int) (*Board, error)
}

type service struct {
	users users.Repository
	logg  *logger.Logger
}

func NewService(repo users.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{users: repo, logg: logg}, nil
}

func (s *service) Rank(ctx context.Context, year *int) (*Board, error) {
	if year != nil && (*year < MinYear || *year > MaxYear) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("year must be between %d and %d", MinYear, MaxYear))
	}

	rows, err := s.users.ListRanked(ctx, MaxEntries)
	if err != nil {
		s.logg.Error(ctx, "leaderboard query failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rank users")
	}

	entries := make([]Entry, 0, len(rows))
	for i, u := range rows {
		entries = append(entries, Entry{
			RankPosition: i + 1,
			UserID:       u.ID,
			DisplayName:  users.DisplayName(u),
			Role:         u.Role,
			TotalCredits: u.Credits,
		})
	}
	return &Board{Scope: ScopeAllTime, Year: year, Entries: entries}, nil
}
