package leaderboard

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/internal/users"
	"github.com/rhoodstudio/studio-backend/pkg/db/dbtest"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "leaderboard-test", Output: io.Discard})
}

func TestRankExcludesZeroAndOrdersByCredits(t *testing.T) {
	client := dbtest.New(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, credits := range []int{50, 200, 0, 75} {
		dbtest.SeedUser(t, client, enums.UserRoleDJ, credits, base.Add(time.Duration(i)*time.Hour))
	}

	svc, err := NewService(users.NewRepository(client.DB()), testLogger())
	require.NoError(t, err)

	board, err := svc.Rank(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, ScopeAllTime, board.Scope)
	require.Nil(t, board.Year)
	require.Len(t, board.Entries, 3)

	var credits, ranks []int
	for _, e := range board.Entries {
		credits = append(credits, e.TotalCredits)
		ranks = append(ranks, e.RankPosition)
	}
	require.Equal(t, []int{200, 75, 50}, credits)
	require.Equal(t, []int{1, 2, 3}, ranks)
}

func TestRankTieBreaksOnAccountAge(t *testing.T) {
	client := dbtest.New(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := dbtest.SeedUser(t, client, enums.UserRoleDJ, 100, base.Add(time.Hour))
	older := dbtest.SeedUser(t, client, enums.UserRoleBrand, 100, base)

	svc, err := NewService(users.NewRepository(client.DB()), testLogger())
	require.NoError(t, err)

	year := 2026
	board, err := svc.Rank(context.Background(), &year)
	require.NoError(t, err)
	require.Equal(t, 2026, *board.Year)
	require.Len(t, board.Entries, 2)
	require.Equal(t, older.ID, board.Entries[0].UserID)
	require.Equal(t, enums.UserRoleBrand, board.Entries[0].Role)
	require.Equal(t, newer.ID, board.Entries[1].UserID)
}

func TestRankRejectsYearOutOfRange(t *testing.T) {
	svc, err := NewService(&fakeUsers{}, testLogger())
	require.NoError(t, err)

	for _, y := range []int{1999, 2101} {
		year := y
		_, err := svc.Rank(context.Background(), &year)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "year %d", y)
	}
}

func TestRankCapsAndUsesDisplayName(t *testing.T) {
	djName := "DJ Nova"
	repo := &fakeUsers{listFn: func(limit int) ([]models.User, error) {
		require.Equal(t, MaxEntries, limit)
		return []models.User{{ID: uuid.New(), Email: "nova@rhood.test", DJName: &djName, Role: enums.UserRoleDJ, Credits: 10}}, nil
	}}
	svc, err := NewService(repo, testLogger())
	require.NoError(t, err)

	board, err := svc.Rank(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "DJ Nova", board.Entries[0].DisplayName)
}

func TestRankWrapsStorageErrors(t *testing.T) {
	repo := &fakeUsers{listFn: func(int) ([]models.User, error) { return nil, errors.New("db down") }}
	svc, err := NewService(repo, testLogger())
	require.NoError(t, err)

	_, err = svc.Rank(context.Background(), nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))
}

type fakeUsers struct {
	listFn func(limit int) ([]models.User, error)
}

func (f *fakeUsers) WithTx(*gorm.DB) users.Repository { return f }

func (f *fakeUsers) FindByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByIDs(context.Context, []uuid.UUID) (map[uuid.UUID]models.User, error) {
	return map[uuid.UUID]models.User{}, nil
}

func (f *fakeUsers) LockByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) ListRanked(_ context.Context, limit int) ([]models.User, error) {
	if f.listFn != nil {
		return f.listFn(limit)
	}
	return nil, nil
}
