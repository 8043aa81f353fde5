package boosts

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, f fixture) *service {
	t.Helper()
	svc, err := NewService(f.repo, logger.New(logger.Options{ServiceName: "boosts-test", Output: io.Discard}))
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return f.now }
	return impl
}

func TestServiceListForUserReportsLiveness(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(t, f)
	live := f.boost(t, f.now.Add(time.Hour))

	out, err := svc.ListForUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, live.ID, out[0].ID)
	require.True(t, out[0].Live)

	svc.now = func() time.Time { return f.now.Add(2 * time.Hour) }
	out, err = svc.ListForUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.True(t, out[0].IsActive)
	require.False(t, out[0].Live)

	_, err = svc.ListForUser(context.Background(), uuid.Nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestServiceDeactivate(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(t, f)
	live := f.boost(t, f.now.Add(time.Hour))
	ctx := context.Background()

	dto, err := svc.Deactivate(ctx, live.ID)
	require.NoError(t, err)
	require.False(t, dto.IsActive)
	require.False(t, dto.Live)

	_, err = svc.Deactivate(ctx, live.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	_, err = svc.Deactivate(ctx, uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Deactivate(ctx, uuid.Nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestServiceDeactivateExpired(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(t, f)
	f.boost(t, f.now.Add(-time.Second))

	affected, err := svc.DeactivateExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)
}
