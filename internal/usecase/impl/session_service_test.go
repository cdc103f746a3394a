package impl

import (
	"context"
	"testing"
	"time"

	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Authorize(t *testing.T) {
	env := newTestEnv()
	account := env.seedAccount("ada@example.edu", "correct horse", entity.RoleStudent, entity.StatusActive)
	other := env.seedAccount("bob@example.edu", "correct horse", entity.RoleStudent, entity.StatusActive)
	service := env.sessionService()
	ctx := context.Background()

	t.Run("live session authorizes and advances activity", func(t *testing.T) {
		session := env.seedSession(account.ID, time.Now().Add(-10*time.Minute))
		before := session.LastActivityAt

		require.NoError(t, service.Authorize(ctx, account.ID, session.ID))

		stored, err := env.sessions.FindByID(ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, stored.LastActivityAt.After(before))
	})

	t.Run("unknown session", func(t *testing.T) {
		err := service.Authorize(ctx, account.ID, uuid.New())
		assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	})

	t.Run("session of a different account", func(t *testing.T) {
		session := env.seedSession(account.ID, time.Now())

		err := service.Authorize(ctx, other.ID, session.ID)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	})

	t.Run("revoked session", func(t *testing.T) {
		session := env.seedSession(account.ID, time.Now())
		_, err := env.sessions.Revoke(ctx, session.ID, time.Now())
		require.NoError(t, err)

		err = service.Authorize(ctx, account.ID, session.ID)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	})

	t.Run("idle past the TTL", func(t *testing.T) {
		// Idle TTL in the test config is 30 minutes.
		session := env.seedSession(account.ID, time.Now().Add(-time.Hour))

		err := service.Authorize(ctx, account.ID, session.ID)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	})

	t.Run("older than the max age", func(t *testing.T) {
		session := env.seedSession(account.ID, time.Now())
		env.sessions.mu.Lock()
		env.sessions.sessions[session.ID].CreatedAt = time.Now().Add(-48 * time.Hour)
		env.sessions.mu.Unlock()

		err := service.Authorize(ctx, account.ID, session.ID)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	})
}

func TestSessionService_Heartbeat_SharesAuthorizeChecks(t *testing.T) {
	env := newTestEnv()
	account := env.seedAccount("ada@example.edu", "correct horse", entity.RoleStudent, entity.StatusActive)
	service := env.sessionService()
	ctx := context.Background()

	live := env.seedSession(account.ID, time.Now().Add(-5*time.Minute))
	before := live.LastActivityAt
	require.NoError(t, service.Heartbeat(ctx, account.ID, live.ID))

	stored, err := env.sessions.FindByID(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastActivityAt.After(before))

	// A revoked session cannot keep itself warm.
	revoked := env.seedSession(account.ID, time.Now())
	_, err = env.sessions.Revoke(ctx, revoked.ID, time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, service.Heartbeat(ctx, account.ID, revoked.ID), domainerrors.ErrUnauthenticated)
}

func TestSessionService_ListSessions(t *testing.T) {
	env := newTestEnv()
	account := env.seedAccount("ada@example.edu", "correct horse", entity.RoleStudent, entity.StatusActive)
	service := env.sessionService()
	ctx := context.Background()

	current := env.seedSession(account.ID, time.Now())
	older := env.seedSession(account.ID, time.Now().Add(-10*time.Minute))
	stale := env.seedSession(account.ID, time.Now().Add(-2*time.Hour))
	revoked := env.seedSession(account.ID, time.Now())
	_, err := env.sessions.Revoke(ctx, revoked.ID, time.Now())
	require.NoError(t, err)

	views, err := service.ListSessions(ctx, account.ID, current.ID)
	require.NoError(t, err)

	// The revoked and idle-expired sessions are not listed.
	require.Len(t, views, 2)
	assert.Equal(t, current.ID, views[0].ID)
	assert.True(t, views[0].IsCurrent)
	assert.Equal(t, older.ID, views[1].ID)
	assert.False(t, views[1].IsCurrent)

	for _, view := range views {
		assert.NotEqual(t, stale.ID, view.ID)
		assert.NotEqual(t, revoked.ID, view.ID)
	}
}

func TestSessionService_RevokeSession(t *testing.T) {
	env := newTestEnv()
	account := env.seedAccount("ada@example.edu", "correct horse", entity.RoleStudent, entity.StatusActive)
	other := env.seedAccount("bob@example.edu", "correct horse", entity.RoleStudent, entity.StatusActive)
	service := env.sessionService()
	ctx := context.Background()

	t.Run("owner revokes own session", func(t *testing.T) {
		session := env.seedSession(account.ID, time.Now())

		require.NoError(t, service.RevokeSession(ctx, account.ID, session.ID, false))

		stored, err := env.sessions.FindByID(ctx, session.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.RevokedAt)
	})

	t.Run("revoking twice is idempotent", func(t *testing.T) {
		session := env.seedSession(account.ID, time.Now())

		require.NoError(t, service.RevokeSession(ctx, account.ID, session.ID, false))
		assert.NoError(t, service.RevokeSession(ctx, account.ID, session.ID, false))
	})

	t.Run("someone else's session is forbidden", func(t *testing.T) {
		session := env.seedSession(account.ID, time.Now())

		err := service.RevokeSession(ctx, other.ID, session.ID, false)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	})

	t.Run("admin bypasses the ownership check", func(t *testing.T) {
		session := env.seedSession(account.ID, time.Now())

		require.NoError(t, service.RevokeSession(ctx, other.ID, session.ID, true))

		stored, err := env.sessions.FindByID(ctx, session.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.RevokedAt)
	})

	t.Run("unknown session", func(t *testing.T) {
		err := service.RevokeSession(ctx, account.ID, uuid.New(), false)
		assert.ErrorIs(t, err, domainerrors.ErrSessionNotFound)
	})
}

func TestSessionService_RevokeAllOtherSessions(t *testing.T) {
	env := newTestEnv()
	account := env.seedAccount("ada@example.edu", "correct horse", entity.RoleStudent, entity.StatusActive)
	service := env.sessionService()
	ctx := context.Background()

	current := env.seedSession(account.ID, time.Now())
	laptop := env.seedSession(account.ID, time.Now())
	phone := env.seedSession(account.ID, time.Now())

	require.NoError(t, service.RevokeAllOtherSessions(ctx, account.ID, current.ID))

	kept, err := env.sessions.FindByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.RevokedAt)

	for _, id := range []uuid.UUID{laptop.ID, phone.ID} {
		revoked, err := env.sessions.FindByID(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, revoked.RevokedAt)
	}
}

func TestSessionService_CleanupInactiveSessions(t *testing.T) {
	env := newTestEnv()
	account := env.seedAccount("ada@example.edu", "correct horse", entity.RoleStudent, entity.StatusActive)
	service := env.sessionService()
	ctx := context.Background()

	// Retention is 7 days plus the idle TTL; anything dead longer stays gone.
	ancient := env.seedSession(account.ID, time.Now().Add(-30*24*time.Hour))
	recentlyRevoked := env.seedSession(account.ID, time.Now())
	_, err := env.sessions.Revoke(ctx, recentlyRevoked.ID, time.Now())
	require.NoError(t, err)
	live := env.seedSession(account.ID, time.Now())

	removed, err := service.CleanupInactiveSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = env.sessions.FindByID(ctx, ancient.ID)
	assert.Error(t, err)

	// Recently dead rows are retained for auditability; live ones untouched.
	_, err = env.sessions.FindByID(ctx, recentlyRevoked.ID)
	assert.NoError(t, err)
	_, err = env.sessions.FindByID(ctx, live.ID)
	assert.NoError(t, err)
}
