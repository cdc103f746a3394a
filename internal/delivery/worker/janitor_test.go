package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"libris/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessionCleaner struct {
	cleanups atomic.Int64
}

func (s *stubSessionCleaner) ListSessions(context.Context, uuid.UUID, uuid.UUID) ([]*usecase.SessionView, error) {
	panic("not used by janitor tests")
}

func (s *stubSessionCleaner) Authorize(context.Context, uuid.UUID, uuid.UUID) error {
	panic("not used by janitor tests")
}

func (s *stubSessionCleaner) Heartbeat(context.Context, uuid.UUID, uuid.UUID) error {
	panic("not used by janitor tests")
}

func (s *stubSessionCleaner) RevokeSession(context.Context, uuid.UUID, uuid.UUID, bool) error {
	panic("not used by janitor tests")
}

func (s *stubSessionCleaner) RevokeAllOtherSessions(context.Context, uuid.UUID, uuid.UUID) error {
	panic("not used by janitor tests")
}

func (s *stubSessionCleaner) CleanupInactiveSessions(context.Context) (int64, error) {
	s.cleanups.Add(1)

	return 0, nil
}

type stubResetCleaner struct {
	cleanups atomic.Int64
}

func (s *stubResetCleaner) RequestReset(context.Context, string) error {
	panic("not used by janitor tests")
}

func (s *stubResetCleaner) ConfirmReset(context.Context, uuid.UUID, string) error {
	panic("not used by janitor tests")
}

func (s *stubResetCleaner) CleanupExpiredTokens(context.Context) (int64, error) {
	s.cleanups.Add(1)

	return 0, nil
}

func newTestJanitor(interval time.Duration) (*janitor, *stubSessionCleaner, *stubResetCleaner) {
	sessions := &stubSessionCleaner{}
	resets := &stubResetCleaner{}
	j := &janitor{
		sessionUC: sessions,
		resetUC:   resets,
		interval:  interval,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}

	return j, sessions, resets
}

func TestJanitor_SweepsUntilStopped(t *testing.T) {
	j, sessions, resets := newTestJanitor(time.Millisecond)

	served := make(chan error, 1)
	go func() { served <- j.Serve(context.Background()) }()

	require.Eventually(t, func() bool {
		return sessions.cleanups.Load() > 0 && resets.cleanups.Load() > 0
	}, time.Second, time.Millisecond)

	require.NoError(t, j.stop(context.Background()))
	// Stop must be idempotent; fx may tear down while the run context dies.
	require.NoError(t, j.stop(context.Background()))

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after stop")
	}
}

func TestJanitor_StopsOnContextCancel(t *testing.T) {
	j, _, _ := newTestJanitor(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- j.Serve(ctx) }()

	cancel()

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}
