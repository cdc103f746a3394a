package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"libris/config"
	"libris/internal/domain/entity"
	"libris/internal/usecase"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires the services to the in-memory fakes so tests can reach both
// the usecase surface and the underlying stores.
type testEnv struct {
	accounts *fakeAccountRepo
	sessions *fakeSessionRepo
	resets   *fakeResetTokenRepo
	tx       *fakeTxManager
	hasher   *fakeHasher
	tokens   *fakeTokenService
	mailer   *fakeMailer
	cfg      *config.Config
}

func newTestEnv() *testEnv {
	accounts := newFakeAccountRepo()
	sessions := newFakeSessionRepo()
	resets := newFakeResetTokenRepo()

	return &testEnv{
		accounts: accounts,
		sessions: sessions,
		resets:   resets,
		tx: &fakeTxManager{factory: &fakeRepoFactory{
			accounts: accounts,
			sessions: sessions,
			resets:   resets,
		}},
		hasher: &fakeHasher{},
		tokens: &fakeTokenService{},
		mailer: &fakeMailer{},
		cfg: &config.Config{
			Auth: &config.AuthConfig{
				BcryptCost:     4,
				AccessTokenTTL: time.Hour,
				SessionIdleTTL: 30 * time.Minute,
				SessionMaxAge:  24 * time.Hour,
				ResetTokenTTL:  time.Hour,
			},
			Janitor: &config.JanitorConfig{
				Interval:  time.Hour,
				RetainFor: 7 * 24 * time.Hour,
			},
		},
	}
}

func (e *testEnv) accountService() usecase.AccountUsecase {
	return NewAccountService(AccountServiceParams{
		TxManager:    e.tx,
		Hasher:       e.hasher,
		TokenService: e.tokens,
		Config:       e.cfg,
		Logger:       newDiscardLogger(),
	})
}

func (e *testEnv) sessionService() usecase.SessionUsecase {
	return NewSessionService(SessionServiceParams{
		TxManager: e.tx,
		Config:    e.cfg,
		Logger:    newDiscardLogger(),
	})
}

func (e *testEnv) resetService() usecase.ResetUsecase {
	return NewResetService(ResetServiceParams{
		TxManager: e.tx,
		Hasher:    e.hasher,
		Mailer:    e.mailer,
		Config:    e.cfg,
		Logger:    newDiscardLogger(),
	})
}

func (e *testEnv) seedAccount(email, password string, role entity.Role, status entity.AccountStatus) *entity.Account {
	account := &entity.Account{
		Email:        email,
		Name:         "Test Account",
		Role:         role,
		Status:       status,
		PasswordHash: "hashed:" + password,
	}
	if err := e.accounts.Create(context.Background(), account); err != nil {
		panic(err)
	}

	return account
}

func (e *testEnv) seedSession(accountID uuid.UUID, lastActivity time.Time) *entity.Session {
	session := &entity.Session{
		AccountID:      accountID,
		Device:         entity.NewDeviceInfo("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0", "203.0.113.7"),
		LastActivityAt: lastActivity,
	}
	if err := e.sessions.Create(context.Background(), session); err != nil {
		panic(err)
	}

	return session
}
