package impl

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/repository"
	"libris/internal/domain/service"

	"github.com/google/uuid"
)

// In-memory repository fakes. They honor the same contracts as the GORM
// implementations, including the conditional-update semantics of Revoke and
// Consume, so the services can be tested without a database.

type fakeTxManager struct {
	factory *fakeRepoFactory
	execErr error
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	if m.execErr != nil {
		return m.execErr
	}

	return fn(m.factory)
}

type fakeRepoFactory struct {
	accounts *fakeAccountRepo
	sessions *fakeSessionRepo
	resets   *fakeResetTokenRepo
}

func (f *fakeRepoFactory) AccountRepo() repository.AccountRepository {
	return f.accounts
}

func (f *fakeRepoFactory) SessionRepo() repository.SessionRepository {
	return f.sessions
}

func (f *fakeRepoFactory) ResetTokenRepo() repository.ResetTokenRepository {
	return f.resets
}

// --- accounts ---

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*entity.Account
	deleted  map[uuid.UUID]bool
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: make(map[uuid.UUID]*entity.Account),
		deleted:  make(map[uuid.UUID]bool),
	}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.accounts {
		if !r.deleted[id] && existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}

	account.ID = uuid.New()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	clone := *account
	r.accounts[account.ID] = &clone

	return nil
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok || r.deleted[id] {
		return nil, repository.ErrAccountNotFound
	}
	clone := *account

	return &clone, nil
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.ToLower(email)
	for id, account := range r.accounts {
		if !r.deleted[id] && account.Email == email {
			clone := *account

			return &clone, nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepo) Update(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; !ok || r.deleted[account.ID] {
		return repository.ErrAccountNotFound
	}
	for id, existing := range r.accounts {
		if id != account.ID && !r.deleted[id] && existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}
	clone := *account
	clone.UpdatedAt = time.Now()
	r.accounts[account.ID] = &clone

	return nil
}

func (r *fakeAccountRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok || r.deleted[id] {
		return repository.ErrAccountNotFound
	}
	account.PasswordHash = hash
	account.UpdatedAt = time.Now()

	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok || r.deleted[id] {
		return repository.ErrAccountNotFound
	}
	r.deleted[id] = true

	return nil
}

// --- sessions ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	clone := *session
	r.sessions[session.ID] = &clone

	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	clone := *session

	return &clone, nil
}

func (r *fakeSessionRepo) FindByAccountID(_ context.Context, accountID uuid.UUID) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Session
	for _, session := range r.sessions {
		if session.AccountID == accountID && session.RevokedAt == nil {
			clone := *session
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastActivityAt.After(result[j].LastActivityAt)
	})

	return result, nil
}

func (r *fakeSessionRepo) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	session.LastActivityAt = at

	return nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return false, repository.ErrSessionNotFound
	}
	if session.RevokedAt != nil {
		return false, nil
	}
	session.RevokedAt = &at

	return true, nil
}

func (r *fakeSessionRepo) RevokeAllExcept(_ context.Context, accountID, keep uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.AccountID == accountID && session.ID != keep && session.RevokedAt == nil {
			revokedAt := at
			session.RevokedAt = &revokedAt
		}
	}

	return nil
}

func (r *fakeSessionRepo) RevokeAllByAccountID(_ context.Context, accountID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.AccountID == accountID && session.RevokedAt == nil {
			revokedAt := at
			session.RevokedAt = &revokedAt
		}
	}

	return nil
}

func (r *fakeSessionRepo) DeleteInactiveBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, session := range r.sessions {
		dead := (session.RevokedAt != nil && session.RevokedAt.Before(cutoff)) ||
			(session.RevokedAt == nil && session.LastActivityAt.Before(cutoff))
		if dead {
			delete(r.sessions, id)
			removed++
		}
	}

	return removed, nil
}

// --- reset tokens ---

type fakeResetTokenRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*entity.ResetToken

	// beforeConsume, when set, runs at the top of Consume. Tests use it to
	// squeeze a competing operation between a caller's read and its consume.
	beforeConsume func()
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{tokens: make(map[uuid.UUID]*entity.ResetToken)}
}

func (r *fakeResetTokenRepo) Create(_ context.Context, token *entity.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.ID] = &clone

	return nil
}

func (r *fakeResetTokenRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[id]
	if !ok {
		return nil, repository.ErrResetTokenNotFound
	}
	clone := *token

	return &clone, nil
}

func (r *fakeResetTokenRepo) Consume(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	if hook := r.beforeConsume; hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[id]
	if !ok {
		return false, repository.ErrResetTokenNotFound
	}
	if token.ConsumedAt != nil || !at.Before(token.ExpiresAt) {
		return false, nil
	}
	token.ConsumedAt = &at

	return true, nil
}

func (r *fakeResetTokenRepo) DeleteByAccountID(_ context.Context, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, token := range r.tokens {
		if token.AccountID == accountID {
			delete(r.tokens, id)
		}
	}

	return nil
}

func (r *fakeResetTokenRepo) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, token := range r.tokens {
		dead := (token.ConsumedAt != nil && token.ConsumedAt.Before(cutoff)) ||
			token.ExpiresAt.Before(cutoff)
		if dead {
			delete(r.tokens, id)
			removed++
		}
	}

	return removed, nil
}

// --- domain service fakes ---

// fakeHasher is a deterministic stand-in for bcrypt. Hashes are reversible on
// purpose so tests can assert what got stored.
type fakeHasher struct {
	mu          sync.Mutex
	checkCalls  int
	strengthErr error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *fakeHasher) Check(password, hash string) bool {
	h.mu.Lock()
	h.checkCalls++
	h.mu.Unlock()

	return hash == "hashed:"+password
}

func (h *fakeHasher) ValidateStrength(password string) error {
	if h.strengthErr != nil {
		return h.strengthErr
	}
	if len(password) < 6 {
		return domainerrors.ErrWeakPassword
	}

	return nil
}

func (h *fakeHasher) checks() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.checkCalls
}

type fakeTokenService struct {
	mintErr error
}

func (s *fakeTokenService) Mint(accountID uuid.UUID, role entity.Role, sessionID uuid.UUID) (string, error) {
	if s.mintErr != nil {
		return "", s.mintErr
	}

	return fmt.Sprintf("token:%s:%s:%s", accountID, role, sessionID), nil
}

func (s *fakeTokenService) Validate(string) (*service.Claims, error) {
	panic("not used by usecase tests")
}

type sentMail struct {
	email     string
	tokenID   uuid.UUID
	expiresAt time.Time
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, email string, tokenID uuid.UUID, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{email: email, tokenID: tokenID, expiresAt: expiresAt})

	return nil
}

func (m *fakeMailer) sentMails() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]sentMail(nil), m.sent...)
}
