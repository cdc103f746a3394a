package postgres

import (
	"context"
	"time"

	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/repository"
	"libris/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionRepository implements the domain.SessionRepository interface using GORM.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session record, one per successful login.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	// Update the entity with generated values
	session.ID = sessionM.ID
	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByID retrieves a session record by its unique ID, revoked or not.
func (repo *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sessionM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by id")
	}

	return toSessionDomain(&sessionM), nil
}

// FindByAccountID retrieves all non-revoked sessions for an account,
// most recently active first.
func (repo *sessionRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) ([]*entity.Session, error) {
	var sessionModels []model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("account_id = ? AND revoked_at IS NULL", accountID).
		Order("last_activity_at DESC").
		Find(&sessionModels).Error

	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions by account")
	}

	sessions := make([]*entity.Session, 0, len(sessionModels))
	for i := range sessionModels {
		sessions = append(sessions, toSessionDomain(&sessionModels[i]))
	}

	return sessions, nil
}

// Touch advances lastActivityAt. Last writer wins; no conditional guard is
// needed because the column only moves forward in practice.
func (repo *sessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ?", id).
		Update("last_activity_at", at)

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to touch session")
	}

	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// Revoke sets revokedAt with a single conditional update. The WHERE clause
// covers the not-yet-revoked state, so of two racing revocations exactly one
// observes RowsAffected == 1.
func (repo *sessionRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)

	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke session")
	}

	if result.RowsAffected == 1 {
		return true, nil
	}

	// No row transitioned: distinguish "already revoked" from "no such session".
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check session existence")
	}
	if count == 0 {
		return false, repository.ErrSessionNotFound
	}

	return false, nil
}

// RevokeAllExcept bulk-revokes every other non-revoked session of the account.
func (repo *sessionRepository) RevokeAllExcept(ctx context.Context, accountID, keep uuid.UUID, at time.Time) error {
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("account_id = ? AND id <> ? AND revoked_at IS NULL", accountID, keep).
		Update("revoked_at", at).Error

	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to revoke other sessions")
	}

	return nil
}

// RevokeAllByAccountID revokes every non-revoked session of the account.
func (repo *sessionRepository) RevokeAllByAccountID(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("account_id = ? AND revoked_at IS NULL", accountID).
		Update("revoked_at", at).Error

	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to revoke account sessions")
	}

	return nil
}

// DeleteInactiveBefore removes rows that stopped authorizing before the
// cutoff, either revoked or idle since then.
func (repo *sessionRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("revoked_at < ? OR (revoked_at IS NULL AND last_activity_at < ?)", cutoff, cutoff).
		Delete(&model.SessionModel{})

	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to purge sessions")
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// toSessionDomain converts a GORM SessionModel to a domain Session entity.
func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:        data.ID,
		AccountID: data.AccountID,
		Device: entity.DeviceInfo{
			Browser:     data.Browser,
			OS:          data.OS,
			DeviceClass: data.DeviceClass,
			IPAddress:   data.IPAddress,
			UserAgent:   data.UserAgent,
		},
		CreatedAt:      data.CreatedAt,
		LastActivityAt: data.LastActivityAt,
		RevokedAt:      data.RevokedAt,
	}
}

// fromSessionDomain converts a domain Session entity to a GORM SessionModel.
func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:             data.ID,
		AccountID:      data.AccountID,
		Browser:        data.Device.Browser,
		OS:             data.Device.OS,
		DeviceClass:    data.Device.DeviceClass,
		IPAddress:      data.Device.IPAddress,
		UserAgent:      data.Device.UserAgent,
		LastActivityAt: data.LastActivityAt,
		RevokedAt:      data.RevokedAt,
	}
}
