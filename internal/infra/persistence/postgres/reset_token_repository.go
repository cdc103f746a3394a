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

// resetTokenRepository implements the domain.ResetTokenRepository interface using GORM.
type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository is the constructor for resetTokenRepository.
func NewResetTokenRepository(db *gorm.DB) repository.ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Create persists a new reset token.
func (repo *resetTokenRepository) Create(ctx context.Context, token *entity.ResetToken) error {
	tokenM := fromResetTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create reset token")
	}

	// Update the entity with generated values
	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindByID retrieves a reset token regardless of its consumption state.
func (repo *resetTokenRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ResetToken, error) {
	var tokenM model.ResetTokenModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&tokenM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrResetTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find reset token by id")
	}

	return toResetTokenDomain(&tokenM), nil
}

// Consume sets consumedAt with a single conditional update covering expiry and
// prior consumption, so of two racing resets exactly one succeeds.
func (repo *resetTokenRepository) Consume(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.ResetTokenModel{}).
		Where("id = ? AND consumed_at IS NULL AND expires_at > ?", id, at).
		Update("consumed_at", at)

	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to consume reset token")
	}

	if result.RowsAffected == 1 {
		return true, nil
	}

	// No row transitioned: distinguish "spent or expired" from "no such token".
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.ResetTokenModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check reset token existence")
	}
	if count == 0 {
		return false, repository.ErrResetTokenNotFound
	}

	return false, nil
}

// DeleteByAccountID removes all reset tokens for an account.
func (repo *resetTokenRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&model.ResetTokenModel{}).Error

	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete account reset tokens")
	}

	return nil
}

// DeleteExpiredBefore removes consumed or expired tokens older than the cutoff.
func (repo *resetTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("consumed_at < ? OR expires_at < ?", cutoff, cutoff).
		Delete(&model.ResetTokenModel{})

	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to purge reset tokens")
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// toResetTokenDomain converts a GORM ResetTokenModel to a domain ResetToken entity.
func toResetTokenDomain(data *model.ResetTokenModel) *entity.ResetToken {
	if data == nil {
		return nil
	}

	return &entity.ResetToken{
		ID:         data.ID,
		AccountID:  data.AccountID,
		ExpiresAt:  data.ExpiresAt,
		ConsumedAt: data.ConsumedAt,
		CreatedAt:  data.CreatedAt,
	}
}

// fromResetTokenDomain converts a domain ResetToken entity to a GORM ResetTokenModel.
func fromResetTokenDomain(data *entity.ResetToken) *model.ResetTokenModel {
	if data == nil {
		return nil
	}

	return &model.ResetTokenModel{
		ID:         data.ID,
		AccountID:  data.AccountID,
		ExpiresAt:  data.ExpiresAt,
		ConsumedAt: data.ConsumedAt,
	}
}
