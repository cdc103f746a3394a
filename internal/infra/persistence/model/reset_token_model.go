package model

import (
	"time"

	"github.com/google/uuid"
)

// ResetTokenModel mirrors the 'reset_tokens' table. The row ID doubles as the
// opaque token handle mailed to the account owner.
type ResetTokenModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AccountID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (ResetTokenModel) TableName() string {
	return "reset_tokens"
}
