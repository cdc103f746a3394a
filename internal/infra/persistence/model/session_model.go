package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel mirrors the 'sessions' table. One row per login instance; the
// row survives revocation so listings can still show recently ended sessions.
type SessionModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AccountID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Browser        string    `gorm:"type:varchar(50)"`
	OS             string    `gorm:"type:varchar(50)"`
	DeviceClass    string    `gorm:"type:varchar(20)"`
	IPAddress      string    `gorm:"type:varchar(45)"`
	UserAgent      string    `gorm:"type:text"`
	CreatedAt      time.Time
	LastActivityAt time.Time  `gorm:"not null;index"`
	RevokedAt      *time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}
