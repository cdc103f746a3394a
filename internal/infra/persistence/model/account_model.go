// Package model holds the GORM persistence models mirroring the database schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table. PostgreSQL generates UUIDs via gen_random_uuid().
type AccountModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string    `gorm:"type:varchar(255);unique;not null"`
	Name         string    `gorm:"type:varchar(100)"`
	Role         string    `gorm:"type:varchar(20);not null"`
	Department   string    `gorm:"type:varchar(100)"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active'"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Preferences  string    `gorm:"type:jsonb;default:'{}'"`
	AvatarRef    string    `gorm:"type:varchar(255)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time `gorm:"index"`

	Sessions    []SessionModel    `gorm:"foreignKey:AccountID"`
	ResetTokens []ResetTokenModel `gorm:"foreignKey:AccountID"`
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}
