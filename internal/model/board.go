package model

import (
	"time"

	"github.com/google/uuid"
)

// Board visibility values.
const (
	VisibilityPrivate   = "private"
	VisibilityPublic    = "public"
	VisibilityShared    = "shared"
	VisibilityWorkspace = "workspace"
)

// ValidVisibility reports whether v is one of the known visibility values.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPrivate, VisibilityPublic, VisibilityShared, VisibilityWorkspace:
		return true
	}
	return false
}

type Board struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_boards_user_slug"`
	Title       string    `gorm:"not null"`
	Slug        string    `gorm:"not null;uniqueIndex:idx_boards_user_slug"`
	Description string
	GridConfig  JSON   `gorm:"type:jsonb"`
	Blocks      JSON   `gorm:"type:jsonb"`
	Visibility  string `gorm:"not null;default:'private';check:visibility IN ('private', 'public', 'shared', 'workspace')"`
	TemplateID  *uuid.UUID `gorm:"type:uuid"`

	// Deprecated owner_id alias kept for rows written before the user_id
	// rename; user_id wins when both are present.
	LegacyOwnerID *uuid.UUID `gorm:"column:owner_id;type:uuid"`

	PasswordHash *string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Owner User `gorm:"foreignKey:UserID"`
}

// OwnerID resolves the owning user, preferring the canonical user_id column
// over the deprecated owner_id alias.
func (b *Board) OwnerID() uuid.UUID {
	if b.UserID != uuid.Nil {
		return b.UserID
	}
	if b.LegacyOwnerID != nil {
		return *b.LegacyOwnerID
	}
	return uuid.Nil
}
