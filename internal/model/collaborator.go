package model

import (
	"time"

	"github.com/google/uuid"
)

// BoardCollaborator grants a non-owner user a bounded capability set on a board.
type BoardCollaborator struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_collaborators_board_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_collaborators_board_user"`
	Role      string    `gorm:"not null;check:role IN ('admin', 'editor', 'viewer')"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Board Board `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
	User  User  `gorm:"foreignKey:UserID"`
}

// Collaborator roles. Owner is derived, never stored.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// ValidRole reports whether r can be stored on a collaborator row.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}
