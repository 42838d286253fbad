// Package permission computes per-request board capabilities. Permissions
// are derived, never stored: ownership implies full rights, otherwise the
// collaborator role maps to a fixed capability tuple.
package permission

import (
	"github.com/google/uuid"

	"boardbuilder/internal/model"
)

// Permissions is the capability tuple for one user on one board.
type Permissions struct {
	CanEdit   bool   `json:"canEdit"`
	CanShare  bool   `json:"canShare"`
	CanDelete bool   `json:"canDelete"`
	Role      string `json:"role"`
}

// Determine is pure and total: every input yields a defined tuple, there is
// no error path. Ownership short-circuits any collaborator row; absence of
// both ownership and a collaborator row yields a zero-rights viewer.
func Determine(userID uuid.UUID, board *model.Board, collab *model.BoardCollaborator) Permissions {
	if board != nil && userID != uuid.Nil && board.OwnerID() == userID {
		return Permissions{CanEdit: true, CanShare: true, CanDelete: true, Role: model.RoleOwner}
	}

	if collab != nil {
		switch collab.Role {
		case model.RoleAdmin:
			return Permissions{CanEdit: true, CanShare: true, Role: model.RoleAdmin}
		case model.RoleEditor:
			return Permissions{CanEdit: true, Role: model.RoleEditor}
		case model.RoleViewer:
			return Permissions{Role: model.RoleViewer}
		}
	}

	return Permissions{Role: model.RoleViewer}
}
