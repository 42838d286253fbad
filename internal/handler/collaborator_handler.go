package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"boardbuilder/internal/apiutil"
	"boardbuilder/internal/middleware"
	"boardbuilder/internal/model"
	"boardbuilder/internal/repository"
	"boardbuilder/internal/transform"
)

type CollaboratorHandler struct {
	collabs *repository.CollaboratorRepository
	users   repository.UserRepositoryInterface
	boards  *BoardHandler
	logger  *zap.Logger
}

func NewCollaboratorHandler(
	collabs *repository.CollaboratorRepository,
	users repository.UserRepositoryInterface,
	boards *BoardHandler,
	logger *zap.Logger,
) *CollaboratorHandler {
	return &CollaboratorHandler{collabs: collabs, users: users, boards: boards, logger: logger}
}

type ShareRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin editor viewer"`
}

// CollaboratorResponse is one entry of a board's access list.
type CollaboratorResponse struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// Share godoc
// @Summary Grant a user access to a board
// @Tags collaborators
// @Accept json
// @Produce json
// @Param id path string true "Board ID"
// @Param request body ShareRequest true "Grantee email and role"
// @Success 201 {object} CollaboratorResponse
// @Security BearerAuth
// @Router /api/boards/{id}/collaborators [post]
func (h *CollaboratorHandler) Share(c *gin.Context) {
	board, perms, ok := h.boards.loadBoard(c, viewAccess)
	if !ok {
		return
	}
	if !perms.CanShare {
		apiutil.Error(c, apiutil.CodeForbidden, "You cannot share this board", nil)
		return
	}

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.Error(c, apiutil.CodeInvalidJSON, err.Error(), nil)
		return
	}

	grantee, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("share email lookup failed", zap.Error(err))
		apiutil.DBError(c, "Failed to look up user", err)
		return
	}
	if grantee == nil {
		apiutil.Error(c, apiutil.CodeUserNotFound, "No user with that email", nil)
		return
	}
	if grantee.ID == board.OwnerID() {
		apiutil.Error(c, apiutil.CodeInvalidParams, "The owner already has full access", nil)
		return
	}

	if err := h.collabs.Share(c.Request.Context(), board.ID, grantee.ID, req.Role); err != nil {
		h.logger.Error("share failed", zap.Error(err), zap.String("board_id", board.ID.String()))
		apiutil.DBError(c, "Failed to share board", err)
		return
	}

	h.boards.invalidateCache(c)
	apiutil.Success(c, http.StatusCreated, CollaboratorResponse{
		UserID:      grantee.ID.String(),
		Username:    grantee.Username,
		DisplayName: grantee.DisplayName,
		Role:        req.Role,
	}, nil)
}

// Remove godoc
// @Summary Revoke a user's access to a board
// @Tags collaborators
// @Produce json
// @Param id path string true "Board ID"
// @Param user_id path string true "Collaborator user ID"
// @Success 200 {object} object
// @Security BearerAuth
// @Router /api/boards/{id}/collaborators/{user_id} [delete]
func (h *CollaboratorHandler) Remove(c *gin.Context) {
	board, perms, ok := h.boards.loadBoard(c, viewAccess)
	if !ok {
		return
	}
	if !perms.CanShare {
		apiutil.Error(c, apiutil.CodeForbidden, "You cannot manage access to this board", nil)
		return
	}

	granteeID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		apiutil.Error(c, apiutil.CodeInvalidParams, "User ID must be a UUID", nil)
		return
	}

	if err := h.collabs.Remove(c.Request.Context(), board.ID, granteeID); err != nil {
		h.logger.Error("collaborator remove failed", zap.Error(err), zap.String("board_id", board.ID.String()))
		apiutil.DBError(c, "Failed to remove collaborator", err)
		return
	}

	h.boards.invalidateCache(c)
	apiutil.Success(c, http.StatusOK, gin.H{"removed": true}, nil)
}

// List godoc
// @Summary List a board's access grants, owner first
// @Tags collaborators
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {array} CollaboratorResponse
// @Security BearerAuth
// @Router /api/boards/{id}/collaborators [get]
func (h *CollaboratorHandler) List(c *gin.Context) {
	board, _, ok := h.boards.loadBoard(c, viewAccess)
	if !ok {
		return
	}

	collabs, err := h.collabs.ListByBoard(c.Request.Context(), board.ID)
	if err != nil {
		h.logger.Error("collaborator list failed", zap.Error(err), zap.String("board_id", board.ID.String()))
		apiutil.DBError(c, "Failed to list collaborators", err)
		return
	}

	out := make([]CollaboratorResponse, 0, len(collabs)+1)
	if owner, err := h.users.GetByID(c.Request.Context(), board.OwnerID()); err == nil && owner != nil {
		out = append(out, CollaboratorResponse{
			UserID:      owner.ID.String(),
			Username:    owner.Username,
			DisplayName: owner.DisplayName,
			Role:        model.RoleOwner,
		})
	}
	for _, collab := range collabs {
		out = append(out, CollaboratorResponse{
			UserID:      collab.UserID.String(),
			Username:    collab.User.Username,
			DisplayName: collab.User.DisplayName,
			Role:        collab.Role,
		})
	}

	apiutil.Success(c, http.StatusOK, out, nil)
}

// SharedBoards godoc
// @Summary List boards shared with the caller
// @Tags collaborators
// @Produce json
// @Success 200 {array} transform.BoardMeta
// @Security BearerAuth
// @Router /api/shared-boards [get]
func (h *CollaboratorHandler) SharedBoards(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		apiutil.Error(c, apiutil.CodeUnauthorized, "Authentication required", nil)
		return
	}

	boards, err := h.collabs.ListSharedBoards(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("shared board list failed", zap.Error(err))
		apiutil.DBError(c, "Failed to list shared boards", err)
		return
	}

	metas := make([]transform.BoardMeta, len(boards))
	for i := range boards {
		metas[i] = transform.BoardToMeta(&boards[i], h.logger)
	}
	apiutil.Success(c, http.StatusOK, metas, nil)
}
