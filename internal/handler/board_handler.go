package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"boardbuilder/internal/apiutil"
	"boardbuilder/internal/cache"
	"boardbuilder/internal/middleware"
	"boardbuilder/internal/model"
	"boardbuilder/internal/permission"
	"boardbuilder/internal/repository"
	"boardbuilder/internal/schema"
	"boardbuilder/internal/service"
	"boardbuilder/internal/slug"
	"boardbuilder/internal/transform"
)

type BoardHandler struct {
	service     *service.BoardService
	collabs     *repository.CollaboratorRepository
	redis       *redis.Client
	cachePrefix string
	logger      *zap.Logger
}

func NewBoardHandler(
	svc *service.BoardService,
	collabs *repository.CollaboratorRepository,
	redisClient *redis.Client,
	cachePrefix string,
	logger *zap.Logger,
) *BoardHandler {
	return &BoardHandler{
		service:     svc,
		collabs:     collabs,
		redis:       redisClient,
		cachePrefix: cachePrefix,
		logger:      logger,
	}
}

type CreateBoardRequest struct {
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Visibility  string          `json:"visibility"`
	GridConfig  json.RawMessage `json:"gridConfig"`
	Blocks      json.RawMessage `json:"blocks"`
}

type UpdateBoardRequest struct {
	Title       *string         `json:"title"`
	Slug        *string         `json:"slug"`
	Description *string         `json:"description"`
	Visibility  *string         `json:"visibility"`
	GridConfig  json.RawMessage `json:"gridConfig"`
	Blocks      json.RawMessage `json:"blocks"`
}

// BoardResponse pairs the board meta with the caller's capabilities so the
// builder UI never has to re-derive them.
type BoardResponse struct {
	Board       transform.BoardMeta        `json:"board"`
	Permissions permission.Permissions     `json:"permissions"`
	Elements    []transform.BuilderElement `json:"elements,omitempty"`
}

// Create godoc
// @Summary Create a board
// @Tags boards
// @Accept json
// @Produce json
// @Param request body CreateBoardRequest true "Board payload"
// @Success 201 {object} BoardResponse
// @Security BearerAuth
// @Router /api/boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		apiutil.Error(c, apiutil.CodeUnauthorized, "Authentication required", nil)
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.Error(c, apiutil.CodeInvalidJSON, err.Error(), nil)
		return
	}

	if errs := validateBoardWrite(optStr(req.Title), optStr(req.Slug), optStr(req.Description), optStr(req.Visibility)); len(errs) > 0 {
		apiutil.Error(c, apiutil.CodeValidationError, "Board payload is invalid", errs)
		return
	}

	board, err := h.service.Create(c.Request.Context(), userID, service.CreateBoardInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Visibility:  req.Visibility,
		GridConfig:  req.GridConfig,
		Blocks:      req.Blocks,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleOrSlugRequired):
			apiutil.Error(c, apiutil.CodeInvalidParams, "Either a title or a slug is required", nil)
		case errors.Is(err, slug.ErrInvalidBaseSlug):
			apiutil.Error(c, apiutil.CodeValidationError, "Slug must be 3-50 characters of [a-z0-9-]", nil)
		case errors.Is(err, slug.ErrSlugExhausted):
			apiutil.Error(c, apiutil.CodeConflict, "Could not find a free slug for this board", nil)
		default:
			h.logger.Error("board create failed", zap.Error(err))
			apiutil.DBError(c, "Failed to create board", err)
		}
		return
	}

	h.invalidateCache(c)
	apiutil.Success(c, http.StatusCreated, BoardResponse{
		Board:       transform.BoardToMeta(board, h.logger),
		Permissions: permission.Determine(userID, board, nil),
	}, nil)
}

// List godoc
// @Summary List the caller's boards
// @Tags boards
// @Produce json
// @Param recent query bool false "Return only the five most recently updated boards"
// @Success 200 {array} transform.BoardMeta
// @Security BearerAuth
// @Router /api/boards [get]
func (h *BoardHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		apiutil.Error(c, apiutil.CodeUnauthorized, "Authentication required", nil)
		return
	}

	var (
		boards []model.Board
		total  int64
		err    error
	)
	if c.Query("recent") == "true" {
		boards, total, err = h.service.ListRecent(c.Request.Context(), userID)
	} else {
		boards, total, err = h.service.ListByOwner(c.Request.Context(), userID)
	}
	if err != nil {
		h.logger.Error("board list failed", zap.Error(err))
		apiutil.DBError(c, "Failed to list boards", err)
		return
	}

	metas := make([]transform.BoardMeta, len(boards))
	for i := range boards {
		metas[i] = transform.BoardToMeta(&boards[i], h.logger)
	}

	apiutil.Success(c, http.StatusOK, gin.H{
		"boards":      metas,
		"totalBoards": total,
	}, apiutil.Metadata{
		"fetchedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetByID godoc
// @Summary Fetch one board
// @Tags boards
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {object} BoardResponse
// @Security BearerAuth
// @Router /api/boards/{id} [get]
func (h *BoardHandler) GetByID(c *gin.Context) {
	board, perms, ok := h.loadBoard(c, viewAccess)
	if !ok {
		return
	}

	elements, err := h.service.Elements(c.Request.Context(), board.ID)
	if err != nil {
		h.logger.Error("element fetch failed", zap.Error(err), zap.String("board_id", board.ID.String()))
		apiutil.DBError(c, "Failed to load board elements", err)
		return
	}

	apiutil.Success(c, http.StatusOK, BoardResponse{
		Board:       transform.BoardToMeta(board, h.logger),
		Permissions: perms,
		Elements:    transform.ElementsToBuilder(elements),
	}, nil)
}

// Update godoc
// @Summary Update board fields
// @Tags boards
// @Accept json
// @Produce json
// @Param id path string true "Board ID"
// @Param request body UpdateBoardRequest true "Sparse board patch"
// @Success 200 {object} BoardResponse
// @Security BearerAuth
// @Router /api/boards/{id} [put]
func (h *BoardHandler) Update(c *gin.Context) {
	board, perms, ok := h.loadBoard(c, editAccess)
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.Error(c, apiutil.CodeInvalidJSON, err.Error(), nil)
		return
	}

	if errs := validateBoardWrite(req.Title, req.Slug, req.Description, req.Visibility); len(errs) > 0 {
		apiutil.Error(c, apiutil.CodeValidationError, "Board payload is invalid", errs)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), board, service.UpdateBoardInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Visibility:  req.Visibility,
		GridConfig:  req.GridConfig,
		Blocks:      req.Blocks,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoChanges):
			apiutil.Error(c, apiutil.CodeNoChanges, "No changes to apply", nil)
		case errors.Is(err, repository.ErrBoardNotFound):
			apiutil.Error(c, apiutil.CodeNotFound, "Board not found", nil)
		case errors.Is(err, slug.ErrInvalidBaseSlug):
			apiutil.Error(c, apiutil.CodeValidationError, "Slug must be 3-50 characters of [a-z0-9-]", nil)
		case errors.Is(err, slug.ErrSlugExhausted):
			apiutil.Error(c, apiutil.CodeConflict, "Could not find a free slug for this board", nil)
		default:
			h.logger.Error("board update failed", zap.Error(err), zap.String("board_id", board.ID.String()))
			apiutil.DBError(c, "Failed to update board", err)
		}
		return
	}

	h.invalidateCache(c)
	apiutil.Success(c, http.StatusOK, BoardResponse{
		Board:       transform.BoardToMeta(updated, h.logger),
		Permissions: perms,
	}, nil)
}

// Delete godoc
// @Summary Delete a board
// @Tags boards
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {object} object
// @Security BearerAuth
// @Router /api/boards/{id} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	board, _, ok := h.loadBoard(c, deleteAccess)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), board.ID); err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			apiutil.Error(c, apiutil.CodeNotFound, "Board not found", nil)
			return
		}
		h.logger.Error("board delete failed", zap.Error(err), zap.String("board_id", board.ID.String()))
		apiutil.DBError(c, "Failed to delete board", err)
		return
	}

	h.invalidateCache(c)
	apiutil.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

// GetBySlug godoc
// @Summary Fetch a board by owner username and slug
// @Tags boards
// @Produce json
// @Param username path string true "Owner username"
// @Param slug path string true "Board slug"
// @Success 200 {object} BoardResponse
// @Router /u/{username}/{slug} [get]
func (h *BoardHandler) GetBySlug(c *gin.Context) {
	username := c.Param("username")
	slugStr := c.Param("slug")

	board, err := h.service.GetByUsernameAndSlug(c.Request.Context(), username, slugStr)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apiutil.Error(c, apiutil.CodeUserNotFound, "User not found", nil)
			return
		}
		h.logger.Error("board slug lookup failed", zap.Error(err), zap.String("username", username))
		apiutil.DBError(c, "Failed to look up board", err)
		return
	}
	if board == nil {
		apiutil.Error(c, apiutil.CodeNotFound, "Board not found", nil)
		return
	}

	// No session means anonymous: userID stays uuid.Nil and the board is
	// visible only when public.
	userID, _ := middleware.UserID(c)
	perms, collab, err := h.permissionsFor(c, userID, board)
	if err != nil {
		apiutil.DBError(c, "Failed to resolve permissions", err)
		return
	}
	if board.Visibility != model.VisibilityPublic && !hasViewAccess(userID, board, collab) {
		// A hidden board looks identical to a missing one.
		apiutil.Error(c, apiutil.CodeNotFound, "Board not found", nil)
		return
	}

	elements, err := h.service.Elements(c.Request.Context(), board.ID)
	if err != nil {
		h.logger.Error("element fetch failed", zap.Error(err), zap.String("board_id", board.ID.String()))
		apiutil.DBError(c, "Failed to load board elements", err)
		return
	}

	apiutil.Success(c, http.StatusOK, BoardResponse{
		Board:       transform.BoardToMeta(board, h.logger),
		Permissions: perms,
		Elements:    transform.ElementsToBuilder(elements),
	}, nil)
}

type accessLevel int

const (
	viewAccess accessLevel = iota
	editAccess
	deleteAccess
)

// loadBoard parses the :id param, fetches the board, and enforces the given
// access level. On failure it writes the error envelope and returns ok=false.
func (h *BoardHandler) loadBoard(c *gin.Context, level accessLevel) (*model.Board, permission.Permissions, bool) {
	userID, authed := middleware.UserID(c)
	if !authed {
		apiutil.Error(c, apiutil.CodeUnauthorized, "Authentication required", nil)
		return nil, permission.Permissions{}, false
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apiutil.Error(c, apiutil.CodeInvalidParams, "Board ID must be a UUID", nil)
		return nil, permission.Permissions{}, false
	}

	board, err := h.service.Get(c.Request.Context(), boardID)
	if err != nil {
		h.logger.Error("board fetch failed", zap.Error(err), zap.String("board_id", boardID.String()))
		apiutil.DBError(c, "Failed to load board", err)
		return nil, permission.Permissions{}, false
	}
	if board == nil {
		apiutil.Error(c, apiutil.CodeNotFound, "Board not found", nil)
		return nil, permission.Permissions{}, false
	}

	perms, collab, err := h.permissionsFor(c, userID, board)
	if err != nil {
		apiutil.DBError(c, "Failed to resolve permissions", err)
		return nil, permission.Permissions{}, false
	}

	allowed := false
	switch level {
	case viewAccess:
		allowed = board.Visibility == model.VisibilityPublic || hasViewAccess(userID, board, collab)
	case editAccess:
		allowed = perms.CanEdit
	case deleteAccess:
		allowed = perms.CanDelete
	}
	if !allowed {
		apiutil.Error(c, apiutil.CodeForbidden, "You do not have access to this board", nil)
		return nil, permission.Permissions{}, false
	}
	return board, perms, true
}

func (h *BoardHandler) permissionsFor(c *gin.Context, userID uuid.UUID, board *model.Board) (permission.Permissions, *model.BoardCollaborator, error) {
	var collab *model.BoardCollaborator
	if userID != uuid.Nil && board.OwnerID() != userID {
		var err error
		collab, err = h.collabs.GetForUser(c.Request.Context(), board.ID, userID)
		if err != nil {
			h.logger.Error("collaborator lookup failed", zap.Error(err), zap.String("board_id", board.ID.String()))
			return permission.Permissions{}, nil, err
		}
	}
	return permission.Determine(userID, board, collab), collab, nil
}

// hasViewAccess reports whether the user can see a non-public board: the
// owner and any collaborator grant qualify, including the zero-capability
// viewer role. An absent grant does not.
func hasViewAccess(userID uuid.UUID, board *model.Board, collab *model.BoardCollaborator) bool {
	if userID != uuid.Nil && board.OwnerID() == userID {
		return true
	}
	return collab != nil
}

func validateBoardWrite(title, slug, description, visibility *string) []schema.FieldError {
	return schema.ValidateBoardFields(schema.BoardFields{
		Title:       title,
		Slug:        slug,
		Description: description,
		Visibility:  visibility,
	})
}

func (h *BoardHandler) invalidateCache(c *gin.Context) {
	if err := cache.Invalidate(c.Request.Context(), h.redis, h.cachePrefix); err != nil {
		h.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
