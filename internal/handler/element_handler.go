package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"boardbuilder/internal/apiutil"
	"boardbuilder/internal/repository"
	"boardbuilder/internal/schema"
	"boardbuilder/internal/service"
	"boardbuilder/internal/transform"
)

// ElementHandler owns the element sync and list endpoints. Access checks
// reuse the board handler's loader so the capability rules live in one place.
type ElementHandler struct {
	service *service.BoardService
	boards  *BoardHandler
	logger  *zap.Logger
}

func NewElementHandler(svc *service.BoardService, boards *BoardHandler, logger *zap.Logger) *ElementHandler {
	return &ElementHandler{service: svc, boards: boards, logger: logger}
}

type SyncElementsRequest struct {
	Blocks []schema.Block `json:"blocks"`
}

// Sync godoc
// @Summary Replace a board's elements with the given block list
// @Tags elements
// @Accept json
// @Produce json
// @Param id path string true "Board ID"
// @Param request body SyncElementsRequest true "Block list; array order becomes z-order"
// @Success 200 {array} transform.BuilderElement
// @Security BearerAuth
// @Router /api/boards/{id}/elements [put]
func (h *ElementHandler) Sync(c *gin.Context) {
	board, _, ok := h.boards.loadBoard(c, editAccess)
	if !ok {
		return
	}

	var req SyncElementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.Error(c, apiutil.CodeInvalidJSON, err.Error(), nil)
		return
	}
	if req.Blocks == nil {
		req.Blocks = []schema.Block{}
	}

	if errs := schema.ValidateBlocks(req.Blocks); len(errs) > 0 {
		apiutil.Error(c, apiutil.CodeValidationError, "Block list is invalid", errs)
		return
	}

	schema.SanitizeBlocks(req.Blocks)

	if err := h.service.SyncElements(c.Request.Context(), board.ID, req.Blocks); err != nil {
		if errors.Is(err, repository.ErrInvalidElementID) {
			apiutil.Error(c, apiutil.CodeValidationError, "Block IDs must be UUIDs", nil)
			return
		}
		if errors.Is(err, repository.ErrElementConflict) {
			apiutil.Error(c, apiutil.CodeConflict, "One or more block IDs belong to another board", nil)
			return
		}
		h.logger.Error("element sync failed", zap.Error(err), zap.String("board_id", board.ID.String()))
		apiutil.DBError(c, "Failed to sync elements", err)
		return
	}

	elements, err := h.service.Elements(c.Request.Context(), board.ID)
	if err != nil {
		h.logger.Error("element fetch failed", zap.Error(err), zap.String("board_id", board.ID.String()))
		apiutil.DBError(c, "Failed to load synced elements", err)
		return
	}

	h.boards.invalidateCache(c)
	apiutil.Success(c, http.StatusOK, transform.ElementsToBuilder(elements), apiutil.Metadata{
		"count": len(elements),
	})
}

// List godoc
// @Summary List a board's elements in z-order
// @Tags elements
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {array} transform.BuilderElement
// @Security BearerAuth
// @Router /api/boards/{id}/elements [get]
func (h *ElementHandler) List(c *gin.Context) {
	board, _, ok := h.boards.loadBoard(c, viewAccess)
	if !ok {
		return
	}

	elements, err := h.service.Elements(c.Request.Context(), board.ID)
	if err != nil {
		h.logger.Error("element fetch failed", zap.Error(err), zap.String("board_id", board.ID.String()))
		apiutil.DBError(c, "Failed to load elements", err)
		return
	}

	apiutil.Success(c, http.StatusOK, transform.ElementsToBuilder(elements), nil)
}
