// Package service orchestrates board persistence: slug resolution, the
// tolerant-read/strict-write validation contract, and element sync.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boardbuilder/internal/model"
	"boardbuilder/internal/repository"
	"boardbuilder/internal/schema"
	"boardbuilder/internal/slug"
)

var (
	// ErrTitleOrSlugRequired is returned when a create request supplies
	// neither a slug nor a title to derive one from.
	ErrTitleOrSlugRequired = errors.New("either a slug or a title is required")

	// ErrNoChanges is returned when an update carries no effective diff.
	ErrNoChanges = errors.New("no changes to apply")

	// ErrUserNotFound is returned when a username cannot be resolved.
	ErrUserNotFound = repository.ErrUserNotFound
)

type BoardService struct {
	boards   *repository.BoardRepository
	elements *repository.ElementRepository
	users    *repository.UserRepository
	logger   *zap.Logger
}

func NewBoardService(
	boards *repository.BoardRepository,
	elements *repository.ElementRepository,
	users *repository.UserRepository,
	logger *zap.Logger,
) *BoardService {
	return &BoardService{
		boards:   boards,
		elements: elements,
		users:    users,
		logger:   logger,
	}
}

// CreateBoardInput is the validated create payload. Raw JSON fields go
// through the tolerant readers, never the strict path: a bad grid config on
// create degrades to the default rather than failing the request.
type CreateBoardInput struct {
	Title       string
	Slug        string
	Description string
	Visibility  string
	GridConfig  []byte
	Blocks      []byte
}

func (s *BoardService) Create(ctx context.Context, ownerID uuid.UUID, input CreateBoardInput) (*model.Board, error) {
	base := input.Slug
	if base == "" {
		if input.Title == "" {
			return nil, ErrTitleOrSlugRequired
		}
		base = slug.Generate(input.Title)
	}

	unique, err := slug.GenerateUnique(ctx, s.boards, ownerID, base)
	if err != nil {
		return nil, fmt.Errorf("resolve slug: %w", err)
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = model.VisibilityPrivate
	}

	title := input.Title
	if title == "" {
		title = unique
	}

	board := &model.Board{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       title,
		Slug:        unique,
		Description: input.Description,
		GridConfig:  marshalGridConfig(schema.GridConfigOrDefault(input.GridConfig, s.logger)),
		Blocks:      marshalBlocks(schema.BlocksOrDefault(input.Blocks, s.logger)),
		Visibility:  visibility,
	}

	if err := s.boards.Create(ctx, board); err != nil {
		s.logger.Error("create board failed", zap.Error(err), zap.String("owner_id", ownerID.String()))
		return nil, fmt.Errorf("create board: %w", err)
	}
	return board, nil
}

// Get fetches one board, re-running the tolerant validators on its JSON
// fields so drift in stored rows never reaches callers.
func (s *BoardService) Get(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	board, err := s.boards.GetByID(ctx, id)
	if err != nil || board == nil {
		return board, err
	}
	s.normalize(board)
	return board, nil
}

func (s *BoardService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Board, int64, error) {
	boards, err := s.boards.GetOwned(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	for i := range boards {
		s.normalize(&boards[i])
	}
	return boards, int64(len(boards)), nil
}

// RecentBoardLimit caps the recent-mode board list.
const RecentBoardLimit = 5

func (s *BoardService) ListRecent(ctx context.Context, ownerID uuid.UUID) ([]model.Board, int64, error) {
	total, err := s.boards.CountOwned(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	boards, err := s.boards.GetRecent(ctx, ownerID, RecentBoardLimit)
	if err != nil {
		return nil, 0, err
	}
	for i := range boards {
		s.normalize(&boards[i])
	}
	return boards, total, nil
}

// UpdateBoardInput is a sparse patch; nil pointers mean "leave unchanged".
type UpdateBoardInput struct {
	Title       *string
	Slug        *string
	Description *string
	Visibility  *string
	GridConfig  []byte
	Blocks      []byte
}

// Update applies only the provided fields. A changed slug is re-uniquified
// within the owner's scope; JSON fields are normalized through the tolerant
// readers before persisting.
func (s *BoardService) Update(ctx context.Context, board *model.Board, input UpdateBoardInput) (*model.Board, error) {
	fields := map[string]interface{}{}

	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Slug != nil && *input.Slug != board.Slug {
		unique, err := slug.GenerateUnique(ctx, s.boards, board.OwnerID(), *input.Slug)
		if err != nil {
			return nil, fmt.Errorf("resolve slug: %w", err)
		}
		fields["slug"] = unique
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Visibility != nil {
		fields["visibility"] = *input.Visibility
	}
	if input.GridConfig != nil {
		fields["grid_config"] = string(marshalGridConfig(schema.GridConfigOrDefault(input.GridConfig, s.logger)))
	}
	if input.Blocks != nil {
		fields["blocks"] = string(marshalBlocks(schema.BlocksOrDefault(input.Blocks, s.logger)))
	}

	if len(fields) == 0 {
		return nil, ErrNoChanges
	}

	updated, err := s.boards.UpdateFields(ctx, board.ID, fields)
	if err != nil {
		return nil, err
	}
	s.normalize(updated)
	return updated, nil
}

func (s *BoardService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.boards.Delete(ctx, id)
}

func (s *BoardService) GetByUserIDAndSlug(ctx context.Context, userID uuid.UUID, slugStr string) (*model.Board, error) {
	board, err := s.boards.GetByUserIDAndSlug(ctx, userID, slugStr)
	if err != nil || board == nil {
		return board, err
	}
	s.normalize(board)
	return board, nil
}

// GetByUsernameAndSlug resolves the username to an owner id first, then
// delegates to the id+slug lookup. An unknown username is ErrUserNotFound;
// an unknown slug is a nil board without error.
func (s *BoardService) GetByUsernameAndSlug(ctx context.Context, username, slugStr string) (*model.Board, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.GetByUserIDAndSlug(ctx, user.ID, slugStr)
}

// SyncElements reconciles the normalized element rows with the given block
// list; z-order is wholly determined by array order.
func (s *BoardService) SyncElements(ctx context.Context, boardID uuid.UUID, blocks []schema.Block) error {
	return s.elements.Sync(ctx, boardID, blocks)
}

func (s *BoardService) Elements(ctx context.Context, boardID uuid.UUID) ([]model.BoardElement, error) {
	return s.elements.GetByBoardID(ctx, boardID)
}

// normalize re-runs the tolerant readers over a fetched row's JSON columns.
func (s *BoardService) normalize(board *model.Board) {
	board.GridConfig = marshalGridConfig(schema.GridConfigOrDefault([]byte(board.GridConfig), s.logger))
	board.Blocks = marshalBlocks(schema.BlocksOrDefault([]byte(board.Blocks), s.logger))
}

func marshalGridConfig(g schema.GridConfig) model.JSON {
	raw, _ := json.Marshal(g)
	return model.JSON(raw)
}

func marshalBlocks(blocks []schema.Block) model.JSON {
	raw, _ := json.Marshal(blocks)
	return model.JSON(raw)
}
