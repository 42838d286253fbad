package repository

import (
	"context"
	"errors"

	"boardbuilder/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Return nil, nil to indicate that the board was not found
		}
		return nil, err
	}
	return &board, nil
}

func (r *BoardRepository) GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("updated_at DESC").Find(&boards).Error
	return boards, err
}

// GetRecent returns the owner's most recently updated boards, capped at limit.
func (r *BoardRepository) GetRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) CountOwned(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Board{}).Where("user_id = ?", ownerID).Count(&count).Error
	return count, err
}

func (r *BoardRepository) GetByUserIDAndSlug(ctx context.Context, userID uuid.UUID, slug string) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).Where("user_id = ? AND slug = ?", userID, slug).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// SlugExists satisfies slug.ExistenceChecker.
func (r *BoardRepository) SlugExists(ctx context.Context, userID uuid.UUID, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Board{}).
		Where("user_id = ? AND slug = ?", userID, slug).
		Count(&count).Error
	return count > 0, err
}

// UpdateFields applies a sparse update and returns the refreshed row.
func (r *BoardRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Board, error) {
	result := r.db.WithContext(ctx).Model(&model.Board{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrBoardNotFound
	}

	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// Delete removes the board row; elements cascade at the storage layer.
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Board{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}
