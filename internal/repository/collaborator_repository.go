package repository

import (
	"context"
	"errors"

	"boardbuilder/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollaboratorRepository struct {
	db *gorm.DB
}

func NewCollaboratorRepository(db *gorm.DB) *CollaboratorRepository {
	return &CollaboratorRepository{db: db}
}

// Share grants userID the given role on boardID, updating the role if a
// grant already exists. The check-then-write pair runs in a transaction to
// avoid racing duplicate grants.
func (r *CollaboratorRepository) Share(ctx context.Context, boardID, userID uuid.UUID, role string) error {
	collab := model.BoardCollaborator{
		BoardID: boardID,
		UserID:  userID,
		Role:    role,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.BoardCollaborator
		err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).First(&existing).Error

		if err == nil {
			existing.Role = role
			return tx.Save(&existing).Error
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&collab).Error
	})
}

func (r *CollaboratorRepository) Remove(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&model.BoardCollaborator{}).Error
}

func (r *CollaboratorRepository) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]model.BoardCollaborator, error) {
	var collabs []model.BoardCollaborator
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Find(&collabs).Error
	return collabs, err
}

// GetForUser returns the collaborator row for userID on boardID, or nil when
// the user has no grant.
func (r *CollaboratorRepository) GetForUser(ctx context.Context, boardID, userID uuid.UUID) (*model.BoardCollaborator, error) {
	var collab model.BoardCollaborator
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&collab).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collab, nil
}

// ListSharedBoards returns the boards userID can access as a collaborator.
func (r *CollaboratorRepository) ListSharedBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Joins("JOIN board_collaborators ON board_collaborators.board_id = boards.id").
		Where("board_collaborators.user_id = ?", userID).
		Find(&boards).Error
	return boards, err
}
