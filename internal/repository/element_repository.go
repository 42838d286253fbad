package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"boardbuilder/internal/model"
	"boardbuilder/internal/schema"
)

// Defaults applied when an incoming block carries no position or size.
const (
	DefaultPositionX = 0
	DefaultPositionY = 0
	DefaultWidth     = 100
	DefaultHeight    = 100
)

type ElementRepository struct {
	db *gorm.DB
}

func NewElementRepository(db *gorm.DB) *ElementRepository {
	return &ElementRepository{db: db}
}

func (r *ElementRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.BoardElement, error) {
	var elements []model.BoardElement
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("z_index").
		Find(&elements).Error
	return elements, err
}

func (r *ElementRepository) CountByBoardID(ctx context.Context, boardID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BoardElement{}).
		Where("board_id = ?", boardID).
		Count(&count).Error
	return count, err
}

// Sync reconciles the incoming block list against the persisted element rows
// in three phases: fetch existing ids, delete the ones absent from the input,
// then upsert the input with z_index derived from array position. The whole
// reconciliation runs in one transaction so a half-applied sync never
// becomes visible.
func (r *ElementRepository) Sync(ctx context.Context, boardID uuid.UUID, blocks []schema.Block) error {
	rows, err := ElementRowsFromBlocks(boardID, blocks)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existingIDs []uuid.UUID
		if err := tx.Model(&model.BoardElement{}).
			Where("board_id = ?", boardID).
			Pluck("id", &existingIDs).Error; err != nil {
			return err
		}

		incoming := make(map[uuid.UUID]bool, len(rows))
		for _, row := range rows {
			incoming[row.ID] = true
		}

		var stale []uuid.UUID
		for _, id := range existingIDs {
			if !incoming[id] {
				stale = append(stale, id)
			}
		}
		if len(stale) > 0 {
			if err := tx.Where("id IN ?", stale).Delete(&model.BoardElement{}).Error; err != nil {
				return err
			}
		}

		if len(rows) == 0 {
			return nil
		}

		// The upsert conflicts on id alone, so an incoming id that already
		// lives under another board would rewrite that row's board_id.
		// Reject such ids before writing anything.
		ids := make([]uuid.UUID, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}
		var foreign int64
		if err := tx.Model(&model.BoardElement{}).
			Where("id IN ? AND board_id <> ?", ids, boardID).
			Count(&foreign).Error; err != nil {
			return err
		}
		if foreign > 0 {
			return ErrElementConflict
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&rows).Error
	})
}

// ElementRowsFromBlocks maps an ordered block list to element rows. z_index
// is wholly determined by array position; stale stored z-order never
// survives a sync.
func ElementRowsFromBlocks(boardID uuid.UUID, blocks []schema.Block) ([]model.BoardElement, error) {
	rows := make([]model.BoardElement, 0, len(blocks))
	for i, b := range blocks {
		id, err := uuid.Parse(b.ID)
		if err != nil {
			return nil, ErrInvalidElementID
		}

		row := model.BoardElement{
			ID:        id,
			BoardID:   boardID,
			Type:      b.Type,
			Data:      marshalJSON(b.Data),
			PositionX: DefaultPositionX,
			PositionY: DefaultPositionY,
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			ZIndex:    i,
		}
		if b.Position != nil {
			row.PositionX = b.Position.X
			row.PositionY = b.Position.Y
		}
		if b.Size != nil {
			row.Width = b.Size.Width
			row.Height = b.Size.Height
		}
		if len(b.Styles) > 0 {
			row.Styles = marshalJSON(b.Styles)
		}
		if parentID, err := uuid.Parse(b.ParentID); err == nil && b.ParentID != "" {
			row.ParentID = &parentID
		}
		if containerID, err := uuid.Parse(b.ContainerID); err == nil && b.ContainerID != "" {
			row.ContainerID = &containerID
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func marshalJSON(m map[string]interface{}) model.JSON {
	if len(m) == 0 {
		return model.JSON("{}")
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return model.JSON("{}")
	}
	return model.JSON(raw)
}
