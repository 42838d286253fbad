// Package transform reshapes storage rows into the nested shapes the builder
// UI consumes. All functions are pure field mappings.
package transform

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boardbuilder/internal/model"
	"boardbuilder/internal/schema"
)

// BuilderElement is the builder-facing shape of a board_elements row.
// Flattened position_x/position_y/width/height columns become nested
// objects; NULL parent/container links are omitted entirely.
type BuilderElement struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Data        map[string]interface{} `json:"data"`
	Position    schema.Position        `json:"position"`
	Size        schema.Size            `json:"size"`
	ZIndex      int                    `json:"zIndex"`
	Styles      map[string]interface{} `json:"styles,omitempty"`
	ParentID    *string                `json:"parentId,omitempty"`
	ContainerID *string                `json:"containerId,omitempty"`
}

// BoardMeta is the builder-facing summary of a boards row.
type BoardMeta struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"ownerId"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Description string            `json:"description,omitempty"`
	Visibility  string            `json:"visibility"`
	GridConfig  schema.GridConfig `json:"gridConfig"`
	Blocks      []schema.Block    `json:"blocks"`
	TemplateID  *string           `json:"templateId,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ElementToBuilder maps one element row to its builder shape.
func ElementToBuilder(el *model.BoardElement) BuilderElement {
	out := BuilderElement{
		ID:       el.ID.String(),
		Type:     el.Type,
		Data:     jsonMap(el.Data),
		Position: schema.Position{X: el.PositionX, Y: el.PositionY},
		Size:     schema.Size{Width: el.Width, Height: el.Height},
		ZIndex:   el.ZIndex,
	}
	if len(el.Styles) > 0 {
		out.Styles = jsonMap(el.Styles)
	}
	if el.ParentID != nil {
		s := el.ParentID.String()
		out.ParentID = &s
	}
	if el.ContainerID != nil {
		s := el.ContainerID.String()
		out.ContainerID = &s
	}
	return out
}

// ElementsToBuilder maps a slice of element rows, preserving order.
func ElementsToBuilder(els []model.BoardElement) []BuilderElement {
	out := make([]BuilderElement, len(els))
	for i := range els {
		out[i] = ElementToBuilder(&els[i])
	}
	return out
}

// BoardToMeta maps a boards row to its builder summary. The owner comes from
// user_id, falling back to the deprecated owner_id alias; the two are
// expected to agree when both are present, and a disagreement is logged
// rather than rejected.
func BoardToMeta(b *model.Board, logger *zap.Logger) BoardMeta {
	if b.LegacyOwnerID != nil && b.UserID != uuid.Nil && b.UserID != *b.LegacyOwnerID {
		logger.Warn("board user_id and deprecated owner_id disagree",
			zap.String("board_id", b.ID.String()),
			zap.String("user_id", b.UserID.String()),
			zap.String("owner_id", b.LegacyOwnerID.String()))
	}

	meta := BoardMeta{
		ID:          b.ID.String(),
		OwnerID:     b.OwnerID().String(),
		Title:       b.Title,
		Slug:        b.Slug,
		Description: b.Description,
		Visibility:  b.Visibility,
		GridConfig:  schema.GridConfigOrDefault([]byte(b.GridConfig), logger),
		Blocks:      schema.BlocksOrDefault([]byte(b.Blocks), logger),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.TemplateID != nil {
		s := b.TemplateID.String()
		meta.TemplateID = &s
	}
	return meta
}

func jsonMap(raw model.JSON) map[string]interface{} {
	m := map[string]interface{}{}
	if len(raw) > 0 {
		// Tolerant read: a corrupt payload becomes an empty map.
		_ = json.Unmarshal(raw, &m)
	}
	return m
}
