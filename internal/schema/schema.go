// Package schema holds the shared board payload shapes and the two-tier
// validation contract: tolerant readers that substitute safe defaults for
// corrupt stored JSON, and strict write-path checks that reject bad input
// with field-level errors.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boardbuilder/internal/model"
	"boardbuilder/internal/slug"
)

// GridConfig controls board layout.
type GridConfig struct {
	Columns int `json:"columns"`
	Gap     int `json:"gap"`
}

// DefaultGridConfig is substituted whenever a stored grid config fails
// validation.
var DefaultGridConfig = GridConfig{Columns: 4, Gap: 16}

// Valid reports whether g satisfies the grid constraints (1-4 columns,
// non-negative gap).
func (g GridConfig) Valid() bool {
	return g.Columns >= 1 && g.Columns <= 4 && g.Gap >= 0
}

// Position is a block's 2D canvas position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a block's rendered dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Block is one content unit on a board.
type Block struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Data        map[string]interface{} `json:"data"`
	Position    *Position              `json:"position,omitempty"`
	Size        *Size                  `json:"size,omitempty"`
	Styles      map[string]interface{} `json:"styles,omitempty"`
	ParentID    string                 `json:"parentId,omitempty"`
	ContainerID string                 `json:"containerId,omitempty"`
}

// FieldError is one write-path validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// GridConfigOrDefault is the tolerant reader for stored grid configs. It
// never fails: malformed or out-of-range input is logged and replaced with
// DefaultGridConfig.
func GridConfigOrDefault(raw []byte, logger *zap.Logger) GridConfig {
	if len(raw) == 0 {
		return DefaultGridConfig
	}

	var g GridConfig
	if err := json.Unmarshal(raw, &g); err != nil {
		logger.Warn("stored grid config is malformed, using default", zap.Error(err))
		return DefaultGridConfig
	}
	if !g.Valid() {
		logger.Warn("stored grid config out of range, using default",
			zap.Int("columns", g.Columns), zap.Int("gap", g.Gap))
		return DefaultGridConfig
	}
	return g
}

// BlocksOrDefault is the tolerant reader for stored block lists. It never
// fails: any schema violation is logged and the whole list is replaced with
// an empty one, so a corrupt row cannot break board loading.
func BlocksOrDefault(raw []byte, logger *zap.Logger) []Block {
	if len(raw) == 0 {
		return []Block{}
	}

	var blocks []Block
	if err := json.Unmarshal(raw, &blocks); err != nil {
		logger.Warn("stored blocks are malformed, using empty list", zap.Error(err))
		return []Block{}
	}
	if blocks == nil {
		return []Block{}
	}

	for i := range blocks {
		if blocks[i].ID == "" || !model.BlockTypes[blocks[i].Type] {
			logger.Warn("stored block fails schema, using empty list",
				zap.Int("index", i), zap.String("type", blocks[i].Type))
			return []Block{}
		}
		if blocks[i].Data == nil {
			blocks[i].Data = map[string]interface{}{}
		}
	}
	return blocks
}

// ValidateBlocks is the strict write-path check for incoming block lists.
// Block IDs must be UUIDs because they become element row primary keys.
func ValidateBlocks(blocks []Block) []FieldError {
	var errs []FieldError
	seen := make(map[string]bool, len(blocks))

	for i, b := range blocks {
		field := func(name string) string { return fmt.Sprintf("blocks[%d].%s", i, name) }

		if _, err := uuid.Parse(b.ID); err != nil {
			errs = append(errs, FieldError{field("id"), "must be a UUID"})
		} else if seen[b.ID] {
			errs = append(errs, FieldError{field("id"), "duplicate block id"})
		}
		seen[b.ID] = true

		if !model.BlockTypes[b.Type] {
			errs = append(errs, FieldError{field("type"), fmt.Sprintf("unknown block type %q", b.Type)})
		}
		if b.Position != nil && (!finite(b.Position.X) || !finite(b.Position.Y)) {
			errs = append(errs, FieldError{field("position"), "coordinates must be finite numbers"})
		}
		if b.Size != nil && (b.Size.Width <= 0 || b.Size.Height <= 0 || !finite(b.Size.Width) || !finite(b.Size.Height)) {
			errs = append(errs, FieldError{field("size"), "width and height must be positive"})
		}
	}
	return errs
}

// Write-path limits for board fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
)

// BoardFields is the validatable subset of a board write payload. Nil
// pointers mean "not provided".
type BoardFields struct {
	Title       *string
	Slug        *string
	Description *string
	Visibility  *string
}

// ValidateBoardFields is the strict write-path check for board create/update
// payloads.
func ValidateBoardFields(f BoardFields) []FieldError {
	var errs []FieldError

	// Limits are in characters, not bytes; multibyte titles count per rune.
	if f.Title != nil {
		if n := utf8.RuneCountInString(*f.Title); n < 1 || n > MaxTitleLength {
			errs = append(errs, FieldError{"title", fmt.Sprintf("must be 1-%d characters", MaxTitleLength)})
		}
	}
	if f.Slug != nil && !slug.Valid(*f.Slug) {
		errs = append(errs, FieldError{"slug", "must be 3-50 characters of [a-z0-9-]"})
	}
	if f.Description != nil && utf8.RuneCountInString(*f.Description) > MaxDescriptionLength {
		errs = append(errs, FieldError{"description", fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)})
	}
	if f.Visibility != nil && !model.ValidVisibility(*f.Visibility) {
		errs = append(errs, FieldError{"visibility", "must be one of private, public, shared, workspace"})
	}
	return errs
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
