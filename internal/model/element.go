package model

import (
	"time"

	"github.com/google/uuid"
)

// Block kinds allowed on a board.
const (
	BlockText        = "text"
	BlockHeading     = "heading"
	BlockImage       = "image"
	BlockButton      = "button"
	BlockSpacer      = "spacer"
	BlockVideo       = "video"
	BlockForm        = "form"
	BlockPricing     = "pricing"
	BlockTestimonial = "testimonial"
	BlockAccordion   = "accordion"
	BlockCode        = "code"
)

// BlockTypes is the closed set of element kinds.
var BlockTypes = map[string]bool{
	BlockText:        true,
	BlockHeading:     true,
	BlockImage:       true,
	BlockButton:      true,
	BlockSpacer:      true,
	BlockVideo:       true,
	BlockForm:        true,
	BlockPricing:     true,
	BlockTestimonial: true,
	BlockAccordion:   true,
	BlockCode:        true,
}

// BoardElement is the normalized row form of a block. Rows are created,
// removed and reordered only through a full board sync; z_index is derived
// from array position at sync time.
type BoardElement struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BoardID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type        string     `gorm:"not null"`
	Data        JSON       `gorm:"type:jsonb"`
	PositionX   float64    `gorm:"not null;default:0"`
	PositionY   float64    `gorm:"not null;default:0"`
	Width       float64    `gorm:"not null;default:100"`
	Height      float64    `gorm:"not null;default:100"`
	ZIndex      int        `gorm:"not null"`
	Styles      JSON       `gorm:"type:jsonb"`
	ParentID    *uuid.UUID `gorm:"type:uuid"`
	ContainerID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Board Board `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
}
