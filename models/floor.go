package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Floor struct {
	ID          string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	FloorNumber int     `gorm:"uniqueIndex;not null" json:"floorNumber"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Tables      []Table `gorm:"foreignKey:FloorID" json:"Tables,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (f *Floor) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
