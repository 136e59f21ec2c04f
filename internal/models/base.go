package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel contains the identity columns shared by patients and screenings.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = NewID()
	}
	return nil
}

// BeforeSave stores createdAt in UTC so day-range queries compare the same
// way on every driver.
func (base *BaseModel) BeforeSave(tx *gorm.DB) error {
	base.CreatedAt = base.CreatedAt.UTC()
	return nil
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.New().String()
}
