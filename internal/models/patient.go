package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Patient is a person registered at intake by the health worker.
type Patient struct {
	BaseModel
	Name    string `gorm:"size:255;index" json:"name"`
	Age     int    `json:"age"`
	Gender  string `gorm:"size:20" json:"gender"`
	Phone   string `gorm:"size:32" json:"phone"`
	Village string `gorm:"size:255" json:"village"`

	// Symptoms is the intake selection as it was at registration time. It is
	// not re-checked against the catalog afterwards.
	Symptoms datatypes.JSONSlice[string] `json:"symptoms"`

	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// BeforeSave stores both timestamps in UTC.
func (p *Patient) BeforeSave(tx *gorm.DB) error {
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p.BaseModel.BeforeSave(tx)
}
