package models

import "gorm.io/datatypes"

// Setting is a key/value pair; the last write wins.
type Setting struct {
	Key   string         `gorm:"primaryKey;column:key;size:128" json:"key"`
	Value datatypes.JSON `json:"value"`
}
