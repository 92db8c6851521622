package models

import "time"

// IDSequence reserves the last issued numeric suffix for a prefixed identifier.
type IDSequence struct {
	Name      string    `gorm:"column:name;type:varchar(32);primaryKey"`
	LastValue int64     `gorm:"column:last_value;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the sequence table name.
func (IDSequence) TableName() string {
	return "id_sequences"
}
