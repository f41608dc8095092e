package models

import (
	"time"

	"gorm.io/datatypes"
)

// SlotEntry est une ligne de la table clé/valeur durable.
type SlotEntry struct {
	Key       string         `gorm:"column:slot_key;primaryKey;size:255"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (SlotEntry) TableName() string {
	return "kv_slots"
}
