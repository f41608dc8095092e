package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carbon-track/models"
)

// GormSlot persiste les slots dans la table kv_slots (SQLite ou PostgreSQL).
type GormSlot struct {
	db *gorm.DB
}

func NewGormSlot(db *gorm.DB) *GormSlot {
	return &GormSlot{db: db}
}

func (s *GormSlot) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.SlotEntry
	err := s.db.WithContext(ctx).Where("slot_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

// Set écrase la valeur existante (upsert sur la clé).
func (s *GormSlot) Set(ctx context.Context, key string, value []byte) error {
	entry := models.SlotEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}

func (s *GormSlot) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&models.SlotEntry{}).Error; err != nil {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}
