package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carbon-track/models"
)

func newGormSlot(t *testing.T) *GormSlot {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "slots.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SlotEntry{}))
	return NewGormSlot(db)
}

func TestSlots(t *testing.T) {
	slots := map[string]func(t *testing.T) Slot{
		"memory": func(t *testing.T) Slot { return NewMemorySlot() },
		"gorm":   func(t *testing.T) Slot { return newGormSlot(t) },
	}

	for name, mk := range slots {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			slot := mk(t)
			key := RecordsKey("ana@example.com")

			_, err := slot.Get(ctx, key)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, slot.Set(ctx, key, []byte(`[{"id":"1"}]`)))
			got, err := slot.Get(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"1"}]`, string(got))

			require.NoError(t, slot.Set(ctx, key, []byte(`[]`)))
			got, err = slot.Get(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, string(got))

			require.NoError(t, slot.Remove(ctx, key))
			_, err = slot.Get(ctx, key)
			assert.ErrorIs(t, err, ErrNotFound)

			// supprimer une clé absente n'est pas une erreur
			assert.NoError(t, slot.Remove(ctx, key))
		})
	}
}

func TestKeysAreScopedByIdentity(t *testing.T) {
	assert.Equal(t, "carbon-track-emissions/ana@example.com", RecordsKey("ana@example.com"))
	assert.Equal(t, "carbon-track-user/ana@example.com", UserKey("ana@example.com"))
	assert.NotEqual(t, RecordsKey("a"), RecordsKey("b"))
}

func TestMemorySlotCopiesValues(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	value := []byte("abc")
	require.NoError(t, slot.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
