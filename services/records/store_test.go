package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-track/models"
	"carbon-track/storage"
)

type failingSlot struct {
	*storage.MemorySlot
	failSet bool
	failGet bool
}

func (f *failingSlot) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet {
		return nil, errors.New("disk on fire")
	}
	return f.MemorySlot.Get(ctx, key)
}

func (f *failingSlot) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("quota exceeded")
	}
	return f.MemorySlot.Set(ctx, key, value)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("rec-%d", n)
	}
}

func newRecord(date string, c models.Category, desc string, usage, emissions float64) models.NewRecord {
	return models.NewRecord{Date: date, Category: c, Description: desc, Usage: usage, Emissions: emissions}
}

func TestOpenSeedsEmptySlot(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()

	s, err := Open(ctx, slot, "ana@example.com", Options{Seed: true})
	require.NoError(t, err)
	assert.Equal(t, DemoRecords(), s.List())
	assert.NoError(t, s.Warning())

	raw, err := slot.Get(ctx, storage.RecordsKey("ana@example.com"))
	require.NoError(t, err)
	var persisted []models.EmissionRecord
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, DemoRecords(), persisted)
}

func TestOpenWithoutSeedStartsEmpty(t *testing.T) {
	s, err := Open(context.Background(), storage.NewMemorySlot(), "ana@example.com", Options{})
	require.NoError(t, err)
	assert.Empty(t, s.List())
}

func TestOpenLoadsExistingCollection(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	stored := []models.EmissionRecord{
		{ID: "x", Date: "2024-01-02", Category: models.CategoryFuel, Description: "Generator", Usage: 10, Emissions: 23.1},
	}
	data, _ := json.Marshal(stored)
	require.NoError(t, slot.Set(ctx, storage.RecordsKey("bob"), data))

	s, err := Open(ctx, slot, "bob", Options{Seed: true})
	require.NoError(t, err)
	assert.Equal(t, stored, s.List())
}

func TestOpenCorruptedSlotDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	require.NoError(t, slot.Set(ctx, storage.RecordsKey("bob"), []byte("{not json")))

	s, err := Open(ctx, slot, "bob", Options{Seed: true})
	require.NoError(t, err)
	assert.Empty(t, s.List())
	assert.ErrorIs(t, s.Warning(), ErrCorrupt)

	_, err = s.Add(ctx, newRecord("2024-03-01", models.CategoryWaste, "Bins", 10, 5.7))
	require.NoError(t, err)
	assert.Len(t, s.List(), 1)
}

func TestOpenUnreadableSlotDegradesToEmpty(t *testing.T) {
	slot := &failingSlot{MemorySlot: storage.NewMemorySlot(), failGet: true}

	s, err := Open(context.Background(), slot, "bob", Options{Seed: true})
	require.NoError(t, err)
	assert.Empty(t, s.List())
	assert.ErrorIs(t, s.Warning(), ErrUnavailable)
}

func TestWarningClearsAfterSuccessfulWrite(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{MemorySlot: storage.NewMemorySlot()}
	require.NoError(t, slot.Set(ctx, storage.RecordsKey("bob"), []byte("{not json")))

	s, err := Open(ctx, slot, "bob", Options{Seed: true})
	require.NoError(t, err)
	require.ErrorIs(t, s.Warning(), ErrCorrupt)

	slot.failSet = true
	_, err = s.Add(ctx, newRecord("2024-03-01", models.CategoryWaste, "Bins", 10, 5.7))
	require.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, s.Warning(), ErrCorrupt)

	slot.failSet = false
	_, err = s.Add(ctx, newRecord("2024-03-01", models.CategoryWaste, "Bins", 10, 5.7))
	require.NoError(t, err)
	assert.NoError(t, s.Warning())

	raw, err := slot.Get(ctx, storage.RecordsKey("bob"))
	require.NoError(t, err)
	var persisted []models.EmissionRecord
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Len(t, persisted, 1)
}

func TestWarningClearsAfterClear(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{MemorySlot: storage.NewMemorySlot(), failGet: true}

	s, err := Open(ctx, slot, "bob", Options{})
	require.NoError(t, err)
	require.ErrorIs(t, s.Warning(), ErrUnavailable)

	require.NoError(t, s.Clear(ctx))
	assert.NoError(t, s.Warning())
}

func TestAddAppendsInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, storage.NewMemorySlot(), "ana", Options{NewID: sequentialIDs()})
	require.NoError(t, err)

	first, err := s.Add(ctx, newRecord("2024-07-01", models.CategoryElectricity, "Office", 100, 40))
	require.NoError(t, err)
	second, err := s.Add(ctx, newRecord("2024-01-01", models.CategoryFuel, "Van", 10, 23.1))
	require.NoError(t, err)

	assert.Equal(t, "rec-1", first.ID)
	assert.Equal(t, "rec-2", second.ID)
	assert.Equal(t, []models.EmissionRecord{first, second}, s.List())
}

func TestAddThenDeleteRestoresPriorState(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	s, err := Open(ctx, slot, "ana", Options{Seed: true})
	require.NoError(t, err)
	before := s.List()

	rec, err := s.Add(ctx, newRecord("2024-08-01", models.CategoryWaste, "Pallets", 20, 11.4))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, rec.ID))

	assert.Equal(t, before, s.List())

	reopened, err := Open(ctx, slot, "ana", Options{Seed: true})
	require.NoError(t, err)
	assert.Equal(t, before, reopened.List())
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, storage.NewMemorySlot(), "ana", Options{Seed: true})
	require.NoError(t, err)
	before := s.List()

	require.NoError(t, s.Delete(ctx, "does-not-exist"))
	assert.Equal(t, before, s.List())
}

func TestAddRollsBackWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{MemorySlot: storage.NewMemorySlot()}
	s, err := Open(ctx, slot, "ana", Options{Seed: true})
	require.NoError(t, err)
	before := s.List()

	slot.failSet = true
	_, err = s.Add(ctx, newRecord("2024-08-01", models.CategoryWaste, "Pallets", 20, 11.4))
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, before, s.List())

	err = s.Delete(ctx, before[0].ID)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, before, s.List())
}

func TestListReturnsCopy(t *testing.T) {
	s, err := Open(context.Background(), storage.NewMemorySlot(), "ana", Options{Seed: true})
	require.NoError(t, err)

	list := s.List()
	list[0].Description = "mutated"
	assert.Equal(t, "Office electricity", s.List()[0].Description)
}

func TestClearRemovesSlot(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	s, err := Open(ctx, slot, "ana", Options{Seed: true})
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.List())
	_, err = slot.Get(ctx, storage.RecordsKey("ana"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSubscribersReceiveEvents(t *testing.T) {
	ctx := context.Background()
	var (
		mu     sync.Mutex
		events []Event
	)
	record := func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}

	s, err := Open(ctx, storage.NewMemorySlot(), "ana", Options{Subscribers: []Subscriber{record}, NewID: sequentialIDs()})
	require.NoError(t, err)
	rec, err := s.Add(ctx, newRecord("2024-08-01", models.CategoryFuel, "Van", 1, 2.31))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, rec.ID))

	unsubscribe := s.Subscribe(record)
	unsubscribe()
	require.NoError(t, s.Clear(ctx))

	require.Len(t, events, 4)
	assert.Equal(t, EventLoaded, events[0].Kind)
	assert.Equal(t, EventAdded, events[1].Kind)
	assert.Equal(t, "rec-1", events[1].Record.ID)
	assert.Len(t, events[1].Records, 1)
	assert.Equal(t, EventDeleted, events[2].Kind)
	assert.Empty(t, events[2].Records)
	assert.Equal(t, EventCleared, events[3].Kind)
	assert.Equal(t, "ana", events[3].Identity)
}

func TestConcurrentAddsAreAllPersisted(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	s, err := Open(ctx, slot, "ana", Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Add(ctx, newRecord("2024-08-01", models.CategoryFuel, fmt.Sprintf("trip %d", i), 1, 2.31))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	reopened, err := Open(ctx, slot, "ana", Options{})
	require.NoError(t, err)
	assert.Len(t, reopened.List(), 50)

	ids := make(map[string]struct{})
	for _, r := range reopened.List() {
		ids[r.ID] = struct{}{}
	}
	assert.Len(t, ids, 50)
}

func TestAddAllIsAtomic(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{MemorySlot: storage.NewMemorySlot()}
	s, err := Open(ctx, slot, "ana", Options{NewID: sequentialIDs()})
	require.NoError(t, err)

	batch := []models.NewRecord{
		newRecord("2024-08-01", models.CategoryFuel, "Van", 1, 2.31),
		newRecord("2024-08-02", models.CategoryWaste, "Bins", 10, 5.7),
	}

	slot.failSet = true
	_, err = s.AddAll(ctx, batch)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Empty(t, s.List())

	slot.failSet = false
	created, err := s.AddAll(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, []string{"rec-3", "rec-4"}, []string{created[0].ID, created[1].ID})
	assert.Equal(t, created, s.List())
}

func TestLoadedEventCarriesWarning(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	require.NoError(t, slot.Set(ctx, storage.RecordsKey("ana"), []byte("{oops")))

	var got Event
	_, err := Open(ctx, slot, "ana", Options{Subscribers: []Subscriber{func(ev Event) { got = ev }}})
	require.NoError(t, err)
	assert.Equal(t, EventLoaded, got.Kind)
	assert.ErrorIs(t, got.Warning, ErrCorrupt)
}
