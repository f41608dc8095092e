// Package records gère la collection ordonnée des enregistrements d'émission
// d'un utilisateur et sa persistance dans un slot clé/valeur.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"carbon-track/models"
	"carbon-track/storage"
	"carbon-track/utils"
)

var (
	// ErrCorrupt signale un contenu de slot illisible ; le store repart d'une collection vide.
	ErrCorrupt = errors.New("records: stored collection is corrupted")
	// ErrUnavailable signale un slot inaccessible à l'ouverture.
	ErrUnavailable = errors.New("records: storage unavailable")
	// ErrPersist est retourné quand une mutation n'a pas pu être écrite ; elle est annulée.
	ErrPersist = errors.New("records: persist failed")
)

// Options paramètre l'ouverture d'un store.
type Options struct {
	// Seed écrit le jeu de démonstration quand le slot est vide.
	Seed bool
	// NewID génère les identités ; uuid par défaut.
	NewID       func() string
	Logger      *zap.Logger
	Subscribers []Subscriber
}

// Store détient la collection en mémoire d'un utilisateur.
// Chaque mutation réécrit la collection entière sous le verrou du store,
// ce qui sérialise les écritures concurrentes sur un même slot.
type Store struct {
	mu       sync.Mutex
	slot     storage.Slot
	identity string
	key      string
	records  []models.EmissionRecord
	warning  error
	newID    func() string
	log      *zap.Logger

	subMu   sync.RWMutex
	subs    map[int]Subscriber
	nextSub int
}

// Open charge la collection depuis le slot, ou l'amorce avec le jeu de démonstration.
// Un slot illisible ne fait pas échouer l'ouverture : voir Warning.
func Open(ctx context.Context, slot storage.Slot, identity string, opts Options) (*Store, error) {
	if slot == nil {
		return nil, errors.New("records: nil slot")
	}
	s := &Store{
		slot:     slot,
		identity: identity,
		key:      storage.RecordsKey(identity),
		newID:    opts.NewID,
		log:      opts.Logger,
		subs:     make(map[int]Subscriber),
	}
	if s.newID == nil {
		s.newID = utils.NewRecordID
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	for _, fn := range opts.Subscribers {
		s.Subscribe(fn)
	}

	s.load(ctx, opts.Seed)
	s.notify(Event{Kind: EventLoaded, Identity: identity, Records: s.List(), Warning: s.Warning()})
	return s, nil
}

func (s *Store) load(ctx context.Context, seed bool) {
	data, err := s.slot.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if !seed {
			s.records = []models.EmissionRecord{}
			return
		}
		s.records = DemoRecords()
		if err := s.persist(ctx, s.records); err != nil {
			s.warning = err
			s.log.Warn("seeding records failed", zap.String("identity", s.identity), zap.Error(err))
		}
	case err != nil:
		s.records = []models.EmissionRecord{}
		s.warning = fmt.Errorf("%w: %v", ErrUnavailable, err)
		s.log.Warn("records slot unavailable", zap.String("identity", s.identity), zap.Error(err))
	default:
		var recs []models.EmissionRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			s.records = []models.EmissionRecord{}
			s.warning = fmt.Errorf("%w: %v", ErrCorrupt, err)
			s.log.Warn("records slot corrupted, starting empty", zap.String("identity", s.identity), zap.Error(err))
			return
		}
		if recs == nil {
			recs = []models.EmissionRecord{}
		}
		s.records = recs
	}
}

// Identity retourne l'identité propriétaire du store.
func (s *Store) Identity() string {
	return s.identity
}

// Warning retourne l'avertissement récupérable produit à l'ouverture, s'il y en a un.
// Il disparaît dès la première écriture réussie du slot.
func (s *Store) Warning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

// List retourne une copie de la collection dans l'ordre d'insertion.
func (s *Store) List() []models.EmissionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.records)
}

// Add attribue une identité neuve, ajoute l'enregistrement en fin de collection
// et persiste la collection. Emissions doit déjà être calculé par l'appelant.
func (s *Store) Add(ctx context.Context, rec models.NewRecord) (models.EmissionRecord, error) {
	s.mu.Lock()
	created := rec.WithID(s.newID())
	next := append(clone(s.records), created)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return models.EmissionRecord{}, err
	}
	s.records = next
	s.warning = nil
	snapshot := clone(next)
	s.mu.Unlock()

	s.notify(Event{Kind: EventAdded, Identity: s.identity, Record: &created, Records: snapshot})
	return created, nil
}

// AddAll ajoute plusieurs enregistrements en une seule écriture : soit tous
// sont persistés, soit aucun. Un événement EventAdded est émis par enregistrement.
func (s *Store) AddAll(ctx context.Context, recs []models.NewRecord) ([]models.EmissionRecord, error) {
	if len(recs) == 0 {
		return []models.EmissionRecord{}, nil
	}
	s.mu.Lock()
	created := make([]models.EmissionRecord, len(recs))
	for i, rec := range recs {
		created[i] = rec.WithID(s.newID())
	}
	next := append(clone(s.records), created...)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.records = next
	s.warning = nil
	snapshot := clone(next)
	s.mu.Unlock()

	for i := range created {
		s.notify(Event{Kind: EventAdded, Identity: s.identity, Record: &created[i], Records: snapshot})
	}
	return clone(created), nil
}

// Delete retire l'enregistrement d'identité id. Une identité absente est un no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i, r := range s.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	removed := s.records[idx]
	next := make([]models.EmissionRecord, 0, len(s.records)-1)
	next = append(next, s.records[:idx]...)
	next = append(next, s.records[idx+1:]...)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.records = next
	s.warning = nil
	snapshot := clone(next)
	s.mu.Unlock()

	s.notify(Event{Kind: EventDeleted, Identity: s.identity, Record: &removed, Records: snapshot})
	return nil
}

// Clear vide la collection et supprime le slot durable.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.slot.Remove(ctx, s.key); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	s.records = []models.EmissionRecord{}
	s.warning = nil
	s.mu.Unlock()

	s.notify(Event{Kind: EventCleared, Identity: s.identity, Records: []models.EmissionRecord{}})
	return nil
}

// Subscribe enregistre un abonné ; la fonction retournée le désabonne.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(ev Event) {
	s.subMu.RLock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func (s *Store) persist(ctx context.Context, recs []models.EmissionRecord) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.slot.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func clone(recs []models.EmissionRecord) []models.EmissionRecord {
	out := make([]models.EmissionRecord, len(recs))
	copy(out, recs)
	return out
}
