package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"carbon-track/models"
	"carbon-track/storage"
)

// ErrUnknownUser est retourné quand aucun marqueur d'identité n'est enregistré.
var ErrUnknownUser = errors.New("records: unknown user")

// Registry associe chaque identité authentifiée à son Store ouvert.
type Registry struct {
	slot storage.Slot
	opts Options

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(slot storage.Slot, opts Options) *Registry {
	return &Registry{
		slot:   slot,
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// Login enregistre le marqueur d'identité puis ouvre le store de l'utilisateur.
func (r *Registry) Login(ctx context.Context, user models.User) (*Store, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	if err := r.slot.Set(ctx, storage.UserKey(user.Key()), data); err != nil {
		return nil, fmt.Errorf("records: save user: %w", err)
	}
	return r.Store(ctx, user.Key())
}

// User relit le marqueur d'identité.
func (r *Registry) User(ctx context.Context, identity string) (models.User, error) {
	data, err := r.slot.Get(ctx, storage.UserKey(identity))
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, ErrUnknownUser
	}
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return models.User{}, fmt.Errorf("records: decode user: %w", err)
	}
	return u, nil
}

// Store retourne le store ouvert de l'identité, en l'ouvrant au besoin
// (par exemple après un redémarrage avec un jeton encore valide).
func (r *Registry) Store(ctx context.Context, identity string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[identity]; ok {
		return s, nil
	}
	s, err := Open(ctx, r.slot, identity, r.opts)
	if err != nil {
		return nil, err
	}
	r.stores[identity] = s
	return s, nil
}

// Logout ferme le store de l'identité ; avec clear, l'historique durable est effacé.
// Le verrou est tenu jusqu'au bout : un Store concurrent attend la fin de
// l'effacement avant de rouvrir le slot.
func (r *Registry) Logout(ctx context.Context, identity string, clear bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[identity]
	delete(r.stores, identity)

	if clear {
		if ok {
			if err := s.Clear(ctx); err != nil {
				return err
			}
		} else if err := r.slot.Remove(ctx, storage.RecordsKey(identity)); err != nil {
			return fmt.Errorf("%w: %v", ErrPersist, err)
		}
	}
	if err := r.slot.Remove(ctx, storage.UserKey(identity)); err != nil {
		return fmt.Errorf("records: remove user: %w", err)
	}
	return nil
}
