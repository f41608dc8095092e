// Package storage fournit les slots clé/valeur durables où sont sérialisés
// l'utilisateur et la collection d'enregistrements.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound est retourné quand une clé n'a jamais été écrite ou a été supprimée.
var ErrNotFound = errors.New("storage: key not found")

// Slot est un stockage clé/valeur où chaque écriture remplace la valeur entière.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

const (
	userKeyPrefix    = "carbon-track-user/"
	recordsKeyPrefix = "carbon-track-emissions/"
)

// UserKey retourne la clé du marqueur d'identité.
func UserKey(identity string) string {
	return userKeyPrefix + identity
}

// RecordsKey retourne la clé de la collection d'enregistrements d'un utilisateur.
func RecordsKey(identity string) string {
	return recordsKeyPrefix + identity
}
