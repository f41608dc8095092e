package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewRecordID génère une identité d'enregistrement résistante aux collisions.
func NewRecordID() string {
	return uuid.NewString()
}

// NormalizeEmail sert de clé d'identité utilisateur.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
