package models

import (
	"sort"
	"strings"
)

// FieldError décrit une saisie invalide sur un champ de formulaire.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError regroupe les erreurs de formulaire, affichées à côté des champs.
type ValidationError []FieldError

func (v ValidationError) Error() string {
	parts := make([]string, 0, len(v))
	for _, f := range v {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add ajoute une erreur sur un champ.
func (v *ValidationError) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Fields retourne la première erreur de chaque champ, indexée par nom.
func (v ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, f := range v {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}

// Names retourne les champs en erreur, triés.
func (v ValidationError) Names() []string {
	names := make([]string, 0, len(v))
	for field := range v.Fields() {
		names = append(names, field)
	}
	sort.Strings(names)
	return names
}

// Err retourne nil quand il n'y a aucune erreur.
func (v ValidationError) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
