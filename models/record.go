package models

import (
	"fmt"
	"time"
)

// Category est l'une des trois familles d'activité suivies.
type Category string

const (
	CategoryElectricity Category = "electricity"
	CategoryFuel        Category = "fuel"
	CategoryWaste       Category = "waste"
)

// Categories liste les catégories dans l'ordre d'affichage.
var Categories = []Category{CategoryElectricity, CategoryFuel, CategoryWaste}

// DateLayout est le format de date stocké sur chaque enregistrement.
const DateLayout = "2006-01-02"

// ParseCategory valide une catégorie saisie.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryElectricity, CategoryFuel, CategoryWaste:
		return c, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// Valid indique si la catégorie appartient à l'énumération fermée.
func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Unit retourne l'unité implicite de l'usage pour la catégorie.
func (c Category) Unit() string {
	switch c {
	case CategoryElectricity:
		return "kWh"
	case CategoryFuel:
		return "liters"
	case CategoryWaste:
		return "kg"
	default:
		return ""
	}
}

// Title retourne le libellé affiché dans les graphiques ("Electricity", ...).
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	s := string(c)
	return string(s[0]-'a'+'A') + s[1:]
}

// EmissionRecord représente une activité enregistrée avec ses émissions calculées.
// Emissions est figé à la création (kg CO2e) et n'est jamais recalculé.
type EmissionRecord struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"` // YYYY-MM-DD
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Usage       float64  `json:"usage"`
	Emissions   float64  `json:"emissions"`
}

// NewRecord est un enregistrement sans identité, tel que fourni au store.
type NewRecord struct {
	Date        string   `json:"date"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Usage       float64  `json:"usage"`
	Emissions   float64  `json:"emissions"`
}

// WithID construit l'enregistrement complet.
func (n NewRecord) WithID(id string) EmissionRecord {
	return EmissionRecord{
		ID:          id,
		Date:        n.Date,
		Category:    n.Category,
		Description: n.Description,
		Usage:       n.Usage,
		Emissions:   n.Emissions,
	}
}

// Time parse la date de l'enregistrement.
func (r EmissionRecord) Time() (time.Time, error) {
	return time.Parse(DateLayout, r.Date)
}
