// Package factors contient la table des facteurs d'émission (kg CO2e par unité).
//
// La table est immuable une fois construite : changer de facteurs revient à
// charger une nouvelle version, les enregistrements existants gardant la valeur
// calculée au moment de leur création.
package factors

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"carbon-track/models"
)

// DefaultVersion identifie la table embarquée.
const DefaultVersion = "illustrative-v1"

var (
	ErrMissingFactor = errors.New("factors: missing category")
	ErrInvalidFactor = errors.New("factors: factor must be positive")
	ErrUnknownFactor = errors.New("factors: unknown category")
)

// Table associe exactement un facteur strictement positif à chaque catégorie.
type Table struct {
	version string
	values  map[models.Category]float64
}

// Default retourne la table illustrative d'origine.
func Default() Table {
	return Table{
		version: DefaultVersion,
		values: map[models.Category]float64{
			models.CategoryElectricity: 0.4,  // kWh
			models.CategoryFuel:        2.31, // litre d'essence
			models.CategoryWaste:       0.57, // kg de déchets
		},
	}
}

// New valide et construit une table.
func New(version string, values map[string]float64) (Table, error) {
	t := Table{version: version, values: make(map[models.Category]float64, len(models.Categories))}
	for name, v := range values {
		c, err := models.ParseCategory(name)
		if err != nil {
			return Table{}, fmt.Errorf("%w: %s", ErrUnknownFactor, name)
		}
		if !(v > 0) {
			return Table{}, fmt.Errorf("%w: %s=%v", ErrInvalidFactor, name, v)
		}
		t.values[c] = v
	}
	for _, c := range models.Categories {
		if _, ok := t.values[c]; !ok {
			return Table{}, fmt.Errorf("%w: %s", ErrMissingFactor, c)
		}
	}
	if t.version == "" {
		t.version = "custom"
	}
	return t, nil
}

// fileFormat est le schéma YAML d'un fichier de facteurs.
type fileFormat struct {
	Version string             `yaml:"version"`
	Factors map[string]float64 `yaml:"factors"`
}

// Parse lit une table au format YAML.
func Parse(data []byte) (Table, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Table{}, fmt.Errorf("factors: parse: %w", err)
	}
	return New(f.Version, f.Factors)
}

// LoadFile charge une table depuis un fichier YAML.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("factors: read %s: %w", path, err)
	}
	return Parse(data)
}

// MarshalYAML sérialise la table dans le format de LoadFile.
func (t Table) MarshalYAML() (interface{}, error) {
	f := fileFormat{Version: t.version, Factors: make(map[string]float64, len(t.values))}
	for c, v := range t.values {
		f.Factors[string(c)] = v
	}
	return f, nil
}

func (t Table) Version() string {
	return t.version
}

// Factor retourne le multiplicateur d'une catégorie. La catégorie est validée en amont.
func (t Table) Factor(c models.Category) float64 {
	return t.values[c]
}

// Emissions convertit un usage en kg CO2e.
func (t Table) Emissions(c models.Category, usage float64) float64 {
	return usage * t.Factor(c)
}

// Entry est une ligne de la table, pour l'API.
type Entry struct {
	Category models.Category `json:"category"`
	Factor   float64         `json:"factor"`
	Unit     string          `json:"unit"`
}

// Entries liste la table dans l'ordre des catégories.
func (t Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.values))
	for c, v := range t.values {
		out = append(out, Entry{Category: c, Factor: v, Unit: c.Unit()})
	}
	sort.Slice(out, func(i, j int) bool {
		return categoryIndex(out[i].Category) < categoryIndex(out[j].Category)
	})
	return out
}

func categoryIndex(c models.Category) int {
	for i, cat := range models.Categories {
		if cat == c {
			return i
		}
	}
	return len(models.Categories)
}
