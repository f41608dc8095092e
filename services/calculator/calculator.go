// Package calculator valide le formulaire de saisie et convertit un usage en
// émissions à l'aide de la table des facteurs.
package calculator

import (
	"strings"
	"time"

	"carbon-track/models"
	"carbon-track/services/factors"
)

// MinUsage est la plus petite quantité acceptée par le formulaire.
const MinUsage = 0.01

// MinDescriptionLength est la longueur minimale de la description.
const MinDescriptionLength = 3

var earliestDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Input est la saisie brute du formulaire de calcul.
type Input struct {
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Usage       float64 `json:"usage"`
	Description string  `json:"description"`
}

// Result est le résultat d'un calcul validé.
type Result struct {
	Emissions float64 `json:"emissions"`
	Factor    float64 `json:"factor"`
	Unit      string  `json:"unit"`
}

// Calculator applique la table des facteurs active.
type Calculator struct {
	table factors.Table
	now   func() time.Time
}

// New crée un calculateur. now peut être nil (horloge système).
func New(table factors.Table, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{table: table, now: now}
}

// Table retourne la table des facteurs utilisée.
func (c *Calculator) Table() factors.Table {
	return c.table
}

// Validate contrôle la saisie et retourne un models.ValidationError le cas échéant.
func (c *Calculator) Validate(in Input) error {
	var verr models.ValidationError

	date := strings.TrimSpace(in.Date)
	switch t, err := time.Parse(models.DateLayout, date); {
	case date == "":
		verr.Add("date", "A date is required.")
	case err != nil:
		verr.Add("date", "Date must use the YYYY-MM-DD format.")
	case t.After(c.today()):
		verr.Add("date", "Date cannot be in the future.")
	case t.Before(earliestDate):
		verr.Add("date", "Date cannot be before 1900.")
	}

	if !models.Category(in.Category).Valid() {
		verr.Add("category", "Please select a category.")
	}
	if !(in.Usage >= MinUsage) {
		verr.Add("usage", "Usage must be greater than 0.")
	}
	if len([]rune(strings.TrimSpace(in.Description))) < MinDescriptionLength {
		verr.Add("description", "Please provide a brief description.")
	}
	return verr.Err()
}

// Calculate valide la saisie puis calcule les émissions (kg CO2e).
func (c *Calculator) Calculate(in Input) (Result, error) {
	if err := c.Validate(in); err != nil {
		return Result{}, err
	}
	cat := models.Category(in.Category)
	return Result{
		Emissions: c.table.Emissions(cat, in.Usage),
		Factor:    c.table.Factor(cat),
		Unit:      cat.Unit(),
	}, nil
}

// Record calcule puis construit l'enregistrement à sauvegarder.
func (c *Calculator) Record(in Input) (models.NewRecord, Result, error) {
	res, err := c.Calculate(in)
	if err != nil {
		return models.NewRecord{}, Result{}, err
	}
	return models.NewRecord{
		Date:        strings.TrimSpace(in.Date),
		Category:    models.Category(in.Category),
		Description: strings.TrimSpace(in.Description),
		Usage:       in.Usage,
		Emissions:   res.Emissions,
	}, res, nil
}

// today retourne la date du jour à minuit, en UTC, pour comparer des dates sans heure.
func (c *Calculator) today() time.Time {
	y, m, d := c.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
