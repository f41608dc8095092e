// Package aggregate dérive les totaux du tableau de bord, la vue filtrée de
// l'historique et sa projection CSV à partir d'une collection d'enregistrements.
package aggregate

import (
	"cmp"
	"slices"
	"time"

	"carbon-track/models"
)

// MaxMonths borne la série mensuelle aux mois les plus récents.
const MaxMonths = 12

// CategoryTotal est la somme des émissions d'une catégorie.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Name     string          `json:"name"`
	Total    float64         `json:"total"`
}

// CategoryTotals somme les émissions par catégorie. Seules les catégories
// ayant au moins un enregistrement apparaissent, dans l'ordre des catégories.
func CategoryTotals(recs []models.EmissionRecord) []CategoryTotal {
	sums := make(map[models.Category]float64)
	for _, r := range recs {
		sums[r.Category] += r.Emissions
	}
	out := make([]CategoryTotal, 0, len(sums))
	for _, c := range models.Categories {
		if total, ok := sums[c]; ok {
			out = append(out, CategoryTotal{Category: c, Name: c.Title(), Total: total})
		}
	}
	return out
}

// MonthlyTotal est la somme des émissions d'un mois calendaire.
type MonthlyTotal struct {
	Name  string     `json:"name"` // "Jun 24"
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Total float64    `json:"total"`
}

// MonthlyTotals regroupe par mois calendaire de la date, trie chronologiquement
// et ne garde que les MaxMonths derniers mois. Les dates illisibles sont ignorées.
func MonthlyTotals(recs []models.EmissionRecord) []MonthlyTotal {
	type monthKey struct {
		year  int
		month time.Month
	}
	sums := make(map[monthKey]float64)
	var keys []monthKey
	for _, r := range recs {
		t, err := r.Time()
		if err != nil {
			continue
		}
		k := monthKey{t.Year(), t.Month()}
		if _, seen := sums[k]; !seen {
			keys = append(keys, k)
		}
		sums[k] += r.Emissions
	}

	slices.SortFunc(keys, func(a, b monthKey) int {
		if c := cmp.Compare(a.year, b.year); c != 0 {
			return c
		}
		return cmp.Compare(a.month, b.month)
	})
	if len(keys) > MaxMonths {
		keys = keys[len(keys)-MaxMonths:]
	}

	out := make([]MonthlyTotal, 0, len(keys))
	for _, k := range keys {
		label := time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 06")
		out = append(out, MonthlyTotal{Name: label, Year: k.year, Month: k.month, Total: sums[k]})
	}
	return out
}

// Stats regroupe les chiffres clés du tableau de bord (kg CO2e).
type Stats struct {
	TotalEmissions   float64 `json:"total_emissions"`
	TotalElectricity float64 `json:"total_electricity"`
	TotalFuel        float64 `json:"total_fuel"`
	TotalWaste       float64 `json:"total_waste"`
	RecordCount      int     `json:"record_count"`
}

// Summarize calcule les totaux globaux et par catégorie, y compris à zéro.
func Summarize(recs []models.EmissionRecord) Stats {
	s := Stats{RecordCount: len(recs)}
	for _, r := range recs {
		s.TotalEmissions += r.Emissions
		switch r.Category {
		case models.CategoryElectricity:
			s.TotalElectricity += r.Emissions
		case models.CategoryFuel:
			s.TotalFuel += r.Emissions
		case models.CategoryWaste:
			s.TotalWaste += r.Emissions
		}
	}
	return s
}

// UsageTotals somme les usages (et non les émissions) par catégorie.
type UsageTotals struct {
	Electricity float64 `json:"electricity_usage"`
	Fuel        float64 `json:"fuel_consumption"`
	Waste       float64 `json:"waste_generation"`
}

// Sum retourne l'usage cumulé toutes catégories confondues.
func (u UsageTotals) Sum() float64 {
	return u.Electricity + u.Fuel + u.Waste
}

func SumUsage(recs []models.EmissionRecord) UsageTotals {
	var u UsageTotals
	for _, r := range recs {
		switch r.Category {
		case models.CategoryElectricity:
			u.Electricity += r.Usage
		case models.CategoryFuel:
			u.Fuel += r.Usage
		case models.CategoryWaste:
			u.Waste += r.Usage
		}
	}
	return u
}
