package aggregate

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"carbon-track/models"
)

// CategoryAll désactive le filtre de catégorie.
const CategoryAll = "all"

// Filter décrit la vue de l'historique : recherche dans la description
// (insensible à la casse) et catégorie optionnelle.
type Filter struct {
	Query    string
	Category models.Category // vide = toutes
}

// ParseFilter construit un filtre depuis les paramètres de requête.
func ParseFilter(query, category string) (Filter, error) {
	f := Filter{Query: query}
	if category == "" || category == CategoryAll {
		return f, nil
	}
	c, err := models.ParseCategory(category)
	if err != nil {
		return Filter{}, fmt.Errorf("aggregate: %w", err)
	}
	f.Category = c
	return f, nil
}

// Match indique si l'enregistrement appartient à la vue.
func (f Filter) Match(r models.EmissionRecord) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Description), strings.ToLower(f.Query))
}

// Apply filtre puis trie par date décroissante. Le tri est stable : à date égale
// l'ordre d'insertion est conservé. Les dates illisibles passent en dernier.
func (f Filter) Apply(recs []models.EmissionRecord) []models.EmissionRecord {
	type dated struct {
		rec models.EmissionRecord
		at  time.Time
	}
	view := make([]dated, 0, len(recs))
	for _, r := range recs {
		if !f.Match(r) {
			continue
		}
		at, _ := r.Time()
		view = append(view, dated{rec: r, at: at})
	}
	slices.SortStableFunc(view, func(a, b dated) int {
		return b.at.Compare(a.at)
	})

	out := make([]models.EmissionRecord, len(view))
	for i, d := range view {
		out[i] = d.rec
	}
	return out
}
