// Package recommend demande des recommandations de réduction à un service
// génératif externe, à partir des usages cumulés de l'utilisateur.
package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"carbon-track/models"
)

// Seuils du formulaire de recommandation.
const (
	MinLocationLength  = 2
	MinLifestyleLength = 10
)

// ErrSchema signale une requête ou une réponse non conforme au schéma.
var ErrSchema = errors.New("recommend: schema violation")

// Input est la requête structurée envoyée au collaborateur.
type Input struct {
	ElectricityUsage float64 `json:"electricityUsage"` // kWh
	FuelConsumption  float64 `json:"fuelConsumption"`  // litres
	WasteGeneration  float64 `json:"wasteGeneration"`  // kg
	Location         string  `json:"location"`
	Lifestyle        string  `json:"lifestyle"`
}

// Validate vérifie la requête avant tout appel : trois nombres finis positifs
// ou nuls, deux textes non vides.
func (in Input) Validate() error {
	for name, v := range map[string]float64{
		"electricityUsage": in.ElectricityUsage,
		"fuelConsumption":  in.FuelConsumption,
		"wasteGeneration":  in.WasteGeneration,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrSchema, name)
		}
	}
	if strings.TrimSpace(in.Location) == "" {
		return fmt.Errorf("%w: location is empty", ErrSchema)
	}
	if strings.TrimSpace(in.Lifestyle) == "" {
		return fmt.Errorf("%w: lifestyle is empty", ErrSchema)
	}
	return nil
}

// Output est la réponse structurée du collaborateur. L'ordre est celui du
// collaborateur et n'est jamais retrié.
type Output struct {
	Recommendations []string `json:"recommendations"`
}

// Form est la saisie libre de l'utilisateur.
type Form struct {
	Location  string `json:"location"`
	Lifestyle string `json:"lifestyle"`
}

// Validate applique les règles du formulaire ; les erreurs sont rendues par champ.
func (f Form) Validate() error {
	var verr models.ValidationError
	if len([]rune(strings.TrimSpace(f.Location))) < MinLocationLength {
		verr.Add("location", "Location is required.")
	}
	if len([]rune(strings.TrimSpace(f.Lifestyle))) < MinLifestyleLength {
		verr.Add("lifestyle", "Please describe your operations briefly.")
	}
	return verr.Err()
}

// ParseOutput décode la réponse texte d'un modèle. Un bloc de code markdown
// autour du JSON est toléré ; le champ recommendations est obligatoire.
func ParseOutput(text string) (Output, error) {
	raw := stripFence(strings.TrimSpace(text))
	if raw == "" {
		return Output{}, fmt.Errorf("%w: empty response", ErrSchema)
	}

	var decoded struct {
		Recommendations *[]string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if decoded.Recommendations == nil {
		return Output{}, fmt.Errorf("%w: missing recommendations", ErrSchema)
	}
	return Output{Recommendations: *decoded.Recommendations}, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:] // étiquette de langage ("json")
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
