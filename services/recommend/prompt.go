package recommend

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"text/template"
)

// Collaborator est le service externe de recommandation.
type Collaborator interface {
	SuggestReductions(ctx context.Context, in Input) (Output, error)
}

// TextGenerator est un modèle de langage qui répond à un prompt par du texte.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var promptTemplate = template.Must(template.New("suggest-reductions").Funcs(template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).Parse(`You are an AI assistant designed to provide personalized carbon reduction recommendations to users based on their provided data. Consider the location and lifestyle of the user when providing suggestions.

Based on the following data, provide a list of actionable recommendations to reduce the user's carbon footprint:

Location: {{.Location}}
Lifestyle: {{.Lifestyle}}
Electricity Usage: {{num .ElectricityUsage}} kWh
Fuel Consumption: {{num .FuelConsumption}} liters
Waste Generation: {{num .WasteGeneration}} kg

Answer with JSON only, using exactly this shape: {"recommendations": ["...", "..."]}
`))

// BuildPrompt rend le prompt de recommandation pour une requête.
func BuildPrompt(in Input) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("recommend: render prompt: %w", err)
	}
	return buf.String(), nil
}

// PromptCollaborator adapte un TextGenerator au contrat Collaborator.
type PromptCollaborator struct {
	gen TextGenerator
}

func NewPromptCollaborator(gen TextGenerator) *PromptCollaborator {
	return &PromptCollaborator{gen: gen}
}

// SuggestReductions valide la requête, interroge le modèle et valide sa réponse.
func (p *PromptCollaborator) SuggestReductions(ctx context.Context, in Input) (Output, error) {
	if err := in.Validate(); err != nil {
		return Output{}, err
	}
	prompt, err := BuildPrompt(in)
	if err != nil {
		return Output{}, err
	}
	text, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return Output{}, err
	}
	return ParseOutput(text)
}
