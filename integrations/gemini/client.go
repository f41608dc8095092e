// Package gemini expose un modèle Gemini comme générateur de texte JSON.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel est utilisé quand aucun modèle n'est configuré.
const DefaultModel = "gemini-2.0-flash"

// Config regroupe les paramètres du client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // vide = endpoint public
}

// Client génère des réponses JSON contraintes par le schéma des recommandations.
type Client struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// RecommendationsSchema décrit {"recommendations": [string]}.
var RecommendationsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"recommendations": {
			Type:        genai.TypeArray,
			Description: "A list of personalized carbon reduction recommendations.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"recommendations"},
}

// NewClient crée un client Gemini.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: GEMINI_API_KEY manquant")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   RecommendationsSchema,
		},
	}, nil
}

// Model retourne le modèle interrogé.
func (c *Client) Model() string {
	return c.model
}

// Generate envoie le prompt et retourne le texte de la première réponse.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: réponse vide")
	}
	return text, nil
}
