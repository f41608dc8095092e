// Package mistral appelle un agent Mistral via l'API conversations.
package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL     = "https://api.mistral.ai"
	conversationPath   = "/v1/conversations"
	defaultHTTPTimeout = 60 * time.Second
)

// Config regroupe les paramètres de l'agent.
type Config struct {
	APIKey  string
	AgentID string
	BaseURL string
}

type Client struct {
	apiKey  string
	agentID string
	baseURL string
	http    *http.Client
}

type ConversationRequest struct {
	AgentID string `json:"agent_id"`
	Inputs  string `json:"inputs"`
}

type ConversationResponse struct {
	ID      string               `json:"id"`
	Object  string               `json:"object"`
	Status  string               `json:"status"`
	Message ConversationPiece    `json:"message"`
	Outputs []ConversationOutput `json:"outputs"`
	Output  any                  `json:"output"`
}

type ConversationPiece struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ConversationOutput porte un contenu qui est soit une chaîne, soit une liste
// de fragments selon la version de l'API.
type ConversationOutput struct {
	ID      string          `json:"id"`
	Object  string          `json:"object"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type ConversationChunk struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mistral: MISTRAL_API_KEY manquant")
	}
	if cfg.AgentID == "" {
		return nil, errors.New("mistral: MISTRAL_AGENT_ID manquant")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:  cfg.APIKey,
		agentID: cfg.AgentID,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}, nil
}

func (c *Client) SendConversation(ctx context.Context, prompt string) (*ConversationResponse, error) {
	payload := ConversationRequest{
		AgentID: c.agentID,
		Inputs:  prompt,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+conversationPath, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mistral conversation status %d", resp.StatusCode)
	}

	var out ConversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate implémente un générateur de texte au-dessus de l'agent.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.SendConversation(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := resp.FirstText()
	if text == "" {
		return "", errors.New("réponse Mistral vide")
	}
	return text, nil
}

func (r *ConversationResponse) FirstText() string {
	if r == nil {
		return ""
	}
	if r.Message.Content != "" {
		return r.Message.Content
	}
	for _, out := range r.Outputs {
		if text := out.Text(); text != "" {
			return text
		}
	}
	if text, ok := r.Output.(string); ok && text != "" {
		return text
	}
	return ""
}

// Text retourne le premier texte non vide de la sortie.
func (o ConversationOutput) Text() string {
	if len(o.Content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(o.Content, &s); err == nil {
		return s
	}
	var chunks []ConversationChunk
	if err := json.Unmarshal(o.Content, &chunks); err != nil {
		return ""
	}
	for _, chunk := range chunks {
		if chunk.Text != "" {
			return chunk.Text
		}
	}
	return ""
}
