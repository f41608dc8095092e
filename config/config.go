// Package config charge la configuration depuis l'environnement (et un .env local).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret ne doit jamais être utilisé en production.
const DefaultJWTSecret = "changeme-super-secret"

// Fournisseurs de recommandations.
const (
	ProviderGemini  = "gemini"
	ProviderMistral = "mistral"
)

// Config contient la configuration principale de l'application.
type Config struct {
	Env       string
	Port      string
	JWTSecret string
	LogLevel  string

	// DatabaseURL : vide = SQLite local, "memory" = en mémoire, sinon PostgreSQL.
	DatabaseURL string
	FactorsFile string

	LLMProvider    string
	GeminiAPIKey   string
	GeminiModel    string
	MistralAPIKey  string
	MistralAgentID string
	MistralBaseURL string

	RecommendTimeout time.Duration
	ClearOnLogout    bool
	SeedDemoData     bool
}

// Load lit les variables d'environnement en appliquant des valeurs par défaut.
func Load() Config {
	return Config{
		Env:              getEnv("API_ENV", "development"),
		Port:             getEnv("API_PORT", "8080"),
		JWTSecret:        getEnv("API_JWT_SECRET", DefaultJWTSecret),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		FactorsFile:      getEnv("FACTORS_FILE", ""),
		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", ""),
		MistralAPIKey:    getEnv("MISTRAL_API_KEY", ""),
		MistralAgentID:   getEnv("MISTRAL_AGENT_ID", ""),
		MistralBaseURL:   getEnv("MISTRAL_API_BASE", ""),
		RecommendTimeout: getDurationEnv("RECOMMEND_TIMEOUT", 60*time.Second),
		ClearOnLogout:    getBoolEnv("CLEAR_ON_LOGOUT", true),
		SeedDemoData:     getBoolEnv("SEED_DEMO_DATA", true),
	}
}

// HTTPAddr retourne l'adresse d'écoute.
func (c Config) HTTPAddr() string {
	return ":" + c.Port
}

// IsDevelopment indique un environnement local.
func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}

// Warnings liste les réglages dangereux ou incomplets, à journaliser au démarrage.
func (c Config) Warnings() []string {
	var out []string
	if c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret {
		out = append(out, "API_JWT_SECRET n'est pas configuré ou utilise la valeur par défaut. Ne pas utiliser en production.")
	}
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			out = append(out, "GEMINI_API_KEY n'est pas configuré. Les recommandations IA seront indisponibles.")
		}
	case ProviderMistral:
		if c.MistralAPIKey == "" || c.MistralAgentID == "" {
			out = append(out, "MISTRAL_API_KEY ou MISTRAL_AGENT_ID n'est pas configuré. Les recommandations IA seront indisponibles.")
		}
	default:
		out = append(out, "LLM_PROVIDER inconnu : "+c.LLMProvider)
	}
	return out
}

// LoadEnvIfExists charge un fichier .env local s'il existe.
func LoadEnvIfExists(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		return godotenv.Load(path)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
