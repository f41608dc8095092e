// Package app assemble les composants à partir de la configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"carbon-track/config"
	"carbon-track/database"
	"carbon-track/integrations/gemini"
	"carbon-track/integrations/mistral"
	"carbon-track/observability"
	"carbon-track/routes"
	"carbon-track/services/calculator"
	"carbon-track/services/factors"
	"carbon-track/services/recommend"
	"carbon-track/services/records"
	"carbon-track/session"
	"carbon-track/storage"
)

// MemoryDSN sélectionne le slot en mémoire.
const MemoryDSN = "memory"

// App détient l'état applicatif partagé par les handlers et les commandes.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Slot       storage.Slot
	Factors    factors.Table
	Calculator *calculator.Calculator
	Registry   *records.Registry
	Desk       *recommend.Desk
	Issuer     *session.Issuer

	closers []func() error
}

// New construit l'application. Un fournisseur IA mal configuré n'est pas
// bloquant : les recommandations sont simplement indisponibles.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	table := factors.Default()
	if cfg.FactorsFile != "" {
		t, err := factors.LoadFile(cfg.FactorsFile)
		if err != nil {
			return nil, err
		}
		table = t
		log.Info("emission factors loaded", zap.String("file", cfg.FactorsFile), zap.String("version", t.Version()))
	}
	a.Factors = table
	a.Calculator = calculator.New(table, nil)

	slot, err := a.openSlot(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.Slot = slot

	a.Registry = records.NewRegistry(slot, records.Options{
		Seed:        cfg.SeedDemoData,
		Logger:      log,
		Subscribers: []records.Subscriber{observability.ObserveRecords},
	})
	a.Issuer = session.NewIssuer(cfg.JWTSecret, session.DefaultTTL)

	collab, err := newCollaborator(ctx, cfg)
	if err != nil {
		log.Warn("recommendations disabled", zap.String("provider", cfg.LLMProvider), zap.Error(err))
	} else {
		a.Desk = recommend.NewDesk(collab, recommend.Options{
			Timeout:   cfg.RecommendTimeout,
			Logger:    log,
			OnOutcome: observability.ObserveRecommendation,
		})
	}
	return a, nil
}

func (a *App) openSlot(dsn string) (storage.Slot, error) {
	if dsn == MemoryDSN {
		a.Logger.Info("using in-memory storage")
		return storage.NewMemorySlot(), nil
	}
	db, err := database.Connect(dsn, a.Logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("app: database handle: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)
	return storage.NewGormSlot(db), nil
}

func newCollaborator(ctx context.Context, cfg config.Config) (recommend.Collaborator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			return nil, err
		}
		return recommend.NewPromptCollaborator(client), nil
	case config.ProviderMistral:
		client, err := mistral.NewClient(mistral.Config{
			APIKey:  cfg.MistralAPIKey,
			AgentID: cfg.MistralAgentID,
			BaseURL: cfg.MistralBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return recommend.NewPromptCollaborator(client), nil
	default:
		return nil, fmt.Errorf("app: unknown LLM provider %q", cfg.LLMProvider)
	}
}

// Handler retourne le routeur HTTP.
func (a *App) Handler() http.Handler {
	return routes.NewRouter(routes.Deps{
		Config:     a.Config,
		Registry:   a.Registry,
		Calculator: a.Calculator,
		Desk:       a.Desk,
		Issuer:     a.Issuer,
		Logger:     a.Logger,
	})
}

// NewHTTPServer crée un serveur HTTP configuré.
func (a *App) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:              a.Config.HTTPAddr(),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// les recommandations peuvent prendre jusqu'à RECOMMEND_TIMEOUT
		WriteTimeout:   a.Config.RecommendTimeout + 15*time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

// Close libère les ressources ouvertes.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
