// Package routes expose l'API HTTP JSON du tableau de bord.
package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"carbon-track/config"
	"carbon-track/middleware"
	"carbon-track/models"
	"carbon-track/services/calculator"
	"carbon-track/services/recommend"
	"carbon-track/services/records"
	"carbon-track/session"
)

// Deps regroupe l'état applicatif injecté dans les handlers.
type Deps struct {
	Config     config.Config
	Registry   *records.Registry
	Calculator *calculator.Calculator
	Desk       *recommend.Desk // nil sans fournisseur IA
	Issuer     *session.Issuer
	Logger     *zap.Logger
}

// NewRouter construit le routeur gin complet.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "carbon-track",
			"env":     d.Config.Env,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.JWTMiddleware(d.Issuer, lookupUser(d.Registry))

	authHandler := NewAuthHandler(d)
	recordsHandler := NewRecordsHandler(d)
	dashboardHandler := NewDashboardHandler(d)
	recommendHandler := NewRecommendHandler(d)
	factorsHandler := NewFactorsHandler(d)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", auth, authHandler.Logout)
			authGroup.GET("/me", auth, authHandler.Me)
		}

		api.GET("/factors", factorsHandler.List)
		api.GET("/tips/random", dashboardHandler.RandomTip)

		protected := api.Group("", auth)
		{
			protected.POST("/calculate", factorsHandler.Calculate)

			protected.GET("/records", recordsHandler.List)
			protected.POST("/records", recordsHandler.Create)
			protected.DELETE("/records/:id", recordsHandler.Delete)
			protected.POST("/records/import", recordsHandler.Import)

			protected.GET("/history", recordsHandler.History)
			protected.GET("/history/export", recordsHandler.Export)

			protected.GET("/dashboard/stats", dashboardHandler.Stats)
			protected.GET("/dashboard/charts", dashboardHandler.Charts)

			protected.POST("/recommendations", recommendHandler.Request)
			protected.GET("/recommendations/status", recommendHandler.Status)
		}
	}

	return router
}

func lookupUser(reg *records.Registry) middleware.UserLookup {
	return func(ctx context.Context, identity string) (models.User, error) {
		u, err := reg.User(ctx, identity)
		if errors.Is(err, records.ErrUnknownUser) {
			return models.User{}, middleware.ErrUnknownUser
		}
		return u, err
	}
}

// currentStore retourne le store de l'utilisateur authentifié.
func currentStore(c *gin.Context, reg *records.Registry) (*records.Store, models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, models.User{}, false
	}
	store, err := reg.Store(c.Request.Context(), user.Key())
	if err != nil {
		writeError(c, err)
		return nil, models.User{}, false
	}
	return store, user, true
}
