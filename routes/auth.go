package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-track/middleware"
	"carbon-track/models"
)

type AuthHandler struct {
	deps Deps
}

func NewAuthHandler(d Deps) *AuthHandler {
	return &AuthHandler{deps: d}
}

type loginRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type authResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
	Warning   string      `json:"warning,omitempty"`
}

// POST /api/auth/login
// Enregistre le marqueur d'identité, ouvre (ou amorce) l'historique et émet un jeton.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}

	user := models.User{Name: req.Name, Email: req.Email}
	user.Email = user.Key()
	store, err := h.deps.Registry.Login(c.Request.Context(), user)
	if err != nil {
		writeError(c, err)
		return
	}

	token, exp, err := h.deps.Issuer.Issue(user)
	if err != nil {
		writeError(c, err)
		return
	}

	h.deps.Logger.Info("user logged in", zap.String("identity", user.Key()), zap.Int("records", len(store.List())))
	c.JSON(http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      user,
		Warning:   warningText(store.Warning()),
	})
}

// POST /api/auth/logout
// Ferme l'historique ; il est effacé quand CLEAR_ON_LOGOUT est actif.
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	clear := h.deps.Config.ClearOnLogout
	if err := h.deps.Registry.Logout(c.Request.Context(), user.Key(), clear); err != nil {
		writeError(c, err)
		return
	}
	if h.deps.Desk != nil {
		h.deps.Desk.Forget(user.Key())
	}

	h.deps.Logger.Info("user logged out", zap.String("identity", user.Key()), zap.Bool("history_cleared", clear))
	c.JSON(http.StatusOK, gin.H{"status": "logged out", "history_cleared": clear})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, user)
}
