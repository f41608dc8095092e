package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carbon-track/middleware"
	"carbon-track/services/recommend"
)

type RecommendHandler struct {
	deps Deps
}

func NewRecommendHandler(d Deps) *RecommendHandler {
	return &RecommendHandler{deps: d}
}

func (h *RecommendHandler) ready(c *gin.Context) bool {
	if h.deps.Desk == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI recommendations are not configured"})
		return false
	}
	return true
}

// POST /api/recommendations
// Les usages cumulés de l'historique sont envoyés avec le formulaire au service IA.
func (h *RecommendHandler) Request(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	store, user, ok := currentStore(c, h.deps.Registry)
	if !ok {
		return
	}

	var form recommend.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}

	recs, err := h.deps.Desk.For(user.Key()).Request(c.Request.Context(), store.List(), form)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recommend.Output{Recommendations: recs})
}

// GET /api/recommendations/status
func (h *RecommendHandler) Status(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, h.deps.Desk.For(user.Key()).Status())
}
