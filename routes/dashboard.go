package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carbon-track/services/aggregate"
	"carbon-track/services/tips"
)

type DashboardHandler struct {
	deps Deps
}

func NewDashboardHandler(d Deps) *DashboardHandler {
	return &DashboardHandler{deps: d}
}

type statsResponse struct {
	aggregate.Stats
	Warning string `json:"warning,omitempty"`
}

// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	store, _, ok := currentStore(c, h.deps.Registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		Stats:   aggregate.Summarize(store.List()),
		Warning: warningText(store.Warning()),
	})
}

type chartsResponse struct {
	ByCategory []aggregate.CategoryTotal `json:"by_category"`
	ByMonth    []aggregate.MonthlyTotal  `json:"by_month"`
}

// GET /api/dashboard/charts
func (h *DashboardHandler) Charts(c *gin.Context) {
	store, _, ok := currentStore(c, h.deps.Registry)
	if !ok {
		return
	}
	recs := store.List()
	c.JSON(http.StatusOK, chartsResponse{
		ByCategory: aggregate.CategoryTotals(recs),
		ByMonth:    aggregate.MonthlyTotals(recs),
	})
}

// GET /api/tips/random
func (h *DashboardHandler) RandomTip(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tip": tips.Random()})
}
