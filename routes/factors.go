package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carbon-track/services/calculator"
	"carbon-track/services/factors"
)

type FactorsHandler struct {
	deps Deps
}

func NewFactorsHandler(d Deps) *FactorsHandler {
	return &FactorsHandler{deps: d}
}

type factorsResponse struct {
	Version string          `json:"version"`
	Factors []factors.Entry `json:"factors"`
}

// GET /api/factors
func (h *FactorsHandler) List(c *gin.Context) {
	table := h.deps.Calculator.Table()
	c.JSON(http.StatusOK, factorsResponse{Version: table.Version(), Factors: table.Entries()})
}

// POST /api/calculate
// Aperçu du calcul, sans sauvegarde.
func (h *FactorsHandler) Calculate(c *gin.Context) {
	var in calculator.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}
	res, err := h.deps.Calculator.Calculate(in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
