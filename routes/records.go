package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-track/models"
	"carbon-track/services/aggregate"
	"carbon-track/services/calculator"
)

type RecordsHandler struct {
	deps Deps
}

func NewRecordsHandler(d Deps) *RecordsHandler {
	return &RecordsHandler{deps: d}
}

type recordsResponse struct {
	Records []models.EmissionRecord `json:"records"`
	Warning string                  `json:"warning,omitempty"`
}

// GET /api/records
// Collection complète, dans l'ordre d'insertion.
func (h *RecordsHandler) List(c *gin.Context) {
	store, _, ok := currentStore(c, h.deps.Registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, recordsResponse{Records: store.List(), Warning: warningText(store.Warning())})
}

type createRecordResponse struct {
	Record models.EmissionRecord `json:"record"`
	Result calculator.Result     `json:"result"`
}

// POST /api/records
// Calcule les émissions puis sauvegarde l'enregistrement.
func (h *RecordsHandler) Create(c *gin.Context) {
	store, _, ok := currentStore(c, h.deps.Registry)
	if !ok {
		return
	}

	var in calculator.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}

	rec, res, err := h.deps.Calculator.Record(in)
	if err != nil {
		writeError(c, err)
		return
	}
	created, err := store.Add(c.Request.Context(), rec)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createRecordResponse{Record: created, Result: res})
}

// DELETE /api/records/:id
// Une identité inconnue n'est pas une erreur.
func (h *RecordsHandler) Delete(c *gin.Context) {
	store, _, ok := currentStore(c, h.deps.Registry)
	if !ok {
		return
	}
	if err := store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/records/import
// Relit un fichier au format de l'export ; les lignes invalides sont ignorées.
func (h *RecordsHandler) Import(c *gin.Context) {
	store, user, ok := currentStore(c, h.deps.Registry)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "file", "A CSV file is required.")
		return
	}
	defer file.Close()

	res, err := aggregate.ReadCSV(file)
	if err != nil {
		if errors.Is(err, aggregate.ErrEmptyCSV) {
			badRequest(c, "file", "The CSV file contains no records.")
			return
		}
		badRequest(c, "file", "The CSV file could not be read.")
		return
	}

	created, err := store.AddAll(c.Request.Context(), res.Records)
	if err != nil {
		writeError(c, err)
		return
	}

	h.deps.Logger.Info("records imported",
		zap.String("identity", user.Key()),
		zap.Int("inserted", len(created)),
		zap.Int("skipped", res.Skipped),
	)
	c.JSON(http.StatusOK, gin.H{"inserted": len(created), "skipped": res.Skipped})
}

// GET /api/history?filter=&category=
// Vue filtrée, triée par date décroissante.
func (h *RecordsHandler) History(c *gin.Context) {
	store, _, ok := currentStore(c, h.deps.Registry)
	if !ok {
		return
	}
	f, ok := parseFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, recordsResponse{Records: f.Apply(store.List())})
}

// GET /api/history/export?filter=&category=
// Même vue que l'historique, projetée en CSV téléchargeable.
func (h *RecordsHandler) Export(c *gin.Context) {
	store, _, ok := currentStore(c, h.deps.Registry)
	if !ok {
		return
	}
	f, ok := parseFilter(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+aggregate.CSVFileName+`"`)
	c.Status(http.StatusOK)
	if err := aggregate.WriteCSV(c.Writer, f.Apply(store.List())); err != nil {
		_ = c.Error(err)
	}
}

func parseFilter(c *gin.Context) (aggregate.Filter, bool) {
	f, err := aggregate.ParseFilter(c.Query("filter"), c.Query("category"))
	if err != nil {
		badRequest(c, "category", "Unknown category.")
		return aggregate.Filter{}, false
	}
	return f, true
}
