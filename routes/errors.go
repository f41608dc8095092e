package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carbon-track/models"
	"carbon-track/services/recommend"
	"carbon-track/services/records"
)

// writeError traduit une erreur métier en réponse JSON. Aucune erreur n'est fatale.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields()})
	case errors.Is(err, recommend.ErrNoData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "no emission data",
			"message": "Please add some emission records before getting suggestions.",
		})
	case errors.Is(err, recommend.ErrRequestInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "a recommendation request is already in progress"})
	case errors.Is(err, recommend.ErrCollaborator):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to get AI suggestions. Please try again."})
	case errors.Is(err, records.ErrPersist):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save your records"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, field, message string) {
	var verr models.ValidationError
	verr.Add(field, message)
	writeError(c, verr)
}

func warningText(err error) string {
	if err == nil {
		return ""
	}
	return "Your saved history could not be read and was reset."
}
