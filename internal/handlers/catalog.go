package handlers

import (
	"github.com/gin-gonic/gin"

	"aasha-server/internal/models"
	"aasha-server/internal/utils"
)

// CatalogResponse is everything the UI needs to render forms and modules.
type CatalogResponse struct {
	Modules              []models.Module         `json:"modules"`
	IntakeSymptoms       []string                `json:"intakeSymptoms"`
	MaternalWarningSigns []models.WarningSign    `json:"maternalWarningSigns"`
	TriageCategories     []models.TriageCategory `json:"triageCategories"`
}

// GetCatalog returns the static screening catalogs.
func GetCatalog(c *gin.Context) {
	utils.Success(c, "Catalog retrieved", CatalogResponse{
		Modules:              models.Modules,
		IntakeSymptoms:       models.IntakeSymptoms,
		MaternalWarningSigns: models.MaternalWarningSigns,
		TriageCategories:     models.TriageCategories,
	})
}
