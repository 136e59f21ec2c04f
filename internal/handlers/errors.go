package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"aasha-server/internal/analysis"
	"aasha-server/internal/database"
	"aasha-server/internal/screening"
	"aasha-server/internal/store"
	"aasha-server/internal/utils"
)

// respondError writes the envelope matching err's kind.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	msg := err.Error()
	switch {
	case errors.Is(err, screening.ErrInvalidFilter), errors.Is(err, analysis.ErrInvalidInput):
		utils.BadRequest(c, msg)
	case errors.Is(err, screening.ErrSessionNotFound), errors.Is(err, screening.ErrPatientNotFound):
		utils.NotFound(c, msg)
	case errors.Is(err, store.ErrDuplicateKey),
		errors.Is(err, screening.ErrInvalidTransition),
		errors.Is(err, screening.ErrModuleMismatch),
		errors.Is(err, screening.ErrAnalysisAbandoned):
		utils.Conflict(c, msg)
	case errors.Is(err, analysis.ErrCaptureDenied):
		utils.UnprocessableEntity(c, msg)
	case errors.Is(err, screening.ErrAnalysisFailed):
		utils.BadGateway(c, msg)
	case errors.Is(err, database.ErrUnavailable):
		utils.ServiceUnavailable(c, msg)
	default:
		utils.InternalServerError(c, msg)
	}
}
