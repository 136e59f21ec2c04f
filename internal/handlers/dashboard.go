package handlers

import (
	"github.com/gin-gonic/gin"

	"aasha-server/internal/screening"
	"aasha-server/internal/utils"
)

// DashboardHandler serves the home screen counts and the history list.
type DashboardHandler struct {
	Service *screening.Service
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *screening.Service) *DashboardHandler {
	return &DashboardHandler{Service: service}
}

// GetDashboard returns today's and total patient counts.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	stats, err := h.Service.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Dashboard retrieved", stats)
}

// GetHistory returns every patient with their latest screening, newest
// registration first.
func (h *DashboardHandler) GetHistory(c *gin.Context) {
	history, err := h.Service.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "History retrieved", history)
}
