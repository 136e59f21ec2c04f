package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"aasha-server/internal/screening"
	"aasha-server/internal/store"
	"aasha-server/internal/utils"
)

// PatientHandler handles patient lookups.
type PatientHandler struct {
	Service *screening.Service
	Store   *store.Store
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(service *screening.Service, st *store.Store) *PatientHandler {
	return &PatientHandler{Service: service, Store: st}
}

// ListPatients returns patients matching the optional risk filter and name
// query, each with its latest screening.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	filter, err := screening.ParseFilter(c.Query("filter"))
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	patients, err := h.Service.FindPatients(ctx, filter, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	summaries, err := h.Service.Summaries(ctx, patients)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Patients retrieved", summaries)
}

// GetPatientByID returns one patient.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patientID := c.Param("id")
	patient, ok, err := h.Store.GetPatient(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		utils.NotFound(c, "Patient not found")
		return
	}
	utils.Success(c, "Patient retrieved", patient)
}

// GetPatientScreenings returns a patient's screenings, newest first.
func (h *PatientHandler) GetPatientScreenings(c *gin.Context) {
	patientID := c.Param("id")
	if !h.exists(c, patientID) {
		return
	}
	screenings, err := h.Service.PatientScreenings(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Screenings retrieved", screenings)
}

// GetLatestScreening returns the patient's most recent screening. A patient
// that was never screened gets 404 with a message saying so.
func (h *PatientHandler) GetLatestScreening(c *gin.Context) {
	patientID := c.Param("id")
	if !h.exists(c, patientID) {
		return
	}
	latest, ok, err := h.Store.GetLatestScreening(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		utils.NotFound(c, fmt.Sprintf("No screening yet for patient %s", patientID))
		return
	}
	utils.Success(c, "Latest screening retrieved", latest)
}

func (h *PatientHandler) exists(c *gin.Context, patientID string) bool {
	_, ok, err := h.Store.GetPatient(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !ok {
		utils.NotFound(c, "Patient not found")
		return false
	}
	return true
}
