package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aasha-server/internal/analysis"
	"aasha-server/internal/models"
	"aasha-server/internal/screening"
	"aasha-server/internal/utils"
)

// multipartOverhead is the room left for form boundaries and headers on top
// of the capture itself.
const multipartOverhead = 64 << 10

// SessionHandler drives the screening workflow for the local UI.
type SessionHandler struct {
	Service         *screening.Service
	Sessions        *screening.Sessions
	MaxCaptureBytes int64
	Log             *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service *screening.Service, sessions *screening.Sessions, maxCaptureBytes int64, log *zap.Logger) *SessionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionHandler{Service: service, Sessions: sessions, MaxCaptureBytes: maxCaptureBytes, Log: log}
}

// CreateSession starts an idle workflow session.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	sess := h.Sessions.Create()
	utils.Created(c, "Session started", sess.Snapshot())
}

// GetSession returns the session's current state.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	utils.Success(c, "Session retrieved", sess.Snapshot())
}

// AbandonSession drops the session. Saved records stay saved.
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.Service.Abandon(sess)
	h.Sessions.Remove(sess.ID)
	utils.Success(c, "Session abandoned", nil)
}

// RegisterPatientRequest is the intake form.
type RegisterPatientRequest struct {
	Name     string   `json:"name" binding:"required,max=255"`
	Age      int      `json:"age" binding:"min=0,max=150"`
	Gender   string   `json:"gender" binding:"omitempty,oneof=male female other"`
	Phone    string   `json:"phone" binding:"max=32"`
	Village  string   `json:"village" binding:"max=255"`
	Symptoms []string `json:"symptoms" binding:"dive,intake_symptom"`
}

// RegisterPatient saves the intake form and selects the new patient.
func (h *SessionHandler) RegisterPatient(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req RegisterPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	_, err := h.Service.RegisterPatient(c.Request.Context(), sess, screening.Intake{
		Name:     req.Name,
		Age:      req.Age,
		Gender:   req.Gender,
		Phone:    req.Phone,
		Village:  req.Village,
		Symptoms: req.Symptoms,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Patient registered", sess.Snapshot())
}

// SelectPatient selects an already registered patient for a new screening.
func (h *SessionHandler) SelectPatient(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := h.Service.SelectPatient(c.Request.Context(), sess, c.Param("patientId")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Patient selected", sess.Snapshot())
}

// SelectModuleRequest represents the request body for choosing a module.
type SelectModuleRequest struct {
	Module string `json:"module" binding:"required"`
}

// SelectModuleResponse reports whether the module was recognized.
type SelectModuleResponse struct {
	Selected bool               `json:"selected"`
	Session  screening.Snapshot `json:"session"`
}

// SelectModule starts a module. Unknown modules are ignored and reported as
// not selected.
func (h *SessionHandler) SelectModule(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req SelectModuleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	selected, err := h.Service.SelectModule(sess, req.Module)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Module started"
	if !selected {
		message = "Unknown module ignored"
	}
	utils.Success(c, message, SelectModuleResponse{Selected: selected, Session: sess.Snapshot()})
}

// AnalysisRequest carries questionnaire and symptom input. Media modules
// send a multipart form with a "capture" file instead.
type AnalysisRequest struct {
	Answers  map[string]bool `json:"answers" binding:"dive,keys,warning_sign,endkeys"`
	Symptoms []string        `json:"symptoms" binding:"dive,triage_symptom"`
	// CaptureDenied is set by the client when the microphone or camera
	// permission was refused.
	CaptureDenied bool `json:"captureDenied"`
}

// Analyze runs the module in progress on the submitted input.
func (h *SessionHandler) Analyze(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var in analysis.Input
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		snap := sess.Snapshot()
		if snap.State != screening.StateModuleInProgress {
			respondError(c, fmt.Errorf("%w: no module in progress (%s)", screening.ErrInvalidTransition, snap.State))
			return
		}
		capture, err := h.readCapture(c)
		if err != nil {
			respondError(c, err)
			return
		}
		module, _ := models.LookupModule(snap.Module)
		switch module.Input {
		case models.InputAudio:
			in.Audio = capture
		case models.InputImage:
			in.Image = capture
		default:
			utils.BadRequest(c, "This module does not take a capture")
			return
		}
	} else {
		var req AnalysisRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		if req.CaptureDenied {
			h.Log.Info("capture permission refused", zap.String("session", sess.ID))
			respondError(c, fmt.Errorf("%w: permission refused on the device", analysis.ErrCaptureDenied))
			return
		}
		in.Answers = req.Answers
		in.Symptoms = req.Symptoms
	}

	outcome, err := h.Service.Analyze(c.Request.Context(), sess, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Screening recorded", outcome)
}

func (h *SessionHandler) readCapture(c *gin.Context) ([]byte, error) {
	limit := h.MaxCaptureBytes
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}
	file, _, err := c.Request.FormFile("capture")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrCaptureDenied, err)
	}
	defer file.Close()

	var r io.Reader = file
	if limit > 0 {
		// One byte past the limit is enough for the size check to reject it.
		r = io.LimitReader(file, limit+1)
	}
	capture, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrCaptureDenied, err)
	}
	return capture, nil
}

// ResultRequest is a result computed outside this server.
type ResultRequest struct {
	Module         string `json:"module" binding:"required,module"`
	RiskLevel      string `json:"riskLevel" binding:"required,risk_level"`
	Confidence     int    `json:"confidence" binding:"min=0,max=100"`
	Recommendation string `json:"recommendation"`
}

// CompleteAnalysis records an externally computed result for the module in
// progress.
func (h *SessionHandler) CompleteAnalysis(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req ResultRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	module, _ := models.ParseModuleType(req.Module)
	outcome, err := h.Service.CompleteAnalysis(c.Request.Context(), sess, module, analysis.Result{
		RiskLevel:      models.RiskLevel(req.RiskLevel),
		Confidence:     req.Confidence,
		Recommendation: req.Recommendation,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Screening recorded", outcome)
}

// Acknowledge closes the shown result.
func (h *SessionHandler) Acknowledge(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.Service.Acknowledge(sess); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Result acknowledged", sess.Snapshot())
}

func (h *SessionHandler) session(c *gin.Context) (*screening.Session, bool) {
	sess, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return sess, true
}
