package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"aasha-server/internal/analysis"
	"aasha-server/internal/config"
	"aasha-server/internal/database"
	"aasha-server/internal/metrics"
	"aasha-server/internal/models"
	"aasha-server/internal/screening"
	"aasha-server/internal/store"
)

var wavCapture = append([]byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00"), make([]byte, 32)...)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type APISuite struct {
	suite.Suite
	cfg      *config.Config
	store    *store.Store
	analyzer *analysis.Static
	router   *gin.Engine
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(s.T().TempDir(), "aasha.db"),
	}, nil, false)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = database.Close(db) })

	s.cfg = &config.Config{
		Auth:     config.AuthConfig{JWTSecret: "test-secret", JWTExpirationMinutes: 5},
		Analysis: config.AnalysisConfig{MaxCaptureBytes: 4096},
	}
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	s.store = store.New(db, store.WithClock(func() time.Time { return now }))
	s.analyzer = &analysis.Static{Result: analysis.Result{RiskLevel: models.RiskMedium, Confidence: 82, Recommendation: "Visit PHC"}}
	s.router = s.newRouter()
}

func (s *APISuite) newRouter() *gin.Engine {
	reg := prometheus.NewRegistry()
	service := screening.NewService(s.store, s.analyzer, screening.Options{
		AnalysisTimeout: time.Second,
		MaxCaptureBytes: s.cfg.Analysis.MaxCaptureBytes,
		Metrics:         metrics.New(reg),
	})
	router := gin.New()
	SetupRoutes(router, Deps{
		Config:   s.cfg,
		Store:    s.store,
		Service:  service,
		Sessions: screening.NewSessions(),
		Gatherer: reg,
	})
	return router
}

func (s *APISuite) request(req *http.Request, token string) (int, envelope) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (s *APISuite) do(method, path string, body any) (int, envelope) {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.request(req, "")
}

func (s *APISuite) upload(path string, capture []byte) (int, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("capture", "capture.bin")
	s.Require().NoError(err)
	_, err = fw.Write(capture)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.request(req, "")
}

func (s *APISuite) decode(env envelope, dst any) {
	s.Require().NoError(json.Unmarshal(env.Data, dst))
}

func (s *APISuite) newSession() string {
	code, env := s.do(http.MethodPost, "/api/v1/sessions", nil)
	s.Require().Equal(http.StatusCreated, code)
	var snap screening.Snapshot
	s.decode(env, &snap)
	s.Require().Equal(screening.StateIdle, snap.State)
	return snap.ID
}

func (s *APISuite) TestHealthAndMetrics() {
	code, _ := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, code)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "aasha_patients_registered_total")
}

func (s *APISuite) TestScreeningFlow() {
	id := s.newSession()
	base := "/api/v1/sessions/" + id

	code, env := s.do(http.MethodPost, base+"/patient", map[string]any{
		"name": "Devi", "age": 34, "gender": "female", "symptoms": []string{"Cough > 2 weeks"},
	})
	s.Require().Equal(http.StatusCreated, code, env.Error)
	var snap screening.Snapshot
	s.decode(env, &snap)
	s.Equal(screening.StatePatientSelected, snap.State)
	s.Require().NotNil(snap.Patient)
	patientID := snap.Patient.ID

	code, env = s.do(http.MethodPost, base+"/module", map[string]string{"module": "tb"})
	s.Require().Equal(http.StatusOK, code, env.Error)

	code, env = s.upload(base+"/analysis", wavCapture)
	s.Require().Equal(http.StatusCreated, code, env.Error)
	var outcome screening.Outcome
	s.decode(env, &outcome)
	s.Equal(patientID, outcome.Screening.PatientID)
	s.Equal(models.RiskMedium, outcome.Screening.RiskLevel)
	s.True(outcome.ReferToPHC)

	code, env = s.do(http.MethodGet, "/api/v1/patients/"+patientID+"/screenings/latest", nil)
	s.Require().Equal(http.StatusOK, code)
	var latest models.Screening
	s.decode(env, &latest)
	s.Equal(outcome.Screening.ID, latest.ID)

	code, env = s.do(http.MethodGet, "/api/v1/dashboard", nil)
	s.Require().Equal(http.StatusOK, code)
	var stats screening.Stats
	s.decode(env, &stats)
	s.Equal(screening.Stats{TodayCount: 1, TotalCount: 1, ScreeningCount: 1}, stats)

	code, env = s.do(http.MethodPost, base+"/acknowledge", nil)
	s.Require().Equal(http.StatusOK, code)
	s.decode(env, &snap)
	s.Equal(screening.StateIdle, snap.State)

	code, env = s.do(http.MethodGet, "/api/v1/history", nil)
	s.Require().Equal(http.StatusOK, code)
	var history []screening.PatientSummary
	s.decode(env, &history)
	s.Require().Len(history, 1)
	s.Require().NotNil(history[0].LatestScreening)
	s.Equal(latest.ID, history[0].LatestScreening.ID)

	code, _ = s.do(http.MethodDelete, base, nil)
	s.Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodGet, base, nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *APISuite) TestExternalResult() {
	id := s.newSession()
	base := "/api/v1/sessions/" + id

	code, _ := s.do(http.MethodPost, base+"/module", map[string]string{"module": "maternal"})
	s.Require().Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodPost, base+"/result", map[string]any{"module": "maternal", "riskLevel": "severe", "confidence": 50})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, base+"/result", map[string]any{"module": "tb", "riskLevel": "low", "confidence": 50})
	s.Equal(http.StatusConflict, code)

	code, env := s.do(http.MethodPost, base+"/result", map[string]any{"module": "maternal", "riskLevel": "low", "confidence": 91, "recommendation": "Routine care"})
	s.Require().Equal(http.StatusCreated, code, env.Error)
	var outcome screening.Outcome
	s.decode(env, &outcome)
	s.Empty(outcome.Screening.PatientID)
	s.False(outcome.ReferToPHC)
}

func (s *APISuite) TestWorkflowErrors() {
	id := s.newSession()
	base := "/api/v1/sessions/" + id

	code, _ := s.do(http.MethodPost, base+"/patient", map[string]any{"age": 20})
	s.Equal(http.StatusBadRequest, code)
	code, _ = s.do(http.MethodPost, base+"/patient", map[string]any{"name": "Ravi", "symptoms": []string{"Hiccups"}})
	s.Equal(http.StatusBadRequest, code)

	code, env := s.do(http.MethodPost, base+"/module", map[string]string{"module": "dental"})
	s.Require().Equal(http.StatusOK, code)
	var selected struct {
		Selected bool `json:"selected"`
	}
	s.decode(env, &selected)
	s.False(selected.Selected)

	code, _ = s.do(http.MethodPost, base+"/acknowledge", nil)
	s.Equal(http.StatusConflict, code)

	code, _ = s.upload(base+"/analysis", wavCapture)
	s.Equal(http.StatusConflict, code)

	code, _ = s.do(http.MethodPut, base+"/patient/missing", nil)
	s.Equal(http.StatusNotFound, code)

	code, _ = s.do(http.MethodPost, base+"/module", map[string]string{"module": "skin"})
	s.Require().Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodPost, base+"/analysis", map[string]bool{"captureDenied": true})
	s.Equal(http.StatusUnprocessableEntity, code)
	code, _ = s.upload(base+"/analysis", wavCapture)
	s.Equal(http.StatusUnprocessableEntity, code)
	code, _ = s.upload(base+"/analysis", make([]byte, 8192))
	s.Equal(http.StatusUnprocessableEntity, code)

	code, _ = s.do(http.MethodPost, base+"/module", map[string]string{"module": "triage"})
	s.Require().Equal(http.StatusOK, code)
	code, _ = s.upload(base+"/analysis", wavCapture)
	s.Equal(http.StatusBadRequest, code)
	code, _ = s.do(http.MethodPost, base+"/analysis", map[string]any{"symptoms": []string{"Hiccups"}})
	s.Equal(http.StatusBadRequest, code)
	code, _ = s.do(http.MethodPost, base+"/analysis", map[string]any{"answers": map[string]bool{"appetite": true}})
	s.Equal(http.StatusBadRequest, code)

	s.analyzer.Err = assertErr("scorer offline")
	code, _ = s.do(http.MethodPost, base+"/analysis", map[string]any{"symptoms": []string{"Vomiting"}})
	s.Equal(http.StatusBadGateway, code)

	code, env = s.do(http.MethodGet, base, nil)
	s.Require().Equal(http.StatusOK, code)
	var snap screening.Snapshot
	s.decode(env, &snap)
	s.Equal(screening.StateModuleInProgress, snap.State)

	code, _ = s.do(http.MethodPost, "/api/v1/sessions/nope/module", map[string]string{"module": "tb"})
	s.Equal(http.StatusNotFound, code)
}

func (s *APISuite) TestListPatients() {
	high := models.Patient{Name: "Anna"}
	s.Require().NoError(s.store.SavePatient(s.T().Context(), &high))
	unscreened := models.Patient{Name: "Hannah"}
	s.Require().NoError(s.store.SavePatient(s.T().Context(), &unscreened))
	s.Require().NoError(s.store.SaveScreening(s.T().Context(), &models.Screening{PatientID: high.ID, ModuleType: models.ModuleSkin, RiskLevel: models.RiskHigh}))

	code, env := s.do(http.MethodGet, "/api/v1/patients?filter=high", nil)
	s.Require().Equal(http.StatusOK, code)
	var summaries []screening.PatientSummary
	s.decode(env, &summaries)
	s.Require().Len(summaries, 1)
	s.Equal(high.ID, summaries[0].ID)

	code, env = s.do(http.MethodGet, "/api/v1/patients?q=ANN", nil)
	s.Require().Equal(http.StatusOK, code)
	s.decode(env, &summaries)
	s.Len(summaries, 2)

	code, _ = s.do(http.MethodGet, "/api/v1/patients?filter=severe", nil)
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/v1/patients/"+unscreened.ID+"/screenings/latest", nil)
	s.Equal(http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/api/v1/patients/missing", nil)
	s.Equal(http.StatusNotFound, code)

	code, env = s.do(http.MethodGet, "/api/v1/patients/"+high.ID+"/screenings", nil)
	s.Require().Equal(http.StatusOK, code)
	var screenings []models.Screening
	s.decode(env, &screenings)
	s.Len(screenings, 1)
}

func (s *APISuite) TestSettings() {
	code, _ := s.do(http.MethodGet, "/api/v1/settings/"+screening.SettingPHC, nil)
	s.Equal(http.StatusNotFound, code)

	code, env := s.do(http.MethodPut, "/api/v1/settings/"+screening.SettingPHC, `{"name":"Village PHC","distanceKm":3}`)
	s.Require().Equal(http.StatusOK, code, env.Error)

	code, env = s.do(http.MethodGet, "/api/v1/settings/"+screening.SettingPHC, nil)
	s.Require().Equal(http.StatusOK, code)
	var setting struct {
		Key   string            `json:"key"`
		Value screening.PHCInfo `json:"value"`
	}
	s.decode(env, &setting)
	s.Equal("Village PHC", setting.Value.Name)

	code, _ = s.do(http.MethodPut, "/api/v1/settings/lang", `{not json`)
	s.Equal(http.StatusBadRequest, code)
	code, _ = s.do(http.MethodPut, "/api/v1/settings/auth.pin_hash", `"x"`)
	s.Equal(http.StatusForbidden, code)
	code, _ = s.do(http.MethodGet, "/api/v1/settings/auth.pin_hash", nil)
	s.Equal(http.StatusForbidden, code)
}

func (s *APISuite) TestCatalog() {
	code, env := s.do(http.MethodGet, "/api/v1/catalog", nil)
	s.Require().Equal(http.StatusOK, code)
	var catalog struct {
		Modules []models.Module `json:"modules"`
	}
	s.decode(env, &catalog)
	s.Len(catalog.Modules, 5)
}

func (s *APISuite) TestDeviceLock() {
	s.cfg.Auth.Enabled = true
	s.router = s.newRouter()

	code, _ := s.do(http.MethodGet, "/api/v1/dashboard", nil)
	s.Equal(http.StatusUnauthorized, code)

	code, env := s.do(http.MethodGet, "/api/v1/auth/status", nil)
	s.Require().Equal(http.StatusOK, code)
	s.JSONEq(`{"enabled":true,"pinSet":false}`, string(env.Data))

	code, _ = s.do(http.MethodPost, "/api/v1/auth/unlock", map[string]string{"pin": "1234"})
	s.Equal(http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/api/v1/auth/pin", map[string]string{"pin": "12ab"})
	s.Equal(http.StatusBadRequest, code)
	code, _ = s.do(http.MethodPost, "/api/v1/auth/pin", map[string]string{"pin": "1234"})
	s.Require().Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodPost, "/api/v1/auth/pin", map[string]string{"pin": "5678"})
	s.Equal(http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/v1/auth/unlock", map[string]string{"pin": "0000"})
	s.Equal(http.StatusUnauthorized, code)
	code, env = s.do(http.MethodPost, "/api/v1/auth/unlock", map[string]string{"pin": "1234"})
	s.Require().Equal(http.StatusOK, code)
	var unlocked struct {
		AccessToken string `json:"accessToken"`
	}
	s.decode(env, &unlocked)
	s.Require().NotEmpty(unlocked.AccessToken)

	code, _ = s.request(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil), unlocked.AccessToken)
	s.Equal(http.StatusOK, code)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
