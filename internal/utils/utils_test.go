package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aasha-server/internal/config"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "s3cret", JWTExpirationMinutes: 10}

	token, expiresAt, err := GenerateAccessToken(cfg, time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, time.Second)

	claims, err := ValidateToken(token, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, DeviceSubject, claims.Subject)

	_, err = ValidateToken(token, "other")
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "s3cret", JWTExpirationMinutes: 5}
	token, _, err := GenerateAccessToken(cfg, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ValidateToken(token, cfg.JWTSecret)
	assert.Error(t, err)
}

func TestAccessTokenNeedsSecret(t *testing.T) {
	_, _, err := GenerateAccessToken(config.AuthConfig{JWTExpirationMinutes: 5}, time.Now())
	assert.Error(t, err)
}

type intakeRequest struct {
	Name     string   `json:"name" binding:"required"`
	Module   string   `json:"module" binding:"omitempty,module"`
	Symptoms []string `json:"symptoms" binding:"dive,intake_symptom"`
}

func TestBindAndValidate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantError  string
	}{
		{name: "valid", body: `{"name":"Devi","module":"tb","symptoms":["Fever"]}`, wantOK: true, wantStatus: http.StatusOK},
		{name: "malformed", body: `{"name":`, wantStatus: http.StatusBadRequest, wantError: "Invalid request payload"},
		{name: "missing name", body: `{}`, wantStatus: http.StatusBadRequest, wantError: "Name must satisfy required"},
		{name: "unknown module", body: `{"name":"x","module":"dental"}`, wantStatus: http.StatusBadRequest, wantError: "Module must satisfy module"},
		{name: "unknown symptom", body: `{"name":"x","symptoms":["Hiccups"]}`, wantStatus: http.StatusBadRequest, wantError: "intake_symptom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req intakeRequest
			ok := BindAndValidate(c, &req)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				return
			}
			assert.Equal(t, tt.wantStatus, w.Code)
			var resp ResponseData
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.wantError)
		})
	}
}

type moduleInputRequest struct {
	Answers  map[string]bool `json:"answers" binding:"dive,keys,warning_sign,endkeys"`
	Symptoms []string        `json:"symptoms" binding:"dive,triage_symptom"`
}

func TestModuleInputRules(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "empty", body: `{}`, want: true},
		{name: "known warning signs", body: `{"answers":{"bleeding":true,"fever":false}}`, want: true},
		{name: "unknown question", body: `{"answers":{"appetite":true}}`},
		{name: "known triage symptoms", body: `{"symptoms":["Vomiting","Wheezing"]}`, want: true},
		{name: "intake symptom is not a triage symptom", body: `{"symptoms":["Night sweats"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req moduleInputRequest
			assert.Equal(t, tt.want, BindAndValidate(c, &req))
			if !tt.want {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	UnprocessableEntity(c, "capture unavailable")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Equal(t, "capture unavailable", resp.Error)
}
