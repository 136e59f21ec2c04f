package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"aasha-server/internal/config"
	"aasha-server/internal/store"
	"aasha-server/internal/utils"
)

const (
	// ReservedSettingPrefix marks settings only the auth handler may write.
	ReservedSettingPrefix = "auth."
	settingPINHash        = ReservedSettingPrefix + "pin_hash"
)

// AuthHandler handles the device lock.
type AuthHandler struct {
	Store *store.Store
	Cfg   config.AuthConfig
	Log   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(st *store.Store, cfg config.AuthConfig, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Store: st, Cfg: cfg, Log: log}
}

// AuthStatusResponse tells the UI whether to show the lock screen.
type AuthStatusResponse struct {
	Enabled bool `json:"enabled"`
	PINSet  bool `json:"pinSet"`
}

// Status reports whether the lock is on and a PIN exists.
func (h *AuthHandler) Status(c *gin.Context) {
	_, ok, err := h.pinHash(c)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Auth status retrieved", AuthStatusResponse{Enabled: h.Cfg.Enabled, PINSet: ok})
}

// SetPINRequest represents the request body for setting or changing the PIN.
type SetPINRequest struct {
	CurrentPIN string `json:"currentPin"`
	PIN        string `json:"pin" binding:"required,numeric,min=4,max=8"`
}

// SetPIN stores the first PIN, or replaces it when the current one is given.
func (h *AuthHandler) SetPIN(c *gin.Context) {
	var req SetPINRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	hash, ok, err := h.pinHash(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if ok && bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.CurrentPIN)) != nil {
		utils.Unauthorized(c, "Current PIN is incorrect")
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalServerError(c, "Failed to hash PIN: "+err.Error())
		return
	}
	if err := h.Store.SaveSetting(c.Request.Context(), settingPINHash, string(newHash)); err != nil {
		respondError(c, err)
		return
	}
	h.Log.Info("device PIN updated", zap.Bool("changed", ok))
	utils.Success(c, "PIN saved", AuthStatusResponse{Enabled: h.Cfg.Enabled, PINSet: true})
}

// UnlockRequest represents the request body for unlocking the device.
type UnlockRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// UnlockResponse carries the access token for the other API routes.
type UnlockResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// Unlock exchanges the PIN for an access token.
func (h *AuthHandler) Unlock(c *gin.Context) {
	var req UnlockRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	hash, ok, err := h.pinHash(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		utils.Conflict(c, "No PIN has been set on this device")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
		h.Log.Warn("unlock rejected")
		utils.Unauthorized(c, "Invalid PIN")
		return
	}

	token, expiresAt, err := utils.GenerateAccessToken(h.Cfg, time.Now())
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token: "+err.Error())
		return
	}
	utils.Success(c, "Device unlocked", UnlockResponse{AccessToken: token, ExpiresAt: expiresAt.Unix()})
}

func (h *AuthHandler) pinHash(c *gin.Context) (string, bool, error) {
	var hash string
	ok, err := h.Store.GetSetting(c.Request.Context(), settingPINHash, &hash)
	return hash, ok, err
}
