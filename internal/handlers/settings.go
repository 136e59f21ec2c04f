package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"aasha-server/internal/models"
	"aasha-server/internal/store"
	"aasha-server/internal/utils"
)

// SettingHandler reads and writes app settings as raw JSON values.
type SettingHandler struct {
	Store *store.Store
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(st *store.Store) *SettingHandler {
	return &SettingHandler{Store: st}
}

// GetSetting returns the value stored under :key.
func (h *SettingHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	if strings.HasPrefix(key, ReservedSettingPrefix) {
		utils.Forbidden(c, "Setting is reserved")
		return
	}
	setting, ok, err := h.Store.Settings.Get(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		utils.NotFound(c, "Setting not found")
		return
	}
	utils.Success(c, "Setting retrieved", setting)
}

// PutSetting stores the request body, which must be a JSON value, under
// :key.
func (h *SettingHandler) PutSetting(c *gin.Context) {
	key := c.Param("key")
	if strings.HasPrefix(key, ReservedSettingPrefix) {
		utils.Forbidden(c, "Setting is reserved")
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if !json.Valid(raw) {
		utils.BadRequest(c, "Setting value must be valid JSON")
		return
	}

	setting := models.Setting{Key: key, Value: datatypes.JSON(raw)}
	if err := h.Store.Settings.Put(c.Request.Context(), &setting); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Setting saved", setting)
}
