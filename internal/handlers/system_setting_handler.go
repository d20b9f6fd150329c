package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"cabletv-backend/internal/middleware"
	"cabletv-backend/internal/models"
	"cabletv-backend/internal/services"
	"cabletv-backend/internal/store"
	"cabletv-backend/pkg/utils"
)

type SystemSettingHandler struct {
	settings    *services.SystemSettingService
	autoBilling *services.AutoBillingService
}

func NewSystemSettingHandler(settings *services.SystemSettingService, autoBilling *services.AutoBillingService) *SystemSettingHandler {
	return &SystemSettingHandler{settings: settings, autoBilling: autoBilling}
}

func (h *SystemSettingHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.ListSettings(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}
	utils.JSON(w, http.StatusOK, settings)
}

func (h *SystemSettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	setting, err := h.settings.GetSetting(r.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Setting not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to get setting")
		return
	}
	utils.JSON(w, http.StatusOK, setting)
}

func (h *SystemSettingHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req models.UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.settings.UpdateSetting(r.Context(), key, req.SettingValue, userID); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Setting updated"})
}

func (h *SystemSettingHandler) AutoBillingStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.autoBilling.Status(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to read auto-billing status")
		return
	}
	utils.JSON(w, http.StatusOK, status)
}

func (h *SystemSettingHandler) ConfigureAutoBilling(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled    bool `json:"enabled"`
		DayOfMonth int  `json:"day_of_month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.autoBilling.Configure(r.Context(), req.Enabled, req.DayOfMonth, userID); err != nil {
		if errors.Is(err, services.ErrInvalidDueDay) {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Auto-billing configured"})
}

// RunAutoBillingNow forces an immediate gate check; useful after fixing a
// misconfigured schedule.
func (h *SystemSettingHandler) RunAutoBillingNow(w http.ResponseWriter, r *http.Request) {
	ran, err := h.autoBilling.CheckAndRun(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"triggered": ran})
}
