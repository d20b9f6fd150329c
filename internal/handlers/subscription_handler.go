package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cabletv-backend/internal/middleware"
	"cabletv-backend/internal/models"
	"cabletv-backend/internal/services"
	"cabletv-backend/internal/store"
	"cabletv-backend/pkg/utils"
)

type SubscriptionHandler struct {
	subs *services.SubscriptionService
}

func NewSubscriptionHandler(subs *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.List(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list subscriptions")
		return
	}
	utils.JSON(w, http.StatusOK, subs)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	sub, err := h.subs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Subscription not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to get subscription")
		return
	}
	utils.JSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) Provision(w http.ResponseWriter, r *http.Request) {
	var req models.ProvisionSubscriptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	created, err := h.subs.Provision(r.Context(), req, userID)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, created)
}

func (h *SubscriptionHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req models.AssignSubscriptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.subs.Assign(r.Context(), req, userID); err != nil {
		h.writeAssignError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Subscriptions assigned"})
}

func (h *SubscriptionHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	var req models.AssignSubscriptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.subs.Reassign(r.Context(), req, userID); err != nil {
		h.writeAssignError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Subscriptions transferred"})
}

func (h *SubscriptionHandler) writeAssignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAlreadyAssigned):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoSubscriptions):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "Subscription not found")
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *SubscriptionHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	var req models.UnassignSubscriptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.subs.Unassign(r.Context(), req, userID); err != nil {
		h.writeAssignError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Subscriptions released"})
}

func (h *SubscriptionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	var req models.SetSubscriptionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.subs.SetStatus(r.Context(), id, req, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			utils.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			utils.Error(w, http.StatusNotFound, "Subscription not found")
		default:
			utils.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
}

// ValidateAvailability classifies VC numbers before a bulk assign.
func (h *SubscriptionHandler) ValidateAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VCNumbers []string `json:"vc_numbers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.VCNumbers) == 0 {
		utils.Error(w, http.StatusBadRequest, "vc_numbers is required")
		return
	}

	result, err := h.subs.ValidateAvailability(r.Context(), req.VCNumbers)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to validate availability")
		return
	}
	utils.JSON(w, http.StatusOK, result)
}
