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

type BillHandler struct {
	billing *services.BillingService
}

func NewBillHandler(billing *services.BillingService) *BillHandler {
	return &BillHandler{billing: billing}
}

// Generate runs a billing period for all customers or the requested subset.
func (h *BillHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateBillsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Month == "" {
		utils.Error(w, http.StatusBadRequest, "month is required (YYYY-MM)")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	req.GeneratedBy = userID

	result, err := h.billing.GenerateBills(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrPeriodAlreadyBilled) {
			utils.Error(w, http.StatusConflict, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid bill ID")
		return
	}

	bill, err := h.billing.GetBill(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Bill not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to get bill")
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

// List serves bills by month (?month=YYYY-MM) or customer (?customer_id=N).
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	if month := r.URL.Query().Get("month"); month != "" {
		bills, err := h.billing.ListBillsByMonth(r.Context(), month)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, bills)
		return
	}

	if customerID := r.URL.Query().Get("customer_id"); customerID != "" {
		id, err := strconv.Atoi(customerID)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid customer_id")
			return
		}
		bills, err := h.billing.ListBillsByCustomer(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "Failed to list bills")
			return
		}
		utils.JSON(w, http.StatusOK, bills)
		return
	}

	utils.Error(w, http.StatusBadRequest, "month or customer_id query parameter required")
}

// DeleteMonth wipes a period so it can be regenerated. Admin only.
func (h *BillHandler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	month := mux.Vars(r)["month"]

	deleted, err := h.billing.DeleteBillsForMonth(r.Context(), month)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Bills deleted",
		"deleted": deleted,
	})
}
