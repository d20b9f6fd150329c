package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cabletv-backend/internal/services"
	"cabletv-backend/internal/store"
	"cabletv-backend/pkg/utils"
)

// ReconcileHandler exposes manual reconciliation, used after out-of-band
// data fixes.
type ReconcileHandler struct {
	reconciler *services.ReconcileService
	customers  *services.CustomerService
}

func NewReconcileHandler(reconciler *services.ReconcileService, customers *services.CustomerService) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler, customers: customers}
}

// ReconcileCustomer re-derives bill statuses and the outstanding balance for
// one customer and returns the refreshed record.
func (h *ReconcileHandler) ReconcileCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	if err := h.reconciler.ReconcileCustomer(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Customer not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to reload customer")
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}
