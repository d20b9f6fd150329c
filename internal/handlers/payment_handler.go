package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cabletv-backend/internal/middleware"
	"cabletv-backend/internal/models"
	"cabletv-backend/internal/services"
	"cabletv-backend/internal/store"
	"cabletv-backend/pkg/utils"
)

type PaymentHandler struct {
	payments     *services.PaymentService
	customers    *services.CustomerService
	operatorName string
}

func NewPaymentHandler(payments *services.PaymentService, customers *services.CustomerService, operatorName string) *PaymentHandler {
	return &PaymentHandler{payments: payments, customers: customers, operatorName: operatorName}
}

func (h *PaymentHandler) Collect(w http.ResponseWriter, r *http.Request) {
	var req models.CollectPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	req.CollectedBy = userID

	payment, err := h.payments.CollectPayment(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount),
			errors.Is(err, services.ErrAmountTooLarge),
			errors.Is(err, services.ErrBillCustomerMismatch):
			utils.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrOverpayment):
			utils.Error(w, http.StatusConflict, err.Error())
		case errors.Is(err, store.ErrNotFound):
			utils.Error(w, http.StatusNotFound, err.Error())
		default:
			utils.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	utils.JSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	if customerID := r.URL.Query().Get("customer_id"); customerID != "" {
		id, err := strconv.Atoi(customerID)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid customer_id")
			return
		}
		payments, err := h.payments.ListByCustomer(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "Failed to list payments")
			return
		}
		utils.JSON(w, http.StatusOK, payments)
		return
	}

	payments, err := h.payments.List(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list payments")
		return
	}
	utils.JSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}

	payment, err := h.payments.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Payment not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to get payment")
		return
	}
	utils.JSON(w, http.StatusOK, payment)
}

// Delete removes a payment and re-reconciles the customer. Admin only.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}

	if err := h.payments.DeletePayment(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Payment not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Payment deleted"})
}

// Receipt streams the payment receipt as a printable PDF.
func (h *PaymentHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}

	payment, err := h.payments.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Payment not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to get payment")
		return
	}

	customer, err := h.customers.Get(r.Context(), payment.CustomerID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to load customer")
		return
	}

	pdf, err := services.BuildReceiptPDF(payment, customer, h.operatorName)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to render receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=%s.pdf", payment.ReceiptNumber))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
