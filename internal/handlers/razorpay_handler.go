package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"cabletv-backend/internal/services"
	"cabletv-backend/pkg/utils"
)

type RazorpayHandler struct {
	razorpay *services.RazorpayService
}

func NewRazorpayHandler(razorpay *services.RazorpayService) *RazorpayHandler {
	return &RazorpayHandler{razorpay: razorpay}
}

func (h *RazorpayHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if !h.razorpay.IsEnabled(r.Context()) {
		utils.Error(w, http.StatusServiceUnavailable, "Online payments are disabled")
		return
	}

	var req struct {
		CustomerID int     `json:"customer_id"`
		Amount     float64 `json:"amount"`
		Receipt    string  `json:"receipt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.razorpay.CreateOrder(r.Context(), req.CustomerID, req.Amount, req.Receipt)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// VerifyPayment handles the checkout callback after the customer pays. On a
// valid signature the capture is booked as an online payment.
func (h *RazorpayHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID        int     `json:"customer_id"`
		BillID            *int    `json:"bill_id"`
		Amount            float64 `json:"amount"`
		RazorpayOrderID   string  `json:"razorpay_order_id"`
		RazorpayPaymentID string  `json:"razorpay_payment_id"`
		RazorpaySignature string  `json:"razorpay_signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.razorpay.VerifyPaymentSignature(r.Context(),
		req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		utils.Error(w, http.StatusBadRequest, "Invalid payment signature")
		return
	}

	payment, err := h.razorpay.RecordCapturedPayment(r.Context(),
		req.CustomerID, req.BillID, req.Amount, req.RazorpayOrderID, req.RazorpayPaymentID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, payment)
}

// Webhook handles asynchronous payment.captured events from the gateway.
func (h *RazorpayHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !h.razorpay.VerifyWebhookSignature(r.Context(), body, signature) {
		utils.Error(w, http.StatusUnauthorized, "Invalid webhook signature")
		return
	}

	var event struct {
		Event   string `json:"event"`
		Payload struct {
			Payment struct {
				Entity struct {
					ID      string `json:"id"`
					OrderID string `json:"order_id"`
					Amount  int64  `json:"amount"`
					Notes   struct {
						CustomerID string `json:"customer_id"`
					} `json:"notes"`
				} `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	// Only captures book a payment; everything else is acknowledged and
	// dropped so the gateway stops retrying.
	if event.Event != "payment.captured" {
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	entity := event.Payload.Payment.Entity
	customerID, _ := strconv.Atoi(entity.Notes.CustomerID)
	if customerID == 0 {
		log.Printf("[Razorpay] webhook capture %s has no customer_id note, skipped", entity.ID)
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	amount := float64(entity.Amount) / 100
	if _, err := h.razorpay.RecordCapturedPayment(r.Context(),
		customerID, nil, amount, entity.OrderID, entity.ID); err != nil {
		log.Printf("[Razorpay] webhook capture %s failed to record: %v", entity.ID, err)
		utils.Error(w, http.StatusInternalServerError, "Failed to record payment")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
