package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cabletv-backend/internal/handlers"
	"cabletv-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	customerHandler *handlers.CustomerHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	packageHandler *handlers.PackageHandler,
	billHandler *handlers.BillHandler,
	paymentHandler *handlers.PaymentHandler,
	reconcileHandler *handlers.ReconcileHandler,
	systemSettingHandler *handlers.SystemSettingHandler,
	razorpayHandler *handlers.RazorpayHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Public webhook - authenticated by signature, not JWT
	r.HandleFunc("/webhooks/razorpay", razorpayHandler.Webhook).Methods("POST")

	authAPI := r.PathPrefix("/api/auth").Subrouter()
	authAPI.Use(authMiddleware.Authenticate)
	authAPI.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Protected API routes - Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.List).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.Create).Methods("POST")
	customersAPI.HandleFunc("/{id}", customerHandler.Get).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.Update).Methods("PUT")
	customersAPI.HandleFunc("/{id}/reconcile", reconcileHandler.ReconcileCustomer).Methods("POST")

	// Protected API routes - Subscriptions (VC inventory)
	subscriptionsAPI := r.PathPrefix("/api/subscriptions").Subrouter()
	subscriptionsAPI.Use(authMiddleware.Authenticate)
	subscriptionsAPI.HandleFunc("", subscriptionHandler.List).Methods("GET")
	subscriptionsAPI.HandleFunc("", subscriptionHandler.Provision).Methods("POST")
	subscriptionsAPI.HandleFunc("/assign", subscriptionHandler.Assign).Methods("POST")
	subscriptionsAPI.HandleFunc("/reassign", subscriptionHandler.Reassign).Methods("POST")
	subscriptionsAPI.HandleFunc("/unassign", subscriptionHandler.Unassign).Methods("POST")
	subscriptionsAPI.HandleFunc("/validate-availability", subscriptionHandler.ValidateAvailability).Methods("POST")
	subscriptionsAPI.HandleFunc("/{id}", subscriptionHandler.Get).Methods("GET")
	subscriptionsAPI.HandleFunc("/{id}/status", subscriptionHandler.SetStatus).Methods("PATCH")

	// Protected API routes - Packages (read-only catalog)
	packagesAPI := r.PathPrefix("/api/packages").Subrouter()
	packagesAPI.Use(authMiddleware.Authenticate)
	packagesAPI.HandleFunc("", packageHandler.List).Methods("GET")
	packagesAPI.HandleFunc("/{id}", packageHandler.Get).Methods("GET")

	// Protected API routes - Bills
	billsAPI := r.PathPrefix("/api/bills").Subrouter()
	billsAPI.Use(authMiddleware.Authenticate)
	billsAPI.HandleFunc("", billHandler.List).Methods("GET")
	billsAPI.HandleFunc("/generate", billHandler.Generate).Methods("POST")
	billsAPI.HandleFunc("/{id:[0-9]+}", billHandler.Get).Methods("GET")
	billsAPI.Handle("/month/{month}", authMiddleware.RequireAdmin(
		http.HandlerFunc(billHandler.DeleteMonth))).Methods("DELETE")

	// Protected API routes - Payments
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("", paymentHandler.List).Methods("GET")
	paymentsAPI.HandleFunc("", paymentHandler.Collect).Methods("POST")
	paymentsAPI.HandleFunc("/razorpay/order", razorpayHandler.CreateOrder).Methods("POST")
	paymentsAPI.HandleFunc("/razorpay/verify", razorpayHandler.VerifyPayment).Methods("POST")
	paymentsAPI.HandleFunc("/{id}", paymentHandler.Get).Methods("GET")
	paymentsAPI.HandleFunc("/{id}/receipt", paymentHandler.Receipt).Methods("GET")
	paymentsAPI.Handle("/{id}", authMiddleware.RequireAdmin(
		http.HandlerFunc(paymentHandler.Delete))).Methods("DELETE")

	// Protected API routes - System Settings (admin only)
	settingsAPI := r.PathPrefix("/api/settings").Subrouter()
	settingsAPI.Use(authMiddleware.Authenticate)
	settingsAPI.HandleFunc("", systemSettingHandler.List).Methods("GET")
	settingsAPI.HandleFunc("/autobilling", systemSettingHandler.AutoBillingStatus).Methods("GET")
	settingsAPI.Handle("/autobilling", authMiddleware.RequireAdmin(
		http.HandlerFunc(systemSettingHandler.ConfigureAutoBilling))).Methods("PUT")
	settingsAPI.Handle("/autobilling/run", authMiddleware.RequireAdmin(
		http.HandlerFunc(systemSettingHandler.RunAutoBillingNow))).Methods("POST")
	settingsAPI.HandleFunc("/{key}", systemSettingHandler.Get).Methods("GET")
	settingsAPI.Handle("/{key}", authMiddleware.RequireAdmin(
		http.HandlerFunc(systemSettingHandler.Update))).Methods("PUT")

	// Health endpoint (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.Check).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
