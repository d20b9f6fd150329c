package models

import "time"

type SystemSetting struct {
	ID              int       `json:"id"`
	SettingKey      string    `json:"setting_key"`
	SettingValue    string    `json:"setting_value"`
	Description     string    `json:"description"`
	UpdatedAt       time.Time `json:"updated_at"`
	UpdatedByUserID int       `json:"updated_by_user_id"`
}

type UpdateSettingRequest struct {
	SettingValue string `json:"setting_value"`
}

// Setting keys for the auto-billing gate.
const (
	SettingAutoBillingEnabled    = "autobilling_enabled"
	SettingAutoBillingDayOfMonth = "autobilling_day_of_month"
	SettingAutoBillingLastRun    = "autobilling_last_run"
)

// Setting keys for online payments.
const (
	SettingOnlinePaymentEnabled  = "online_payment_enabled"
	SettingRazorpayKeyID         = "razorpay_key_id"
	SettingRazorpayKeySecret     = "razorpay_key_secret"
	SettingRazorpayWebhookSecret = "razorpay_webhook_secret"
)
