package services

import "errors"

// Validation and conflict errors surfaced to API callers. Handlers map these
// to 4xx responses; anything else is a 500.
var (
	ErrInvalidAmount        = errors.New("payment amount must be greater than zero")
	ErrAmountTooLarge       = errors.New("payment amount exceeds the per-transaction limit")
	ErrOverpayment          = errors.New("payment exceeds the remaining balance of the linked bill")
	ErrBillCustomerMismatch = errors.New("linked bill does not belong to this customer")
	ErrPeriodAlreadyBilled  = errors.New("bills already exist for this period")
	ErrAlreadyAssigned      = errors.New("subscription is already active under another customer")
	ErrNoSubscriptions      = errors.New("no subscriptions specified")
	ErrInvalidStatus        = errors.New("invalid subscription status")
	ErrInvalidDueDay        = errors.New("bill due day must be between 1 and 31")
	ErrInvalidCredentials   = errors.New("invalid email or password")
)
