package models

import "time"

// VCStatus is the lifecycle state of a viewing card / set-top connection.
type VCStatus string

const (
	VCAvailable   VCStatus = "available"
	VCActive      VCStatus = "active"
	VCInactive    VCStatus = "inactive"
	VCMaintenance VCStatus = "maintenance"
)

func (s VCStatus) Valid() bool {
	switch s {
	case VCAvailable, VCActive, VCInactive, VCMaintenance:
		return true
	}
	return false
}

// StatusChange is one append-only entry in a subscription's status history.
type StatusChange struct {
	Status    VCStatus  `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
	ChangedBy int       `json:"changed_by"`
	Reason    string    `json:"reason,omitempty"`
}

// OwnershipEntry records one span of customer ownership. EndDate is nil while
// the span is open; at most one entry per subscription may be open.
type OwnershipEntry struct {
	CustomerID   int        `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// Subscription is a single billable service connection (VC). The histories
// are embedded on the row so a subscription is always read atomically with
// its full history.
type Subscription struct {
	ID               int              `json:"id"`
	VCNumber         string           `json:"vc_number"`
	Status           VCStatus         `json:"status"`
	CustomerID       *int             `json:"customer_id"`
	CustomerName     string           `json:"customer_name,omitempty"`
	PackageID        *int             `json:"package_id"`
	PackageName      string           `json:"package_name,omitempty"`
	StatusHistory    []StatusChange   `json:"status_history"`
	OwnershipHistory []OwnershipEntry `json:"ownership_history"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// OpenOwnership returns the currently open ownership entry, if any.
func (s *Subscription) OpenOwnership() *OwnershipEntry {
	for i := range s.OwnershipHistory {
		if s.OwnershipHistory[i].EndDate == nil {
			return &s.OwnershipHistory[i]
		}
	}
	return nil
}

type AssignSubscriptionsRequest struct {
	SubscriptionIDs []int  `json:"subscription_ids"`
	CustomerID      int    `json:"customer_id"`
	CustomerName    string `json:"customer_name"`
	PackageID       *int   `json:"package_id"`
	PackageName     string `json:"package_name"`
	Reason          string `json:"reason"`
}

type UnassignSubscriptionsRequest struct {
	SubscriptionIDs []int  `json:"subscription_ids"`
	Reason          string `json:"reason"`
}

type ProvisionSubscriptionsRequest struct {
	VCNumbers []string `json:"vc_numbers"`
	PackageID *int     `json:"package_id"`
}

type SetSubscriptionStatusRequest struct {
	Status VCStatus `json:"status"`
	Reason string   `json:"reason"`
}

// AvailabilityResult classifies requested VC numbers before a bulk assign.
type AvailabilityResult struct {
	Available   []string             `json:"available"`
	Unavailable []string             `json:"unavailable"`
	NotFound    []string             `json:"not_found"`
	Details     []AvailabilityDetail `json:"details"`
}

type AvailabilityDetail struct {
	VCNumber     string   `json:"vc_number"`
	Status       VCStatus `json:"status,omitempty"`
	CustomerName string   `json:"customer_name,omitempty"`
	Found        bool     `json:"found"`
}
