package bbmmodels

import "time"

type AlertType string

const (
	AlertTypeInfo    AlertType = "info"
	AlertTypeWarning AlertType = "warning"
	AlertTypeError   AlertType = "error"
)

// Valid reports whether t is one of the known alert types
func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeInfo, AlertTypeWarning, AlertTypeError:
		return true
	}
	return false
}

type AlertPriority string

const (
	AlertPriorityLow    AlertPriority = "low"
	AlertPriorityNormal AlertPriority = "normal"
	AlertPriorityHigh   AlertPriority = "high"
)

// Valid reports whether p is one of the known alert priorities
func (p AlertPriority) Valid() bool {
	switch p {
	case AlertPriorityLow, AlertPriorityNormal, AlertPriorityHigh:
		return true
	}
	return false
}

// Alert is a user-facing notification kept in the alert ledger
type Alert struct {
	ID        int64         `json:"id"`
	Message   string        `json:"message"`
	Type      AlertType     `json:"type"`
	Priority  AlertPriority `json:"priority"`
	Timestamp time.Time     `json:"timestamp"`
	Read      bool          `json:"read"`
	ReadAt    *time.Time    `json:"readAt,omitempty"`
}
