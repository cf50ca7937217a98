package audit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is emitted from domain logic to capture key lifecycle and fraud
// actions. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time
	Action        string
	CustomerID    string
	ApplicationID string
	Amount        decimal.NullDecimal
	Reasons       []string
	Actor         string
	RequestID     string
	Detail        string
}

type AuditEvent string

const (
	EventCustomerRegistered AuditEvent = "customer_registered"
	EventLoanSubmitted      AuditEvent = "loan_submitted"
	EventLoanFlagged        AuditEvent = "loan_flagged"
	EventLoanApproved       AuditEvent = "loan_approved"
	EventLoanRejected       AuditEvent = "loan_rejected"
	EventFraudAlertSent     AuditEvent = "fraud_alert_sent"
)
