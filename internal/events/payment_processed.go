package events

import "time"

const PaymentProcessedTopic = "pay.payment.processed.v1"

type PaymentProcessedEvent struct {
	EventType        string    `json:"event_type"`
	RequestID        string    `json:"request_id,omitempty"`
	CalculationID    string    `json:"calculation_id"`
	WorkerID         string    `json:"worker_id"`
	JurisdictionCode string    `json:"jurisdiction_code"`
	GrossAmount      string    `json:"gross_amount"`
	NetAmount        string    `json:"net_amount"`
	OccurredAt       time.Time `json:"occurred_at"`
}
