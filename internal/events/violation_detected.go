package events

import "time"

const ViolationDetectedTopic = "pay.violation.detected.v1"

type ViolationDetectedEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	ViolationCode string    `json:"violation_code"`
	WorkerID      string    `json:"worker_id"`
	RuleCode      string    `json:"rule_code"`
	Severity      string    `json:"severity"`
	WasBlocked    bool      `json:"was_blocked"`
	OccurredAt    time.Time `json:"occurred_at"`
}
