package violation

import "github.com/shopspring/decimal"

type ReviewViolationRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

type ViolationDataResponse struct {
	Actual      decimal.Decimal `json:"actual"`
	Limit       decimal.Decimal `json:"limit"`
	PercentOver decimal.Decimal `json:"percent_over"`
	Period      string          `json:"period,omitempty"`
	Unit        string          `json:"unit"`
}

type ViolationResponse struct {
	ID               string                `json:"id"`
	ViolationCode    string                `json:"violation_code"`
	WorkerID         string                `json:"worker_id"`
	ShiftID          *string               `json:"shift_id,omitempty"`
	JurisdictionCode string                `json:"jurisdiction_code"`
	RuleCode         string                `json:"rule_code"`
	RuleType         string                `json:"rule_type"`
	Data             ViolationDataResponse `json:"data"`
	Severity         string                `json:"severity"`
	Status           string                `json:"status"`
	WasBlocked       bool                  `json:"was_blocked"`
	DetectedAt       string                `json:"detected_at"`
	Transitions      []TransitionResponse  `json:"transitions,omitempty"`
}

type TransitionResponse struct {
	FromStatus string  `json:"from_status"`
	ToStatus   string  `json:"to_status"`
	ActorID    *string `json:"actor_id,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	At         string  `json:"at"`
}

type ViolationListResponse struct {
	Violations []ViolationResponse `json:"violations"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}
