package payment

import (
	"gigpay/internal/compliance"
	"gigpay/internal/taxcalc"
)

type WorkRecordRequest struct {
	ShiftID    *string `json:"shift_id" binding:"omitempty,uuid"`
	ShiftStart string  `json:"shift_start" binding:"required"`
	ShiftEnd   string  `json:"shift_end" binding:"required"`

	HoursInPeriod      map[string]string `json:"hours_in_period"`
	NightHoursInPeriod map[string]string `json:"night_hours_in_period"`
	RestGapHours       *string           `json:"rest_gap_hours"`
	WorkerAge          *int              `json:"worker_age"`
	HourlyRate         *string           `json:"hourly_rate"`
}

type ProcessPaymentRequest struct {
	WorkerID    string  `json:"worker_id" binding:"required,uuid"`
	Country     string  `json:"country" binding:"required,len=2"`
	State       *string `json:"state"`
	City        *string `json:"city"`
	GrossAmount string  `json:"gross_amount" binding:"required"`

	// WorkRecord nil berarti tidak ada evaluasi kepatuhan (mis: bonus tanpa
	// shift); keputusan kembali kosong dan tidak memblokir.
	WorkRecord *WorkRecordRequest `json:"work_record"`
}

type PaymentResponse struct {
	Calculation taxcalc.CalculationResponse `json:"calculation"`
	Compliance  compliance.Decision         `json:"compliance"`
}

type BatchRequest struct {
	Items []ProcessPaymentRequest `json:"items" binding:"required,min=1,dive"`
}

type BatchItemResult struct {
	Index   int              `json:"index"`
	Payment *PaymentResponse `json:"payment,omitempty"`
	Error   *string          `json:"error,omitempty"`
}

type BatchResponse struct {
	Results   []BatchItemResult `json:"results"`
	Processed int               `json:"processed"`
	Blocked   int               `json:"blocked"`
	Failed    int               `json:"failed"`
}
