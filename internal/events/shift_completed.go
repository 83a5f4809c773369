package events

import "time"

// ShiftCompletedTopic dikonsumsi worker compliance: tiap shift selesai
// dievaluasi ulang terhadap aturan ketenagakerjaan yurisdiksinya.
const ShiftCompletedTopic = "pay.shift.completed.v1"

type ShiftCompletedEvent struct {
	EventType   string  `json:"event_type"`
	ShiftID     string  `json:"shift_id"`
	WorkerID    string  `json:"worker_id"`
	CountryCode string  `json:"country_code"`
	StateCode   *string `json:"state_code,omitempty"`
	City        *string `json:"city,omitempty"`

	ShiftStart time.Time `json:"shift_start"`
	ShiftEnd   time.Time `json:"shift_end"`

	// Agregat rolling milik worker, dihitung sistem shift hulu.
	HoursInPeriod      map[string]string `json:"hours_in_period,omitempty"`
	NightHoursInPeriod map[string]string `json:"night_hours_in_period,omitempty"`
	RestGapHours       *string           `json:"rest_gap_hours,omitempty"`
	WorkerAge          *int              `json:"worker_age,omitempty"`
	HourlyRate         *string           `json:"hourly_rate,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}
