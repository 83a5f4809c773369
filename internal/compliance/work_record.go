package compliance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkRecord adalah potret kerja yang dievaluasi: shift yang diusulkan plus
// agregat rolling yang sudah dihitung pemanggil. Field pointer nil berarti
// metrik itu tidak tersedia; aturan yang membutuhkannya gagal per-item.
type WorkRecord struct {
	ShiftID    *uuid.UUID
	ShiftStart time.Time
	ShiftEnd   time.Time

	// HoursInPeriod berisi total jam kerja per periode rolling
	// ("day", "week", "month"), termasuk shift yang diusulkan.
	HoursInPeriod map[string]decimal.Decimal

	// RestGapHours adalah jarak ke shift sebelumnya.
	RestGapHours *decimal.Decimal

	WorkerAge  *int
	HourlyRate *decimal.Decimal

	// NightHoursInPeriod seperti HoursInPeriod tapi hanya jam malam.
	NightHoursInPeriod map[string]decimal.Decimal
}

// Identity dipakai sebagai komponen dedup key pelanggaran: shift id kalau
// ada, kalau tidak tanggal mulai shift.
func (w WorkRecord) Identity() string {
	if w.ShiftID != nil {
		return w.ShiftID.String()
	}
	return w.ShiftStart.Format("2006-01-02T15:04")
}
