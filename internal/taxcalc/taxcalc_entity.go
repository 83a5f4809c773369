package taxcalc

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Calculation types.
const (
	TypeShiftPayment = "shift_payment"
	TypeBonus        = "bonus"
	TypeAdjustment   = "adjustment"
	TypeRefund       = "refund"
	TypeEstimate     = "estimate"
)

// TaxCalculation adalah baris audit immutable: dibuat sekali per event
// pembayaran/estimasi, tidak pernah di-update. Koreksi = baris adjustment
// baru yang menunjuk baris lama via CorrectsCalculationID.
type TaxCalculation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	WorkerID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_calc_worker_date"`
	JurisdictionID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ShiftID        *uuid.UUID `gorm:"type:uuid;index"`

	GrossAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IncomeTax        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SocialSecurity   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Withholding      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	VAT              decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EffectiveTaxRate decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`

	Breakdown    []BreakdownLine `gorm:"type:jsonb;serializer:json"`
	CurrencyCode string          `gorm:"type:varchar(3);not null"`

	CalculationType string `gorm:"type:varchar(20);not null;index"`
	// false untuk estimate/preview: baris tercatat tapi tidak dibayarkan.
	IsApplied bool `gorm:"not null;default:false;index"`

	CorrectsCalculationID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"index:idx_calc_worker_date"`
}

func (TaxCalculation) TableName() string {
	return "tax_calculations"
}
