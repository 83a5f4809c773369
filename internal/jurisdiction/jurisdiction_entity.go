package jurisdiction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxBracket adalah satu lapis tarif progresif. Threshold adalah batas atas
// kumulatif penghasilan kena pajak untuk lapis ini; lapis terakhir tetap
// berlaku untuk sisa di atas threshold-nya (uncapped top bracket).
type TaxBracket struct {
	Threshold decimal.Decimal `json:"threshold"`
	Rate      decimal.Decimal `json:"rate"` // persen, mis: 10 = 10%
}

type TaxJurisdiction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	// Identitas: (country, state?, city?). Maksimal satu baris aktif per tuple.
	CountryCode string  `gorm:"type:varchar(2);not null;index:idx_jurisdiction_tuple,unique,where:is_active AND deleted_at IS NULL"`
	StateCode   *string `gorm:"type:varchar(10);index:idx_jurisdiction_tuple,unique,where:is_active AND deleted_at IS NULL"`
	City        *string `gorm:"type:varchar(120);index:idx_jurisdiction_tuple,unique,where:is_active AND deleted_at IS NULL"`

	// Tarif disimpan dalam persen (10.00 = 10%).
	IncomeTaxRate      decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	SocialSecurityRate decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	VATRate            decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	WithholdingRate    decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`

	TaxFreeThreshold decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxBrackets      []TaxBracket    `gorm:"type:jsonb;serializer:json"`

	CurrencyCode  string `gorm:"type:varchar(3);not null"`
	RequiresW9    bool   `gorm:"not null;default:false"`
	RequiresW8BEN bool   `gorm:"not null;default:false"`
	IsActive      bool   `gorm:"not null;default:true;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	// Soft delete: baris historis tetap ada selama masih direferensikan
	// oleh tax_calculations.
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (TaxJurisdiction) TableName() string {
	return "tax_jurisdictions"
}

// Code mengembalikan kode yurisdiksi untuk pencarian aturan ketenagakerjaan,
// mis: "US-CA" atau "DE".
func (j TaxJurisdiction) Code() string {
	if j.StateCode != nil && *j.StateCode != "" {
		return j.CountryCode + "-" + *j.StateCode
	}
	return j.CountryCode
}
