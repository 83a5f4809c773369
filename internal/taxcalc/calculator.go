package taxcalc

import (
	"gigpay/internal/jurisdiction"
	taxerrors "gigpay/internal/taxcalc/errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BreakdownLine adalah satu baris slip gaji: label + delta terhadap net.
// Amount negatif berarti potongan.
type BreakdownLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Breakdown adalah hasil penuh satu kalkulasi. Semua angka sudah dibulatkan
// half-up 2 desimal; pembulatan hanya terjadi di output akhir, bukan di
// tengah bracket walk.
type Breakdown struct {
	Gross          decimal.Decimal
	IncomeTax      decimal.Decimal
	SocialSecurity decimal.Decimal
	Withholding    decimal.Decimal
	// VAT dihitung dan dilaporkan tapi TIDAK dipotong dari net pekerja:
	// VAT adalah pajak sisi bisnis, dicatat untuk pelaporan.
	VAT              decimal.Decimal
	Net              decimal.Decimal
	EffectiveTaxRate decimal.Decimal
	Lines            []BreakdownLine
	CurrencyCode     string
}

// Calculate menghitung pajak untuk gross pada yurisdiksi j.
// Tanpa brackets: pajak flat income_tax_rate x gross. Dengan brackets:
// taxable = max(0, gross - tax_free_threshold), jalankan brackets berurutan,
// lalu tarif bracket terakhir berlaku untuk sisa di atas threshold terakhir.
func Calculate(j *jurisdiction.TaxJurisdiction, gross decimal.Decimal) (Breakdown, error) {
	if gross.IsNegative() {
		return Breakdown{}, taxerrors.ErrNegativeGross
	}
	if err := validateBrackets(j.TaxBrackets); err != nil {
		return Breakdown{}, err
	}

	var incomeTax decimal.Decimal
	if len(j.TaxBrackets) == 0 {
		incomeTax = gross.Mul(j.IncomeTaxRate).Div(hundred)
	} else {
		taxable := gross.Sub(j.TaxFreeThreshold)
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}
		incomeTax = walkBrackets(j.TaxBrackets, taxable)
	}

	socialSecurity := gross.Mul(j.SocialSecurityRate).Div(hundred)
	withholding := gross.Mul(j.WithholdingRate).Div(hundred)
	vat := gross.Mul(j.VATRate).Div(hundred)

	// Bulatkan komponen dulu, lalu turunkan net dari komponen yang sudah
	// dibulatkan supaya invariant net = gross - komponen tetap eksak.
	incomeTax = round2(incomeTax)
	socialSecurity = round2(socialSecurity)
	withholding = round2(withholding)
	vat = round2(vat)
	gross = round2(gross)

	net := gross.Sub(incomeTax).Sub(socialSecurity).Sub(withholding)

	deductions := incomeTax.Add(socialSecurity).Add(withholding)
	effectiveRate := decimal.Zero
	if gross.IsPositive() {
		effectiveRate = deductions.Div(gross).Mul(hundred).Round(2)
	}

	lines := []BreakdownLine{
		{Label: "Gross pay", Amount: gross},
		{Label: "Income tax", Amount: incomeTax.Neg()},
		{Label: "Social security", Amount: socialSecurity.Neg()},
	}
	if withholding.IsPositive() {
		lines = append(lines, BreakdownLine{Label: "Withholding", Amount: withholding.Neg()})
	}
	lines = append(lines, BreakdownLine{Label: "Net pay", Amount: net})

	return Breakdown{
		Gross:            gross,
		IncomeTax:        incomeTax,
		SocialSecurity:   socialSecurity,
		Withholding:      withholding,
		VAT:              vat,
		Net:              net,
		EffectiveTaxRate: effectiveRate,
		Lines:            lines,
		CurrencyCode:     j.CurrencyCode,
	}, nil
}

// walkBrackets adalah fold sekuensial: setiap bracket mengkonsumsi
// min(sisa, threshold - threshold sebelumnya) pada tarifnya; sisa di atas
// threshold terakhir kena tarif bracket terakhir (top bracket tanpa batas).
func walkBrackets(brackets []jurisdiction.TaxBracket, taxable decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	remaining := taxable
	prevThreshold := decimal.Zero

	for _, b := range brackets {
		if !remaining.IsPositive() {
			return tax
		}
		span := b.Threshold.Sub(prevThreshold)
		portion := decimal.Min(remaining, span)
		tax = tax.Add(portion.Mul(b.Rate).Div(hundred))
		remaining = remaining.Sub(portion)
		prevThreshold = b.Threshold
	}

	if remaining.IsPositive() {
		top := brackets[len(brackets)-1]
		tax = tax.Add(remaining.Mul(top.Rate).Div(hundred))
	}
	return tax
}

// validateBrackets gagal cepat pada konfigurasi rusak: threshold tidak naik,
// tarif negatif, tarif > 100. Lebih baik error daripada angka yang terlihat
// masuk akal tapi salah.
func validateBrackets(brackets []jurisdiction.TaxBracket) error {
	prev := decimal.Zero
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(hundred) {
			return taxerrors.ErrInvalidBracketConfig
		}
		if b.Threshold.IsNegative() {
			return taxerrors.ErrInvalidBracketConfig
		}
		if i > 0 && b.Threshold.LessThanOrEqual(prev) {
			return taxerrors.ErrInvalidBracketConfig
		}
		prev = b.Threshold
	}
	return nil
}

func round2(d decimal.Decimal) decimal.Decimal {
	// decimal.Round menggunakan half-up: pembulatan standar uang.
	return d.Round(2)
}
