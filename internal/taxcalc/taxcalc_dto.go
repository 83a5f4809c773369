package taxcalc

type BreakdownLineResponse struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

type TaxBreakdownResponse struct {
	Gross            string                  `json:"gross"`
	IncomeTax        string                  `json:"income_tax"`
	SocialSecurity   string                  `json:"social_security"`
	Withholding      string                  `json:"withholding"`
	VAT              string                  `json:"vat"`
	Net              string                  `json:"net"`
	EffectiveTaxRate string                  `json:"effective_tax_rate"`
	CurrencyCode     string                  `json:"currency_code"`
	Lines            []BreakdownLineResponse `json:"lines"`
}

type CalculationResponse struct {
	ID              string               `json:"id"`
	WorkerID        string               `json:"worker_id"`
	JurisdictionID  string               `json:"jurisdiction_id"`
	ShiftID         *string              `json:"shift_id,omitempty"`
	CalculationType string               `json:"calculation_type"`
	IsApplied       bool                 `json:"is_applied"`
	Breakdown       TaxBreakdownResponse `json:"breakdown"`
	CreatedAt       string               `json:"created_at"`
}

type EstimateRequest struct {
	WorkerID    string  `json:"worker_id" binding:"required,uuid"`
	Country     string  `json:"country" binding:"required,len=2"`
	State       *string `json:"state"`
	City        *string `json:"city"`
	GrossAmount string  `json:"gross_amount" binding:"required"`
}
