package jurisdiction

type BracketPayload struct {
	Threshold string `json:"threshold" binding:"required"`
	Rate      string `json:"rate" binding:"required"`
}

type CreateJurisdictionRequest struct {
	CountryCode        string           `json:"country_code" binding:"required,len=2"`
	StateCode          *string          `json:"state_code"`
	City               *string          `json:"city"`
	IncomeTaxRate      string           `json:"income_tax_rate" binding:"required"`
	SocialSecurityRate string           `json:"social_security_rate" binding:"required"`
	VATRate            string           `json:"vat_rate" binding:"required"`
	WithholdingRate    string           `json:"withholding_rate" binding:"required"`
	TaxFreeThreshold   string           `json:"tax_free_threshold"`
	TaxBrackets        []BracketPayload `json:"tax_brackets"`
	CurrencyCode       string           `json:"currency_code" binding:"required,len=3"`
	RequiresW9         bool             `json:"requires_w9"`
	RequiresW8BEN      bool             `json:"requires_w8ben"`
}

type UpdateJurisdictionRequest struct {
	IncomeTaxRate      string           `json:"income_tax_rate" binding:"required"`
	SocialSecurityRate string           `json:"social_security_rate" binding:"required"`
	VATRate            string           `json:"vat_rate" binding:"required"`
	WithholdingRate    string           `json:"withholding_rate" binding:"required"`
	TaxFreeThreshold   string           `json:"tax_free_threshold"`
	TaxBrackets        []BracketPayload `json:"tax_brackets"`
	CurrencyCode       string           `json:"currency_code" binding:"required,len=3"`
	RequiresW9         bool             `json:"requires_w9"`
	RequiresW8BEN      bool             `json:"requires_w8ben"`
	IsActive           bool             `json:"is_active"`
}

type BracketResponse struct {
	Threshold string `json:"threshold"`
	Rate      string `json:"rate"`
}

type JurisdictionResponse struct {
	ID                 string            `json:"id"`
	CountryCode        string            `json:"country_code"`
	StateCode          *string           `json:"state_code,omitempty"`
	City               *string           `json:"city,omitempty"`
	Code               string            `json:"code"`
	IncomeTaxRate      string            `json:"income_tax_rate"`
	SocialSecurityRate string            `json:"social_security_rate"`
	VATRate            string            `json:"vat_rate"`
	WithholdingRate    string            `json:"withholding_rate"`
	TaxFreeThreshold   string            `json:"tax_free_threshold"`
	TaxBrackets        []BracketResponse `json:"tax_brackets,omitempty"`
	CurrencyCode       string            `json:"currency_code"`
	RequiresW9         bool              `json:"requires_w9"`
	RequiresW8BEN      bool              `json:"requires_w8ben"`
	IsActive           bool              `json:"is_active"`
}

type ResolveQuery struct {
	Country string `form:"country" binding:"required,len=2"`
	State   string `form:"state"`
	City    string `form:"city"`
}
