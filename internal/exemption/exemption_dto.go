package exemption

type RequestOptOutRequest struct {
	WorkerID         string  `json:"worker_id" binding:"required,uuid"`
	JurisdictionCode string  `json:"jurisdiction_code" binding:"required"`
	RuleCode         string  `json:"rule_code" binding:"required"`
	Reason           string  `json:"reason" binding:"required"`
	DocumentURL      *string `json:"document_url"`
	ValidFrom        string  `json:"valid_from" binding:"required"`
	ValidUntil       *string `json:"valid_until"`
}

type RejectExemptionRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

type RevokeExemptionRequest struct {
	RevocationReason string `json:"revocation_reason" binding:"required"`
}

type ExemptionResponse struct {
	ID                 string  `json:"id"`
	WorkerID           string  `json:"worker_id"`
	JurisdictionCode   string  `json:"jurisdiction_code"`
	RuleCode           string  `json:"rule_code"`
	Reason             string  `json:"reason"`
	DocumentURL        *string `json:"document_url,omitempty"`
	ValidFrom          string  `json:"valid_from"`
	ValidUntil         *string `json:"valid_until,omitempty"`
	Status             string  `json:"status"`
	WorkerAcknowledged bool    `json:"worker_acknowledged"`
	ReviewedBy         *string `json:"reviewed_by,omitempty"`
	ReviewedAt         *string `json:"reviewed_at,omitempty"`
	RejectionReason    *string `json:"rejection_reason,omitempty"`
	RevocationReason   *string `json:"revocation_reason,omitempty"`
}
