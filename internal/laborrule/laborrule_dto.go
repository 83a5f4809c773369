package laborrule

type RuleParamsPayload struct {
	MaxHours      *string `json:"max_hours"`
	MinHours      *string `json:"min_hours"`
	Period        string  `json:"period"`
	MinAge        *int    `json:"min_age"`
	MinHourlyRate *string `json:"min_hourly_rate"`
}

type CreateRuleRequest struct {
	JurisdictionCode string            `json:"jurisdiction_code" binding:"required"`
	RuleCode         string            `json:"rule_code" binding:"required"`
	Name             string            `json:"name" binding:"required"`
	RuleType         string            `json:"rule_type" binding:"required,oneof=working_time rest_period break overtime age_restriction wage night_work"`
	Enforcement      string            `json:"enforcement" binding:"required,oneof=hard_block soft_warning log_only"`
	Parameters       RuleParamsPayload `json:"parameters" binding:"required"`
	AllowsOptOut     bool              `json:"allows_opt_out"`
	EffectiveFrom    string            `json:"effective_from" binding:"required"`
	EffectiveUntil   *string           `json:"effective_until"`
}

type UpdateRuleRequest struct {
	Name           string            `json:"name" binding:"required"`
	Enforcement    string            `json:"enforcement" binding:"required,oneof=hard_block soft_warning log_only"`
	Parameters     RuleParamsPayload `json:"parameters" binding:"required"`
	AllowsOptOut   bool              `json:"allows_opt_out"`
	EffectiveFrom  string            `json:"effective_from" binding:"required"`
	EffectiveUntil *string           `json:"effective_until"`
	IsActive       bool              `json:"is_active"`
}

type RuleParamsResponse struct {
	MaxHours      *string `json:"max_hours,omitempty"`
	MinHours      *string `json:"min_hours,omitempty"`
	Period        string  `json:"period,omitempty"`
	MinAge        *int    `json:"min_age,omitempty"`
	MinHourlyRate *string `json:"min_hourly_rate,omitempty"`
}

type RuleResponse struct {
	ID               string             `json:"id"`
	JurisdictionCode string             `json:"jurisdiction_code"`
	RuleCode         string             `json:"rule_code"`
	Name             string             `json:"name"`
	RuleType         string             `json:"rule_type"`
	Enforcement      string             `json:"enforcement"`
	Parameters       RuleParamsResponse `json:"parameters"`
	AllowsOptOut     bool               `json:"allows_opt_out"`
	EffectiveFrom    string             `json:"effective_from"`
	EffectiveUntil   *string            `json:"effective_until,omitempty"`
	IsActive         bool               `json:"is_active"`
}
