package laborrule

import lrerrors "gigpay/internal/laborrule/errors"

// Validate memastikan parameter yang dibutuhkan rule_type tersedia.
// Gagal di sini berarti konfigurasi aturan rusak, bukan data pekerja.
func (p RuleParams) Validate(ruleType string) error {
	switch ruleType {
	case TypeWorkingTime, TypeOvertime, TypeNightWork:
		if p.MaxHours == nil {
			return lrerrors.ErrMissingRuleParams
		}
		if !validPeriod(p.Period) {
			return lrerrors.ErrInvalidRulePeriod
		}
	case TypeRestPeriod, TypeBreak:
		if p.MinHours == nil {
			return lrerrors.ErrMissingRuleParams
		}
	case TypeAgeRestriction:
		if p.MinAge == nil {
			return lrerrors.ErrMissingRuleParams
		}
	case TypeWage:
		if p.MinHourlyRate == nil {
			return lrerrors.ErrMissingRuleParams
		}
	default:
		return lrerrors.ErrUnknownRuleType
	}
	return nil
}

func validPeriod(period string) bool {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	default:
		return false
	}
}
