package compliance_test

import (
	"context"
	"testing"
	"time"

	"gigpay/internal/compliance"
	"gigpay/internal/exemption"
	"gigpay/internal/laborrule"
	"gigpay/internal/shared/clock"
	"gigpay/internal/violation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeExemptionService struct {
	exemption.Service
	getActiveFn func(ctx context.Context, workerID, ruleCode string) (*exemption.WorkerExemption, error)
}

func (f *fakeExemptionService) GetActive(ctx context.Context, workerID, ruleCode string) (*exemption.WorkerExemption, error) {
	if f.getActiveFn != nil {
		return f.getActiveFn(ctx, workerID, ruleCode)
	}
	return nil, nil
}

type fakeViolationLedger struct {
	violation.Service
	recorded []violation.RecordInput
}

func (f *fakeViolationLedger) Record(ctx context.Context, input violation.RecordInput) (*violation.ComplianceViolation, error) {
	f.recorded = append(f.recorded, input)
	return &violation.ComplianceViolation{
		ID:            uuid.New(),
		ViolationCode: "VIO-2026-000001",
		WorkerID:      input.WorkerID,
		Severity:      input.Severity,
		Status:        violation.StatusDetected,
		WasBlocked:    input.WasBlocked,
		DedupKey:      input.DedupKey,
	}, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(v int) *int { return &v }

var engineNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func weeklyHoursRule(code, jurisdictionCode, enforcement, maxHours string) laborrule.LaborLawRule {
	return laborrule.LaborLawRule{
		ID:               uuid.New(),
		JurisdictionCode: jurisdictionCode,
		RuleCode:         code,
		RuleType:         laborrule.TypeWorkingTime,
		Enforcement:      enforcement,
		Parameters: laborrule.RuleParams{
			MaxHours: decPtr(maxHours),
			Period:   laborrule.PeriodWeek,
		},
		EffectiveFrom: engineNow.AddDate(-1, 0, 0),
		IsActive:      true,
	}
}

func setupEngine() (compliance.Engine, *fakeExemptionService, *fakeViolationLedger) {
	exemptions := &fakeExemptionService{}
	ledger := &fakeViolationLedger{}
	eng := compliance.NewEngine(exemptions, ledger, clock.Fixed(engineNow))
	return eng, exemptions, ledger
}

func TestEngine_HardBlockViolation(t *testing.T) {
	eng, _, ledger := setupEngine()
	workerID := uuid.New()

	record := compliance.WorkRecord{
		ShiftStart:    engineNow.Add(-9 * time.Hour),
		ShiftEnd:      engineNow,
		HoursInPeriod: map[string]decimal.Decimal{laborrule.PeriodWeek: dec("55")},
	}
	rules := []laborrule.LaborLawRule{
		weeklyHoursRule("de_max_weekly_hours", "DE", laborrule.EnforcementHardBlock, "48"),
	}

	decision, err := eng.Evaluate(context.Background(), workerID, record, rules)

	assert.NoError(t, err)
	assert.True(t, decision.Blocked)
	assert.Len(t, decision.Violations, 1)

	v := decision.Violations[0]
	assert.Equal(t, violation.SeverityCritical, v.Severity)
	assert.True(t, v.Blocked)
	assert.Equal(t, "55", v.Actual.String())
	assert.Equal(t, "48", v.Limit.String())
	// ledger mendapat tepat satu baris, was_blocked=true
	assert.Len(t, ledger.recorded, 1)
	assert.True(t, ledger.recorded[0].WasBlocked)
}

func TestEngine_SoftWarningNeverBlocks(t *testing.T) {
	cases := []struct {
		name     string
		actual   string
		severity string
	}{
		{"just over limit", "49", violation.SeverityInfo},           // 2.08% over
		{"over warning threshold", "54", violation.SeverityWarning}, // 12.5% over
		{"over violation threshold", "62", violation.SeverityViolation}, // 29.17% over
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng, _, ledger := setupEngine()

			record := compliance.WorkRecord{
				ShiftStart:    engineNow.Add(-8 * time.Hour),
				ShiftEnd:      engineNow,
				HoursInPeriod: map[string]decimal.Decimal{laborrule.PeriodWeek: dec(tc.actual)},
			}
			rules := []laborrule.LaborLawRule{
				weeklyHoursRule("fr_weekly_hours", "FR", laborrule.EnforcementSoftWarning, "48"),
			}

			decision, err := eng.Evaluate(context.Background(), uuid.New(), record, rules)

			assert.NoError(t, err)
			assert.False(t, decision.Blocked)
			assert.Len(t, ledger.recorded, 1)
			assert.Equal(t, tc.severity, decision.Violations[0].Severity)
			assert.False(t, decision.Violations[0].Blocked)
		})
	}
}

func TestEngine_WithinLimitsNoViolation(t *testing.T) {
	eng, _, ledger := setupEngine()

	record := compliance.WorkRecord{
		ShiftStart:    engineNow.Add(-8 * time.Hour),
		ShiftEnd:      engineNow,
		HoursInPeriod: map[string]decimal.Decimal{laborrule.PeriodWeek: dec("40")},
	}
	rules := []laborrule.LaborLawRule{
		weeklyHoursRule("de_max_weekly_hours", "DE", laborrule.EnforcementHardBlock, "48"),
	}

	decision, err := eng.Evaluate(context.Background(), uuid.New(), record, rules)

	assert.NoError(t, err)
	assert.False(t, decision.Blocked)
	assert.Empty(t, decision.Violations)
	assert.Empty(t, ledger.recorded)
}

func TestEngine_ExemptionSuppressesEntirely(t *testing.T) {
	eng, exemptions, ledger := setupEngine()
	workerID := uuid.New()

	exemptions.getActiveFn = func(ctx context.Context, wid, ruleCode string) (*exemption.WorkerExemption, error) {
		assert.Equal(t, workerID.String(), wid)
		assert.Equal(t, "de_max_weekly_hours", ruleCode)
		return &exemption.WorkerExemption{
			ID:       uuid.New(),
			Status:   exemption.StatusApproved,
			RuleCode: ruleCode,
		}, nil
	}

	record := compliance.WorkRecord{
		ShiftStart:    engineNow.Add(-9 * time.Hour),
		ShiftEnd:      engineNow,
		HoursInPeriod: map[string]decimal.Decimal{laborrule.PeriodWeek: dec("55")},
	}
	rules := []laborrule.LaborLawRule{
		weeklyHoursRule("de_max_weekly_hours", "DE", laborrule.EnforcementHardBlock, "48"),
	}

	decision, err := eng.Evaluate(context.Background(), workerID, record, rules)

	// exemption aktif: tidak ada baris ledger, tidak ada block
	assert.NoError(t, err)
	assert.False(t, decision.Blocked)
	assert.Empty(t, decision.Violations)
	assert.Empty(t, ledger.recorded)
}

func TestEngine_FirstMatchShadowsSameScope(t *testing.T) {
	eng, _, ledger := setupEngine()

	record := compliance.WorkRecord{
		ShiftStart:    engineNow.Add(-8 * time.Hour),
		ShiftEnd:      engineNow,
		HoursInPeriod: map[string]decimal.Decimal{laborrule.PeriodWeek: dec("45")},
	}
	// terurut dari paling spesifik: DE-BY membayangi DE dan EU untuk
	// (working_time, week)
	rules := []laborrule.LaborLawRule{
		weeklyHoursRule("by_weekly_hours", "DE-BY", laborrule.EnforcementSoftWarning, "40"),
		weeklyHoursRule("de_weekly_hours", "DE", laborrule.EnforcementHardBlock, "48"),
		weeklyHoursRule("eu_weekly_hours", "EU", laborrule.EnforcementHardBlock, "48"),
	}

	decision, err := eng.Evaluate(context.Background(), uuid.New(), record, rules)

	assert.NoError(t, err)
	assert.False(t, decision.Blocked)
	assert.Len(t, decision.Violations, 1)
	assert.Equal(t, "by_weekly_hours", decision.Violations[0].RuleCode)
	assert.Len(t, ledger.recorded, 1)
}

func TestEngine_RestPeriodUnderMinimum(t *testing.T) {
	eng, _, _ := setupEngine()

	rule := laborrule.LaborLawRule{
		ID:               uuid.New(),
		JurisdictionCode: "EU",
		RuleCode:         "eu_daily_rest",
		RuleType:         laborrule.TypeRestPeriod,
		Enforcement:      laborrule.EnforcementHardBlock,
		Parameters:       laborrule.RuleParams{MinHours: decPtr("11")},
		EffectiveFrom:    engineNow.AddDate(-1, 0, 0),
		IsActive:         true,
	}
	record := compliance.WorkRecord{
		ShiftStart:   engineNow.Add(-8 * time.Hour),
		ShiftEnd:     engineNow,
		RestGapHours: decPtr("8"),
	}

	decision, err := eng.Evaluate(context.Background(), uuid.New(), record, []laborrule.LaborLawRule{rule})

	assert.NoError(t, err)
	assert.True(t, decision.Blocked)
	assert.Len(t, decision.Violations, 1)
	assert.Equal(t, "8", decision.Violations[0].Actual.String())
	assert.Equal(t, "11", decision.Violations[0].Limit.String())
}

func TestEngine_MissingMetricIsPerItemError(t *testing.T) {
	eng, _, ledger := setupEngine()

	// aturan pertama butuh metrik yang tidak ada; aturan kedua tetap dievaluasi
	rules := []laborrule.LaborLawRule{
		{
			ID:               uuid.New(),
			JurisdictionCode: "DE",
			RuleCode:         "de_min_wage",
			RuleType:         laborrule.TypeWage,
			Enforcement:      laborrule.EnforcementSoftWarning,
			Parameters:       laborrule.RuleParams{MinHourlyRate: decPtr("12.41")},
			EffectiveFrom:    engineNow.AddDate(-1, 0, 0),
			IsActive:         true,
		},
		weeklyHoursRule("de_weekly_hours", "DE", laborrule.EnforcementSoftWarning, "48"),
	}
	record := compliance.WorkRecord{
		ShiftStart:    engineNow.Add(-8 * time.Hour),
		ShiftEnd:      engineNow,
		HoursInPeriod: map[string]decimal.Decimal{laborrule.PeriodWeek: dec("60")},
	}

	decision, err := eng.Evaluate(context.Background(), uuid.New(), record, rules)

	assert.NoError(t, err)
	assert.Len(t, decision.Errors, 1)
	assert.Equal(t, "de_min_wage", decision.Errors[0].RuleCode)
	assert.Len(t, decision.Violations, 1)
	assert.Equal(t, "de_weekly_hours", decision.Violations[0].RuleCode)
	assert.Len(t, ledger.recorded, 1)
}

func TestEngine_ExpiredRuleSkipped(t *testing.T) {
	eng, _, ledger := setupEngine()

	rule := weeklyHoursRule("de_weekly_hours", "DE", laborrule.EnforcementHardBlock, "48")
	until := engineNow.AddDate(0, -1, 0)
	rule.EffectiveUntil = &until

	record := compliance.WorkRecord{
		ShiftStart:    engineNow.Add(-9 * time.Hour),
		ShiftEnd:      engineNow,
		HoursInPeriod: map[string]decimal.Decimal{laborrule.PeriodWeek: dec("60")},
	}

	decision, err := eng.Evaluate(context.Background(), uuid.New(), record, []laborrule.LaborLawRule{rule})

	assert.NoError(t, err)
	assert.False(t, decision.Blocked)
	assert.Empty(t, decision.Violations)
	assert.Empty(t, ledger.recorded)
}

func TestEngine_AgeRestriction(t *testing.T) {
	eng, _, _ := setupEngine()

	age := 16
	rule := laborrule.LaborLawRule{
		ID:               uuid.New(),
		JurisdictionCode: "US",
		RuleCode:         "us_min_age",
		RuleType:         laborrule.TypeAgeRestriction,
		Enforcement:      laborrule.EnforcementHardBlock,
		Parameters:       laborrule.RuleParams{MinAge: intPtr(18)},
		EffectiveFrom:    engineNow.AddDate(-1, 0, 0),
		IsActive:         true,
	}
	record := compliance.WorkRecord{
		ShiftStart: engineNow.Add(-4 * time.Hour),
		ShiftEnd:   engineNow,
		WorkerAge:  &age,
	}

	decision, err := eng.Evaluate(context.Background(), uuid.New(), record, []laborrule.LaborLawRule{rule})

	assert.NoError(t, err)
	assert.True(t, decision.Blocked)
	assert.Equal(t, violation.SeverityCritical, decision.Violations[0].Severity)
}

func TestEngine_DedupKeyIsDeterministic(t *testing.T) {
	workerID := uuid.New()
	shiftID := uuid.New()
	record := compliance.WorkRecord{
		ShiftID:       &shiftID,
		ShiftStart:    engineNow.Add(-9 * time.Hour),
		ShiftEnd:      engineNow,
		HoursInPeriod: map[string]decimal.Decimal{laborrule.PeriodWeek: dec("55")},
	}
	rules := []laborrule.LaborLawRule{
		weeklyHoursRule("de_weekly_hours", "DE", laborrule.EnforcementHardBlock, "48"),
	}

	eng1, _, ledger1 := setupEngine()
	_, err := eng1.Evaluate(context.Background(), workerID, record, rules)
	assert.NoError(t, err)

	eng2, _, ledger2 := setupEngine()
	_, err = eng2.Evaluate(context.Background(), workerID, record, rules)
	assert.NoError(t, err)

	// retry evaluasi yang sama menghasilkan dedup key identik
	assert.Equal(t, ledger1.recorded[0].DedupKey, ledger2.recorded[0].DedupKey)
}
