package compliance

import (
	"context"
	"fmt"
	"time"

	cperrors "gigpay/internal/compliance/errors"
	"gigpay/internal/exemption"
	"gigpay/internal/laborrule"
	"gigpay/internal/shared/clock"
	"gigpay/internal/violation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ambang severity dalam persen di atas/di bawah limit.
var (
	warningThreshold   = decimal.NewFromInt(10)
	violationThreshold = decimal.NewFromInt(25)
)

// RuleDecision adalah hasil satu aturan yang dilanggar (yang lolos tidak
// menghasilkan entri).
type RuleDecision struct {
	RuleCode         string          `json:"rule_code"`
	RuleType         string          `json:"rule_type"`
	JurisdictionCode string          `json:"jurisdiction_code"`
	Severity         string          `json:"severity"`
	Blocked          bool            `json:"blocked"`
	ViolationCode    string          `json:"violation_code,omitempty"`
	Actual           decimal.Decimal `json:"actual"`
	Limit            decimal.Decimal `json:"limit"`
	PercentOver      decimal.Decimal `json:"percent_over"`
}

// RuleError adalah kegagalan evaluasi satu aturan (parameter bolong, metrik
// tidak tersedia). Batch jalan terus; error dilaporkan per-item.
type RuleError struct {
	RuleCode string `json:"rule_code"`
	Message  string `json:"message"`
}

type Decision struct {
	Blocked    bool           `json:"blocked"`
	Violations []RuleDecision `json:"violations"`
	Errors     []RuleError    `json:"errors,omitempty"`
}

type Engine interface {
	// Evaluate menjalankan rules terhadap record. Rules harus sudah terurut
	// dari yurisdiksi paling spesifik; aturan pertama per (rule_type, period)
	// menang, sisanya di-shadow.
	Evaluate(ctx context.Context, workerID uuid.UUID, record WorkRecord, rules []laborrule.LaborLawRule) (Decision, error)
}

type engine struct {
	exemptions exemption.Service
	ledger     violation.Service
	clk        clock.Clock
	logger     *zap.Logger
}

func NewEngine(exemptions exemption.Service, ledger violation.Service, clk clock.Clock, logger ...*zap.Logger) Engine {
	l := zap.L().Named("compliance.engine")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("compliance.engine")
	}
	return &engine{exemptions: exemptions, ledger: ledger, clk: clk, logger: l}
}

func (e *engine) Evaluate(ctx context.Context, workerID uuid.UUID, record WorkRecord, rules []laborrule.LaborLawRule) (Decision, error) {
	now := e.clk.Now()
	decision := Decision{}

	// shadow map: aturan pertama per (rule_type, period) menang
	seen := make(map[string]bool, len(rules))

	for _, rule := range rules {
		if !rule.EffectiveAt(now) {
			continue
		}

		scope := rule.RuleType + "|" + rule.Parameters.Period
		if seen[scope] {
			continue
		}
		seen[scope] = true

		breach, err := e.evaluateRule(rule, record)
		if err != nil {
			e.logger.Warn("rule evaluation failed",
				zap.String("rule_code", rule.RuleCode),
				zap.String("worker_id", workerID.String()),
				zap.Error(err),
			)
			decision.Errors = append(decision.Errors, RuleError{
				RuleCode: rule.RuleCode,
				Message:  err.Error(),
			})
			continue
		}
		if breach == nil {
			continue
		}

		active, err := e.exemptions.GetActive(ctx, workerID.String(), rule.RuleCode)
		if err != nil {
			return Decision{}, err
		}
		if active != nil {
			// exemption aktif: tetap dievaluasi untuk logging, tapi tanpa
			// baris ledger dan tanpa block
			e.logger.Info("breach covered by exemption",
				zap.String("worker_id", workerID.String()),
				zap.String("rule_code", rule.RuleCode),
				zap.String("exemption_id", active.ID.String()),
			)
			continue
		}

		severity, blocked := classify(rule.Enforcement, breach.PercentOver)

		row, err := e.ledger.Record(ctx, violation.RecordInput{
			WorkerID:         workerID,
			ShiftID:          record.ShiftID,
			JurisdictionCode: rule.JurisdictionCode,
			RuleCode:         rule.RuleCode,
			RuleType:         rule.RuleType,
			Data: violation.ViolationData{
				Actual:      breach.Actual,
				Limit:       breach.Limit,
				PercentOver: breach.PercentOver,
				Period:      rule.Parameters.Period,
				Unit:        breach.Unit,
			},
			Severity:   severity,
			WasBlocked: blocked,
			DedupKey:   dedupKey(workerID, rule.RuleCode, record, now),
			DetectedAt: now,
		})
		if err != nil {
			return Decision{}, err
		}

		decision.Violations = append(decision.Violations, RuleDecision{
			RuleCode:         rule.RuleCode,
			RuleType:         rule.RuleType,
			JurisdictionCode: rule.JurisdictionCode,
			Severity:         severity,
			Blocked:          blocked,
			ViolationCode:    row.ViolationCode,
			Actual:           breach.Actual,
			Limit:            breach.Limit,
			PercentOver:      breach.PercentOver,
		})
		if blocked {
			decision.Blocked = true
		}
	}

	return decision, nil
}

// breach menyimpan angka pelanggaran mentah sebelum klasifikasi severity.
type breach struct {
	Actual      decimal.Decimal
	Limit       decimal.Decimal
	PercentOver decimal.Decimal
	Unit        string
}

// evaluateRule mengekstrak metrik menurut rule_type dan membandingkannya
// dengan limit. Mengembalikan nil bila dalam batas.
func (e *engine) evaluateRule(rule laborrule.LaborLawRule, record WorkRecord) (*breach, error) {
	if err := rule.Parameters.Validate(rule.RuleType); err != nil {
		return nil, err
	}

	switch rule.RuleType {
	case laborrule.TypeWorkingTime, laborrule.TypeOvertime:
		actual, ok := record.HoursInPeriod[rule.Parameters.Period]
		if !ok {
			return nil, cperrors.ErrMissingMetric
		}
		return overMax(actual, *rule.Parameters.MaxHours, "hours"), nil

	case laborrule.TypeNightWork:
		actual, ok := record.NightHoursInPeriod[rule.Parameters.Period]
		if !ok {
			return nil, cperrors.ErrMissingMetric
		}
		return overMax(actual, *rule.Parameters.MaxHours, "hours"), nil

	case laborrule.TypeRestPeriod, laborrule.TypeBreak:
		if record.RestGapHours == nil {
			return nil, cperrors.ErrMissingMetric
		}
		return underMin(*record.RestGapHours, *rule.Parameters.MinHours, "hours"), nil

	case laborrule.TypeAgeRestriction:
		if record.WorkerAge == nil {
			return nil, cperrors.ErrMissingMetric
		}
		actual := decimal.NewFromInt(int64(*record.WorkerAge))
		return underMin(actual, decimal.NewFromInt(int64(*rule.Parameters.MinAge)), "years"), nil

	case laborrule.TypeWage:
		if record.HourlyRate == nil {
			return nil, cperrors.ErrMissingMetric
		}
		return underMin(*record.HourlyRate, *rule.Parameters.MinHourlyRate, "rate"), nil
	}

	return nil, cperrors.ErrCorruptWorkRecord
}

func overMax(actual, limit decimal.Decimal, unit string) *breach {
	if actual.LessThanOrEqual(limit) {
		return nil
	}
	return &breach{
		Actual:      actual,
		Limit:       limit,
		PercentOver: percentOver(actual.Sub(limit), limit),
		Unit:        unit,
	}
}

func underMin(actual, limit decimal.Decimal, unit string) *breach {
	if actual.GreaterThanOrEqual(limit) {
		return nil
	}
	return &breach{
		Actual:      actual,
		Limit:       limit,
		PercentOver: percentOver(limit.Sub(actual), limit),
		Unit:        unit,
	}
}

func percentOver(delta, limit decimal.Decimal) decimal.Decimal {
	if limit.IsZero() {
		return decimal.Zero
	}
	return delta.Div(limit).Mul(decimal.NewFromInt(100)).Round(2)
}

// classify: hard_block selalu critical dan memblokir; selain itu severity
// ikut persentase dan tidak pernah memblokir.
func classify(enforcement string, percentOver decimal.Decimal) (string, bool) {
	if enforcement == laborrule.EnforcementHardBlock {
		return violation.SeverityCritical, true
	}
	switch {
	case percentOver.GreaterThan(violationThreshold):
		return violation.SeverityViolation, false
	case percentOver.GreaterThan(warningThreshold):
		return violation.SeverityWarning, false
	default:
		return violation.SeverityInfo, false
	}
}

func dedupKey(workerID uuid.UUID, ruleCode string, record WorkRecord, detectedAt time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		workerID.String(), ruleCode, record.Identity(), detectedAt.Format("2006-01-02"))
}
