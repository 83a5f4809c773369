package laborrule

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rule types.
const (
	TypeWorkingTime    = "working_time"
	TypeRestPeriod     = "rest_period"
	TypeBreak          = "break"
	TypeOvertime       = "overtime"
	TypeAgeRestriction = "age_restriction"
	TypeWage           = "wage"
	TypeNightWork      = "night_work"
)

// Enforcement levels.
const (
	EnforcementHardBlock   = "hard_block"
	EnforcementSoftWarning = "soft_warning"
	EnforcementLogOnly     = "log_only"
)

// Evaluation periods for hour-based rules.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// RuleParams adalah parameter aturan yang disimpan sebagai JSON. Field mana
// yang wajib tergantung rule_type; Validate menegakkannya supaya engine tidak
// pernah mengevaluasi aturan dengan parameter bolong.
type RuleParams struct {
	MaxHours      *decimal.Decimal `json:"max_hours,omitempty"`
	MinHours      *decimal.Decimal `json:"min_hours,omitempty"`
	Period        string           `json:"period,omitempty"`
	MinAge        *int             `json:"min_age,omitempty"`
	MinHourlyRate *decimal.Decimal `json:"min_hourly_rate,omitempty"`
}

type LaborLawRule struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	// Identitas: (jurisdiction_code, rule_code). Kode yurisdiksi bisa kode
	// negara ("DE"), kode wilayah ("US-CA"), atau kode blok regional ("EU").
	JurisdictionCode string `gorm:"type:varchar(10);not null;uniqueIndex:uq_rule_jurisdiction_code,priority:1;index"`
	RuleCode         string `gorm:"type:varchar(60);not null;uniqueIndex:uq_rule_jurisdiction_code,priority:2"`

	Name        string `gorm:"type:varchar(160);not null"`
	RuleType    string `gorm:"type:varchar(20);not null;index"`
	Enforcement string `gorm:"type:varchar(20);not null"`

	Parameters RuleParams `gorm:"type:jsonb;serializer:json"`

	AllowsOptOut bool `gorm:"not null;default:false"`

	EffectiveFrom  time.Time  `gorm:"type:date;not null;index"`
	EffectiveUntil *time.Time `gorm:"type:date;index"`
	IsActive       bool       `gorm:"not null;default:true;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (LaborLawRule) TableName() string {
	return "labor_law_rules"
}

// EffectiveAt melaporkan apakah aturan berlaku pada saat t: aktif dan t ada
// di dalam jendela effective_from..effective_until (until nil = terbuka).
func (r LaborLawRule) EffectiveAt(t time.Time) bool {
	if !r.IsActive {
		return false
	}
	if t.Before(r.EffectiveFrom) {
		return false
	}
	if r.EffectiveUntil != nil && t.After(*r.EffectiveUntil) {
		return false
	}
	return true
}
