package violation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SeverityInfo      = "INFO"
	SeverityWarning   = "WARNING"
	SeverityViolation = "VIOLATION"
	SeverityCritical  = "CRITICAL"
)

const (
	StatusDetected     = "DETECTED"
	StatusAcknowledged = "ACKNOWLEDGED"
	StatusResolved     = "RESOLVED"
	StatusExempted     = "EXEMPTED"
	StatusAppealed     = "APPEALED"
)

// ViolationData membekukan angka-angka saat deteksi. Severity dan isi data
// tidak pernah dihitung ulang walau aturannya berubah belakangan.
type ViolationData struct {
	Actual      decimal.Decimal `json:"actual"`
	Limit       decimal.Decimal `json:"limit"`
	PercentOver decimal.Decimal `json:"percent_over"`
	Period      string          `json:"period,omitempty"`
	Unit        string          `json:"unit"`
}

type ComplianceViolation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	ViolationCode string     `gorm:"type:varchar(30);not null;uniqueIndex"`
	WorkerID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_violation_worker_date"`
	ShiftID       *uuid.UUID `gorm:"type:uuid"`

	JurisdictionCode string `gorm:"type:varchar(10);not null;index"`
	RuleCode         string `gorm:"type:varchar(60);not null;index"`
	RuleType         string `gorm:"type:varchar(30);not null"`

	Data     ViolationData `gorm:"type:jsonb;serializer:json;not null"`
	Severity string        `gorm:"type:varchar(20);not null"`
	Status   string        `gorm:"type:varchar(20);not null;default:'DETECTED';index"`

	WasBlocked     bool `gorm:"not null;default:false"`
	WorkerNotified bool `gorm:"not null;default:false"`
	AdminNotified  bool `gorm:"not null;default:false"`

	// DedupKey deterministik per (worker, rule, identitas work record,
	// jendela deteksi); insert kedua dengan kunci sama bukan error.
	DedupKey string `gorm:"type:varchar(200);not null;uniqueIndex:uq_violation_dedup"`

	DetectedAt time.Time `gorm:"not null;index:idx_violation_worker_date"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	Transitions []ViolationTransition `gorm:"foreignKey:ViolationID"`
}

func (ComplianceViolation) TableName() string {
	return "compliance_violations"
}

// ViolationTransition adalah jejak audit append-only; baris lama tidak
// pernah ditulis ulang.
type ViolationTransition struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ViolationID uuid.UUID `gorm:"type:uuid;not null;index"`

	FromStatus string     `gorm:"type:varchar(20);not null"`
	ToStatus   string     `gorm:"type:varchar(20);not null"`
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	Notes      *string    `gorm:"type:text"`

	CreatedAt time.Time
}

func (ViolationTransition) TableName() string {
	return "violation_transitions"
}

// isAllowedStatusTransition: RESOLVED dan EXEMPTED terminal; APPEALED tidak
// pernah menuju EXEMPTED.
func isAllowedStatusTransition(from, to string) bool {
	switch from {
	case StatusDetected:
		return to == StatusAcknowledged
	case StatusAcknowledged:
		return to == StatusResolved || to == StatusExempted || to == StatusAppealed
	case StatusAppealed:
		return to == StatusResolved || to == StatusAcknowledged
	default:
		return false
	}
}
