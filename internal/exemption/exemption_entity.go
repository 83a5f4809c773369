package exemption

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusRevoked  = "REVOKED"
	StatusExpired  = "EXPIRED"
)

// WorkerExemption adalah opt-out yang disetujui admin: izin seorang pekerja
// melewati satu aturan tertentu dalam jendela waktu tertentu.
type WorkerExemption struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	WorkerID         uuid.UUID `gorm:"type:uuid;not null;index:idx_exemption_worker_rule"`
	JurisdictionCode string    `gorm:"type:varchar(10);not null"`
	RuleCode         string    `gorm:"type:varchar(60);not null;index:idx_exemption_worker_rule"`

	Reason      string  `gorm:"type:text;not null"`
	DocumentURL *string `gorm:"type:text"`

	ValidFrom  time.Time  `gorm:"type:date;not null"`
	ValidUntil *time.Time `gorm:"type:date"` // nil = terbuka

	Status             string `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	WorkerAcknowledged bool   `gorm:"not null;default:false"`

	ReviewedBy       *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt       *time.Time
	RejectionReason  *string `gorm:"type:text"`
	RevocationReason *string `gorm:"type:text"`
	RevokedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (WorkerExemption) TableName() string {
	return "worker_exemptions"
}

// ActiveAt: APPROVED dan t di dalam jendela validitas. Baris REVOKED berhenti
// aktif seketika walau jendelanya belum habis.
func (e WorkerExemption) ActiveAt(t time.Time) bool {
	if e.Status != StatusApproved {
		return false
	}
	if t.Before(e.ValidFrom) {
		return false
	}
	if e.ValidUntil != nil && t.After(*e.ValidUntil) {
		return false
	}
	return true
}

// DisplayStatus menampilkan EXPIRED untuk baris APPROVED yang jendelanya
// sudah lewat, tanpa menulis ulang baris (derived, lazy).
func (e WorkerExemption) DisplayStatus(now time.Time) string {
	if e.Status == StatusApproved && e.ValidUntil != nil && now.After(*e.ValidUntil) {
		return StatusExpired
	}
	return e.Status
}
