package violation

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// ListFilter menyaring query daftar pelanggaran; field nil diabaikan.
type ListFilter struct {
	WorkerID         *string
	RuleCode         *string
	JurisdictionCode *string
	Status           *string
	Severity         *string
	From             *time.Time
	To               *time.Time
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, v *ComplianceViolation) error
	Update(ctx context.Context, v *ComplianceViolation) error
	FindByID(ctx context.Context, id string) (*ComplianceViolation, error)
	FindByDedupKey(ctx context.Context, key string) (*ComplianceViolation, error)
	FindAll(ctx context.Context, filter ListFilter, limit, offset int) ([]ComplianceViolation, int64, error)
	AppendTransition(ctx context.Context, t *ViolationTransition) error
	FindTransitions(ctx context.Context, violationID string) ([]ViolationTransition, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, v *ComplianceViolation) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *repository) Update(ctx context.Context, v *ComplianceViolation) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*ComplianceViolation, error) {
	var v ComplianceViolation
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) FindByDedupKey(ctx context.Context, key string) (*ComplianceViolation, error) {
	var v ComplianceViolation
	if err := r.db.WithContext(ctx).First(&v, "dedup_key = ?", key).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter, limit, offset int) ([]ComplianceViolation, int64, error) {
	db := r.db.WithContext(ctx).Model(&ComplianceViolation{})

	if filter.WorkerID != nil {
		db = db.Where("worker_id = ?", *filter.WorkerID)
	}
	if filter.RuleCode != nil {
		db = db.Where("rule_code = ?", *filter.RuleCode)
	}
	if filter.JurisdictionCode != nil {
		db = db.Where("jurisdiction_code = ?", *filter.JurisdictionCode)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.Severity != nil {
		db = db.Where("severity = ?", *filter.Severity)
	}
	if filter.From != nil {
		db = db.Where("detected_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("detected_at <= ?", *filter.To)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ComplianceViolation
	err := db.Order("detected_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) AppendTransition(ctx context.Context, t *ViolationTransition) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindTransitions(ctx context.Context, violationID string) ([]ViolationTransition, error) {
	var rows []ViolationTransition
	err := r.db.WithContext(ctx).
		Where("violation_id = ?", violationID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
