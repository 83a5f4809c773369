package exemption

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *WorkerExemption) error
	Update(ctx context.Context, e *WorkerExemption) error
	FindByID(ctx context.Context, id string) (*WorkerExemption, error)
	FindAllByWorker(ctx context.Context, workerID string) ([]WorkerExemption, error)
	// FindApprovedActive mengambil exemption APPROVED yang mencakup saat `at`
	// untuk (worker, rule). Paling banyak satu berkat invariant approval.
	FindApprovedActive(ctx context.Context, workerID, ruleCode string, at time.Time) (*WorkerExemption, error)
	// HasOverlappingApproved memeriksa approval APPROVED lain yang jendelanya
	// beririsan, untuk menolak approval kedua (konflik, bukan silent allow).
	HasOverlappingApproved(ctx context.Context, workerID, ruleCode string, from time.Time, until *time.Time, excludeID *string) (bool, error)
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

func (r *repository) Create(ctx context.Context, e *WorkerExemption) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) Update(ctx context.Context, e *WorkerExemption) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*WorkerExemption, error) {
	var e WorkerExemption
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindAllByWorker(ctx context.Context, workerID string) ([]WorkerExemption, error) {
	var rows []WorkerExemption
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindApprovedActive(ctx context.Context, workerID, ruleCode string, at time.Time) (*WorkerExemption, error) {
	var e WorkerExemption
	err := r.db.WithContext(ctx).
		Where("worker_id = ? AND rule_code = ?", workerID, ruleCode).
		Where("status = ?", StatusApproved).
		Where("valid_from <= ?", at).
		Where("(valid_until IS NULL OR valid_until >= ?)", at).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) HasOverlappingApproved(ctx context.Context, workerID, ruleCode string, from time.Time, until *time.Time, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&WorkerExemption{}).
		Where("worker_id = ? AND rule_code = ?", workerID, ruleCode).
		Where("status = ?", StatusApproved)

	if until != nil {
		db = db.Where("valid_from <= ? AND (valid_until IS NULL OR valid_until >= ?)", *until, from)
	} else {
		db = db.Where("(valid_until IS NULL OR valid_until >= ?)", from)
	}

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}
