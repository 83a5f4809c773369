package taxcalc

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// Create adalah satu-satunya operasi tulis: baris kalkulasi tidak pernah
	// di-update atau dihapus.
	Create(ctx context.Context, calc *TaxCalculation) error
	FindByID(ctx context.Context, id string) (*TaxCalculation, error)
	FindAllByWorker(ctx context.Context, workerID string) ([]TaxCalculation, error)
	FindByWorkerAndDateRange(ctx context.Context, workerID string, from, to time.Time) ([]TaxCalculation, error)
	FindByJurisdiction(ctx context.Context, jurisdictionID string, from, to time.Time) ([]TaxCalculation, error)
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

func (r *repository) Create(ctx context.Context, calc *TaxCalculation) error {
	return r.db.WithContext(ctx).Create(calc).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*TaxCalculation, error) {
	var calc TaxCalculation
	if err := r.db.WithContext(ctx).First(&calc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &calc, nil
}

func (r *repository) FindAllByWorker(ctx context.Context, workerID string) ([]TaxCalculation, error) {
	var rows []TaxCalculation
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByWorkerAndDateRange(ctx context.Context, workerID string, from, to time.Time) ([]TaxCalculation, error) {
	var rows []TaxCalculation
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByJurisdiction(ctx context.Context, jurisdictionID string, from, to time.Time) ([]TaxCalculation, error) {
	var rows []TaxCalculation
	err := r.db.WithContext(ctx).
		Where("jurisdiction_id = ?", jurisdictionID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
