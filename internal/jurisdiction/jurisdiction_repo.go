package jurisdiction

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, j *TaxJurisdiction) error
	Update(ctx context.Context, j *TaxJurisdiction) error
	FindByID(ctx context.Context, id string) (*TaxJurisdiction, error)
	FindAll(ctx context.Context) ([]TaxJurisdiction, error)
	// FindActiveByTuple mencari baris aktif dengan tuple persis
	// (country, state, city); state/city nil berarti kolomnya harus NULL.
	FindActiveByTuple(ctx context.Context, country string, state, city *string) (*TaxJurisdiction, error)
	// HasActiveTuple menghitung baris aktif lain dengan tuple yang sama,
	// untuk menjaga invariant "paling banyak satu baris aktif per tuple".
	HasActiveTuple(ctx context.Context, country string, state, city *string, excludeID *string) (bool, error)
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

func (r *repository) Create(ctx context.Context, j *TaxJurisdiction) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *repository) Update(ctx context.Context, j *TaxJurisdiction) error {
	return r.db.WithContext(ctx).Save(j).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*TaxJurisdiction, error) {
	var j TaxJurisdiction
	err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *repository) FindAll(ctx context.Context) ([]TaxJurisdiction, error) {
	var rows []TaxJurisdiction
	err := r.db.WithContext(ctx).
		Order("country_code ASC, state_code ASC NULLS FIRST, city ASC NULLS FIRST").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindActiveByTuple(ctx context.Context, country string, state, city *string) (*TaxJurisdiction, error) {
	db := r.db.WithContext(ctx).
		Where("country_code = ?", country).
		Where("is_active = TRUE")
	db = scopeNullable(db, "state_code", state)
	db = scopeNullable(db, "city", city)

	var j TaxJurisdiction
	if err := db.First(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *repository) HasActiveTuple(ctx context.Context, country string, state, city *string, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&TaxJurisdiction{}).
		Where("country_code = ?", country).
		Where("is_active = TRUE")
	db = scopeNullable(db, "state_code", state)
	db = scopeNullable(db, "city", city)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func scopeNullable(db *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil || *value == "" {
		return db.Where(column + " IS NULL")
	}
	return db.Where(column+" = ?", *value)
}

// IsNotFound membungkus pengecekan gorm.ErrRecordNotFound agar caller di luar
// package ini tidak perlu import gorm.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
