package laborrule

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rule *LaborLawRule) error
	Update(ctx context.Context, rule *LaborLawRule) error
	FindByID(ctx context.Context, id string) (*LaborLawRule, error)
	FindByCode(ctx context.Context, jurisdictionCode, ruleCode string) (*LaborLawRule, error)
	FindAllByJurisdiction(ctx context.Context, jurisdictionCode string) ([]LaborLawRule, error)
	// FindEffectiveByJurisdictions mengambil aturan aktif yang berlaku pada
	// saat `at` untuk semua kode kandidat sekaligus. Urutan hasil mengikuti
	// prioritas slice codes (paling spesifik dulu), lalu rule_code.
	FindEffectiveByJurisdictions(ctx context.Context, codes []string, at time.Time) ([]LaborLawRule, error)
	HasRuleCode(ctx context.Context, jurisdictionCode, ruleCode string, excludeID *string) (bool, error)
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

func (r *repository) Create(ctx context.Context, rule *LaborLawRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) Update(ctx context.Context, rule *LaborLawRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LaborLawRule, error) {
	var rule LaborLawRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) FindByCode(ctx context.Context, jurisdictionCode, ruleCode string) (*LaborLawRule, error) {
	var rule LaborLawRule
	err := r.db.WithContext(ctx).
		Where("jurisdiction_code = ? AND rule_code = ?", jurisdictionCode, ruleCode).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) FindAllByJurisdiction(ctx context.Context, jurisdictionCode string) ([]LaborLawRule, error) {
	var rules []LaborLawRule
	err := r.db.WithContext(ctx).
		Where("jurisdiction_code = ?", jurisdictionCode).
		Order("rule_code ASC").
		Find(&rules).Error
	return rules, err
}

func (r *repository) FindEffectiveByJurisdictions(ctx context.Context, codes []string, at time.Time) ([]LaborLawRule, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	var rules []LaborLawRule
	err := r.db.WithContext(ctx).
		Where("jurisdiction_code IN ?", codes).
		Where("is_active = TRUE").
		Where("effective_from <= ?", at).
		Where("(effective_until IS NULL OR effective_until >= ?)", at).
		Order("rule_code ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	// DB tidak tahu prioritas kandidat; urutkan di sini sesuai slice codes.
	ordered := make([]LaborLawRule, 0, len(rules))
	for _, code := range codes {
		for _, rule := range rules {
			if rule.JurisdictionCode == code {
				ordered = append(ordered, rule)
			}
		}
	}
	return ordered, nil
}

func (r *repository) HasRuleCode(ctx context.Context, jurisdictionCode, ruleCode string, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&LaborLawRule{}).
		Where("jurisdiction_code = ? AND rule_code = ?", jurisdictionCode, ruleCode)
	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}
	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}
