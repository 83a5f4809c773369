package taxcalc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gigpay/internal/jurisdiction"
	taxerrors "gigpay/internal/taxcalc/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	// Apply menghitung dan mencatat kalkulasi yang benar-benar dibayarkan.
	Apply(ctx context.Context, req ApplyInput) (CalculationResponse, error)
	// Estimate menghitung dan mencatat baris preview (is_applied=false).
	Estimate(ctx context.Context, req EstimateRequest) (CalculationResponse, error)
	GetAllByWorker(ctx context.Context, workerID string) ([]CalculationResponse, error)
	GetByWorkerAndRange(ctx context.Context, workerID, from, to string) ([]CalculationResponse, error)
}

// ApplyInput adalah input internal dari orkestrator pembayaran; yurisdiksi
// sudah di-resolve oleh caller.
type ApplyInput struct {
	WorkerID        uuid.UUID
	Jurisdiction    *jurisdiction.TaxJurisdiction
	ShiftID         *uuid.UUID
	GrossAmount     decimal.Decimal
	CalculationType string
	IsApplied       bool
	CorrectsID      *uuid.UUID
}

type service struct {
	db       *sql.DB
	repo     Repository
	resolver jurisdiction.Resolver
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, resolver jurisdiction.Resolver, logger ...*zap.Logger) Service {
	l := zap.L().Named("taxcalc.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("taxcalc.service")
	}
	return &service{db: db, repo: repo, resolver: resolver, logger: l}
}

func (s *service) Apply(ctx context.Context, req ApplyInput) (CalculationResponse, error) {
	if !validCalculationType(req.CalculationType) {
		return CalculationResponse{}, taxerrors.ErrInvalidCalculationType
	}

	breakdown, err := Calculate(req.Jurisdiction, req.GrossAmount)
	if err != nil {
		s.logger.Warn("tax calculation rejected",
			zap.String("worker_id", req.WorkerID.String()),
			zap.String("jurisdiction_id", req.Jurisdiction.ID.String()),
			zap.Error(err),
		)
		return CalculationResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CalculationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	calc := &TaxCalculation{
		ID:                    uuid.New(),
		WorkerID:              req.WorkerID,
		JurisdictionID:        req.Jurisdiction.ID,
		ShiftID:               req.ShiftID,
		GrossAmount:           breakdown.Gross,
		IncomeTax:             breakdown.IncomeTax,
		SocialSecurity:        breakdown.SocialSecurity,
		Withholding:           breakdown.Withholding,
		VAT:                   breakdown.VAT,
		NetAmount:             breakdown.Net,
		EffectiveTaxRate:      breakdown.EffectiveTaxRate,
		Breakdown:             breakdown.Lines,
		CurrencyCode:          breakdown.CurrencyCode,
		CalculationType:       req.CalculationType,
		IsApplied:             req.IsApplied,
		CorrectsCalculationID: req.CorrectsID,
	}

	if err := qtx.Create(ctx, calc); err != nil {
		s.logger.Error("persist tax calculation failed", zap.Error(err))
		return CalculationResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return CalculationResponse{}, err
	}

	s.logger.Info("tax calculation recorded",
		zap.String("calculation_id", calc.ID.String()),
		zap.String("worker_id", req.WorkerID.String()),
		zap.String("type", calc.CalculationType),
		zap.Bool("is_applied", calc.IsApplied),
	)
	return mapToResponse(*calc), nil
}

func (s *service) Estimate(ctx context.Context, req EstimateRequest) (CalculationResponse, error) {
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return CalculationResponse{}, taxerrors.ErrInvalidWorkerID
	}
	gross, err := decimal.NewFromString(req.GrossAmount)
	if err != nil {
		return CalculationResponse{}, taxerrors.ErrInvalidAmount
	}

	j, err := s.resolver.ResolveTax(ctx, req.Country, req.State, req.City)
	if err != nil {
		return CalculationResponse{}, err
	}

	return s.Apply(ctx, ApplyInput{
		WorkerID:        workerID,
		Jurisdiction:    j,
		GrossAmount:     gross,
		CalculationType: TypeEstimate,
		IsApplied:       false,
	})
}

func (s *service) GetAllByWorker(ctx context.Context, workerID string) ([]CalculationResponse, error) {
	if _, err := uuid.Parse(workerID); err != nil {
		return nil, taxerrors.ErrInvalidWorkerID
	}
	rows, err := s.repo.FindAllByWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByWorkerAndRange(ctx context.Context, workerID, from, to string) ([]CalculationResponse, error) {
	if _, err := uuid.Parse(workerID); err != nil {
		return nil, taxerrors.ErrInvalidWorkerID
	}
	fromT, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, taxerrors.ErrInvalidDateRange
	}
	toT, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, taxerrors.ErrInvalidDateRange
	}
	if fromT.After(toT) {
		return nil, taxerrors.ErrInvalidDateRange
	}

	rows, err := s.repo.FindByWorkerAndDateRange(ctx, workerID, fromT, toT.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func validCalculationType(t string) bool {
	switch t {
	case TypeShiftPayment, TypeBonus, TypeAdjustment, TypeRefund, TypeEstimate:
		return true
	default:
		return false
	}
}

// IsNotFoundCalc membantu caller membedakan kalkulasi hilang dari error infra.
func IsNotFoundCalc(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func mapToResponse(c TaxCalculation) CalculationResponse {
	resp := CalculationResponse{
		ID:              c.ID.String(),
		WorkerID:        c.WorkerID.String(),
		JurisdictionID:  c.JurisdictionID.String(),
		CalculationType: c.CalculationType,
		IsApplied:       c.IsApplied,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
	if c.ShiftID != nil {
		v := c.ShiftID.String()
		resp.ShiftID = &v
	}

	lines := make([]BreakdownLineResponse, len(c.Breakdown))
	for i, l := range c.Breakdown {
		lines[i] = BreakdownLineResponse{Label: l.Label, Amount: l.Amount.StringFixed(2)}
	}
	resp.Breakdown = TaxBreakdownResponse{
		Gross:            c.GrossAmount.StringFixed(2),
		IncomeTax:        c.IncomeTax.StringFixed(2),
		SocialSecurity:   c.SocialSecurity.StringFixed(2),
		Withholding:      c.Withholding.StringFixed(2),
		VAT:              c.VAT.StringFixed(2),
		Net:              c.NetAmount.StringFixed(2),
		EffectiveTaxRate: c.EffectiveTaxRate.StringFixed(2),
		CurrencyCode:     c.CurrencyCode,
		Lines:            lines,
	}
	return resp
}

func mapToListResponse(rows []TaxCalculation) []CalculationResponse {
	res := make([]CalculationResponse, len(rows))
	for i, c := range rows {
		res[i] = mapToResponse(c)
	}
	return res
}

// MapBreakdown mengubah hasil kalkulasi murni menjadi DTO untuk payload
// pembayaran, dipakai orkestrator tanpa lewat baris tersimpan.
func MapBreakdown(b Breakdown) TaxBreakdownResponse {
	lines := make([]BreakdownLineResponse, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = BreakdownLineResponse{Label: l.Label, Amount: l.Amount.StringFixed(2)}
	}
	return TaxBreakdownResponse{
		Gross:            b.Gross.StringFixed(2),
		IncomeTax:        b.IncomeTax.StringFixed(2),
		SocialSecurity:   b.SocialSecurity.StringFixed(2),
		Withholding:      b.Withholding.StringFixed(2),
		VAT:              b.VAT.StringFixed(2),
		Net:              b.Net.StringFixed(2),
		EffectiveTaxRate: b.EffectiveTaxRate.StringFixed(2),
		CurrencyCode:     b.CurrencyCode,
		Lines:            lines,
	}
}
