package jurisdiction

import (
	"context"
	"database/sql"

	jerrors "gigpay/internal/jurisdiction/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, actorID string, req CreateJurisdictionRequest) (JurisdictionResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateJurisdictionRequest) (JurisdictionResponse, error)
	GetAll(ctx context.Context) ([]JurisdictionResponse, error)
	GetByID(ctx context.Context, id string) (JurisdictionResponse, error)
	Deactivate(ctx context.Context, actorID, id string) (JurisdictionResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("jurisdiction.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("jurisdiction.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateJurisdictionRequest) (JurisdictionResponse, error) {
	s.logger.Debug("create jurisdiction requested",
		zap.String("actor_id", actorID),
		zap.String("country", req.CountryCode),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create jurisdiction begin tx failed", zap.Error(err))
		return JurisdictionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rates, threshold, brackets, err := parseFiscalFields(
		req.IncomeTaxRate, req.SocialSecurityRate, req.VATRate, req.WithholdingRate,
		req.TaxFreeThreshold, req.TaxBrackets,
	)
	if err != nil {
		return JurisdictionResponse{}, err
	}

	exists, err := qtx.HasActiveTuple(ctx, req.CountryCode, req.StateCode, req.City, nil)
	if err != nil {
		return JurisdictionResponse{}, err
	}
	if exists {
		s.logger.Warn("active jurisdiction tuple conflict",
			zap.String("country", req.CountryCode),
			zap.Stringp("state", req.StateCode),
			zap.Stringp("city", req.City),
		)
		return JurisdictionResponse{}, jerrors.ErrActiveTupleExists
	}

	j := &TaxJurisdiction{
		ID:                 uuid.New(),
		CountryCode:        req.CountryCode,
		StateCode:          normalizeOptional(req.StateCode),
		City:               normalizeOptional(req.City),
		IncomeTaxRate:      rates[0],
		SocialSecurityRate: rates[1],
		VATRate:            rates[2],
		WithholdingRate:    rates[3],
		TaxFreeThreshold:   threshold,
		TaxBrackets:        brackets,
		CurrencyCode:       req.CurrencyCode,
		RequiresW9:         req.RequiresW9,
		RequiresW8BEN:      req.RequiresW8BEN,
		IsActive:           true,
	}

	if err := qtx.Create(ctx, j); err != nil {
		s.logger.Error("create jurisdiction persist failed", zap.Error(err))
		return JurisdictionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return JurisdictionResponse{}, err
	}

	s.logger.Info("jurisdiction created",
		zap.String("jurisdiction_id", j.ID.String()),
		zap.String("code", j.Code()),
	)
	return mapToResponse(*j), nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateJurisdictionRequest) (JurisdictionResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return JurisdictionResponse{}, jerrors.ErrInvalidJurisdictionID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return JurisdictionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	j, err := qtx.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return JurisdictionResponse{}, jerrors.ErrJurisdictionNotFound
		}
		return JurisdictionResponse{}, err
	}

	rates, threshold, brackets, err := parseFiscalFields(
		req.IncomeTaxRate, req.SocialSecurityRate, req.VATRate, req.WithholdingRate,
		req.TaxFreeThreshold, req.TaxBrackets,
	)
	if err != nil {
		return JurisdictionResponse{}, err
	}

	// Mengaktifkan kembali baris lama tidak boleh menabrak invariant
	// satu-baris-aktif-per-tuple.
	if req.IsActive && !j.IsActive {
		exists, err := qtx.HasActiveTuple(ctx, j.CountryCode, j.StateCode, j.City, &id)
		if err != nil {
			return JurisdictionResponse{}, err
		}
		if exists {
			return JurisdictionResponse{}, jerrors.ErrActiveTupleExists
		}
	}

	j.IncomeTaxRate = rates[0]
	j.SocialSecurityRate = rates[1]
	j.VATRate = rates[2]
	j.WithholdingRate = rates[3]
	j.TaxFreeThreshold = threshold
	j.TaxBrackets = brackets
	j.CurrencyCode = req.CurrencyCode
	j.RequiresW9 = req.RequiresW9
	j.RequiresW8BEN = req.RequiresW8BEN
	j.IsActive = req.IsActive

	if err := qtx.Update(ctx, j); err != nil {
		return JurisdictionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return JurisdictionResponse{}, err
	}

	s.logger.Info("jurisdiction updated",
		zap.String("jurisdiction_id", id),
		zap.String("actor_id", actorID),
		zap.Bool("is_active", j.IsActive),
	)
	return mapToResponse(*j), nil
}

func (s *service) GetAll(ctx context.Context) ([]JurisdictionResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]JurisdictionResponse, len(rows))
	for i, j := range rows {
		res[i] = mapToResponse(j)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (JurisdictionResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return JurisdictionResponse{}, jerrors.ErrInvalidJurisdictionID
	}
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return JurisdictionResponse{}, jerrors.ErrJurisdictionNotFound
		}
		return JurisdictionResponse{}, err
	}
	return mapToResponse(*j), nil
}

// Deactivate mematikan baris tanpa menghapus: kalkulasi historis masih
// mereferensikannya.
func (s *service) Deactivate(ctx context.Context, actorID, id string) (JurisdictionResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return JurisdictionResponse{}, jerrors.ErrInvalidJurisdictionID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return JurisdictionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	j, err := qtx.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return JurisdictionResponse{}, jerrors.ErrJurisdictionNotFound
		}
		return JurisdictionResponse{}, err
	}

	j.IsActive = false
	if err := qtx.Update(ctx, j); err != nil {
		return JurisdictionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return JurisdictionResponse{}, err
	}

	s.logger.Info("jurisdiction deactivated",
		zap.String("jurisdiction_id", id),
		zap.String("actor_id", actorID),
	)
	return mapToResponse(*j), nil
}

func parseFiscalFields(
	income, social, vat, withholding, threshold string,
	brackets []BracketPayload,
) ([4]decimal.Decimal, decimal.Decimal, []TaxBracket, error) {
	var rates [4]decimal.Decimal

	for i, raw := range []string{income, social, vat, withholding} {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return rates, decimal.Zero, nil, jerrors.ErrInvalidRate
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return rates, decimal.Zero, nil, jerrors.ErrInvalidRate
		}
		rates[i] = rate
	}

	free := decimal.Zero
	if threshold != "" {
		var err error
		free, err = decimal.NewFromString(threshold)
		if err != nil || free.IsNegative() {
			return rates, decimal.Zero, nil, jerrors.ErrInvalidRate
		}
	}

	parsed, err := parseBrackets(brackets)
	if err != nil {
		return rates, decimal.Zero, nil, err
	}

	return rates, free, parsed, nil
}

func parseBrackets(payload []BracketPayload) ([]TaxBracket, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	brackets := make([]TaxBracket, len(payload))
	prev := decimal.Zero
	for i, b := range payload {
		threshold, err := decimal.NewFromString(b.Threshold)
		if err != nil {
			return nil, jerrors.ErrInvalidBrackets
		}
		rate, err := decimal.NewFromString(b.Rate)
		if err != nil {
			return nil, jerrors.ErrInvalidBrackets
		}
		// Threshold harus naik ketat; rate non-negatif dan masuk akal.
		if threshold.LessThanOrEqual(prev) && i > 0 {
			return nil, jerrors.ErrInvalidBrackets
		}
		if threshold.IsNegative() || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, jerrors.ErrInvalidBrackets
		}
		brackets[i] = TaxBracket{Threshold: threshold, Rate: rate}
		prev = threshold
	}
	return brackets, nil
}

func normalizeOptional(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func mapToResponse(j TaxJurisdiction) JurisdictionResponse {
	resp := JurisdictionResponse{
		ID:                 j.ID.String(),
		CountryCode:        j.CountryCode,
		StateCode:          j.StateCode,
		City:               j.City,
		Code:               j.Code(),
		IncomeTaxRate:      j.IncomeTaxRate.StringFixed(4),
		SocialSecurityRate: j.SocialSecurityRate.StringFixed(4),
		VATRate:            j.VATRate.StringFixed(4),
		WithholdingRate:    j.WithholdingRate.StringFixed(4),
		TaxFreeThreshold:   j.TaxFreeThreshold.StringFixed(2),
		CurrencyCode:       j.CurrencyCode,
		RequiresW9:         j.RequiresW9,
		RequiresW8BEN:      j.RequiresW8BEN,
		IsActive:           j.IsActive,
	}
	for _, b := range j.TaxBrackets {
		resp.TaxBrackets = append(resp.TaxBrackets, BracketResponse{
			Threshold: b.Threshold.StringFixed(2),
			Rate:      b.Rate.StringFixed(4),
		})
	}
	return resp
}
