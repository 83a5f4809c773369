package laborrule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	lrerrors "gigpay/internal/laborrule/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, actorID string, req CreateRuleRequest) (RuleResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateRuleRequest) (RuleResponse, error)
	GetByID(ctx context.Context, id string) (RuleResponse, error)
	GetAllByJurisdiction(ctx context.Context, jurisdictionCode string) ([]RuleResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("laborrule.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("laborrule.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateRuleRequest) (RuleResponse, error) {
	s.logger.Debug("create rule requested",
		zap.String("actor_id", actorID),
		zap.String("jurisdiction_code", req.JurisdictionCode),
		zap.String("rule_code", req.RuleCode),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RuleResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	params, err := parseParams(req.Parameters)
	if err != nil {
		return RuleResponse{}, err
	}
	if err := params.Validate(req.RuleType); err != nil {
		return RuleResponse{}, err
	}

	from, until, err := parseEffectiveWindow(req.EffectiveFrom, req.EffectiveUntil)
	if err != nil {
		return RuleResponse{}, err
	}

	exists, err := qtx.HasRuleCode(ctx, req.JurisdictionCode, req.RuleCode, nil)
	if err != nil {
		return RuleResponse{}, err
	}
	if exists {
		return RuleResponse{}, lrerrors.ErrDuplicateRuleCode
	}

	rule := &LaborLawRule{
		ID:               uuid.New(),
		JurisdictionCode: req.JurisdictionCode,
		RuleCode:         req.RuleCode,
		Name:             req.Name,
		RuleType:         req.RuleType,
		Enforcement:      req.Enforcement,
		Parameters:       params,
		AllowsOptOut:     req.AllowsOptOut,
		EffectiveFrom:    from,
		EffectiveUntil:   until,
		IsActive:         true,
	}

	if err := qtx.Create(ctx, rule); err != nil {
		s.logger.Error("create rule persist failed", zap.Error(err))
		return RuleResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return RuleResponse{}, err
	}

	s.logger.Info("rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("jurisdiction_code", rule.JurisdictionCode),
		zap.String("rule_code", rule.RuleCode),
	)
	return mapToResponse(*rule), nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateRuleRequest) (RuleResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RuleResponse{}, lrerrors.ErrRuleNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RuleResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rule, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RuleResponse{}, lrerrors.ErrRuleNotFound
		}
		return RuleResponse{}, err
	}

	params, err := parseParams(req.Parameters)
	if err != nil {
		return RuleResponse{}, err
	}
	if err := params.Validate(rule.RuleType); err != nil {
		return RuleResponse{}, err
	}

	from, until, err := parseEffectiveWindow(req.EffectiveFrom, req.EffectiveUntil)
	if err != nil {
		return RuleResponse{}, err
	}

	rule.Name = req.Name
	rule.Enforcement = req.Enforcement
	rule.Parameters = params
	rule.AllowsOptOut = req.AllowsOptOut
	rule.EffectiveFrom = from
	rule.EffectiveUntil = until
	rule.IsActive = req.IsActive

	if err := qtx.Update(ctx, rule); err != nil {
		return RuleResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return RuleResponse{}, err
	}

	s.logger.Info("rule updated",
		zap.String("rule_id", id),
		zap.String("actor_id", actorID),
		zap.Bool("is_active", rule.IsActive),
	)
	return mapToResponse(*rule), nil
}

func (s *service) GetByID(ctx context.Context, id string) (RuleResponse, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RuleResponse{}, lrerrors.ErrRuleNotFound
		}
		return RuleResponse{}, err
	}
	return mapToResponse(*rule), nil
}

func (s *service) GetAllByJurisdiction(ctx context.Context, jurisdictionCode string) ([]RuleResponse, error) {
	rules, err := s.repo.FindAllByJurisdiction(ctx, jurisdictionCode)
	if err != nil {
		return nil, err
	}
	res := make([]RuleResponse, len(rules))
	for i, r := range rules {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func parseParams(p RuleParamsPayload) (RuleParams, error) {
	params := RuleParams{
		Period: p.Period,
		MinAge: p.MinAge,
	}

	parse := func(raw *string) (*decimal.Decimal, error) {
		if raw == nil || *raw == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(*raw)
		if err != nil || d.IsNegative() {
			return nil, lrerrors.ErrMissingRuleParams
		}
		return &d, nil
	}

	var err error
	if params.MaxHours, err = parse(p.MaxHours); err != nil {
		return RuleParams{}, err
	}
	if params.MinHours, err = parse(p.MinHours); err != nil {
		return RuleParams{}, err
	}
	if params.MinHourlyRate, err = parse(p.MinHourlyRate); err != nil {
		return RuleParams{}, err
	}
	return params, nil
}

func parseEffectiveWindow(fromStr string, untilStr *string) (time.Time, *time.Time, error) {
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, nil, lrerrors.ErrInvalidDateFormat
	}

	var until *time.Time
	if untilStr != nil && *untilStr != "" {
		t, err := time.Parse("2006-01-02", *untilStr)
		if err != nil {
			return time.Time{}, nil, lrerrors.ErrInvalidDateFormat
		}
		if from.After(t) {
			return time.Time{}, nil, lrerrors.ErrInvalidDateRange
		}
		until = &t
	}
	return from, until, nil
}

func mapToResponse(r LaborLawRule) RuleResponse {
	resp := RuleResponse{
		ID:               r.ID.String(),
		JurisdictionCode: r.JurisdictionCode,
		RuleCode:         r.RuleCode,
		Name:             r.Name,
		RuleType:         r.RuleType,
		Enforcement:      r.Enforcement,
		AllowsOptOut:     r.AllowsOptOut,
		EffectiveFrom:    r.EffectiveFrom.Format("2006-01-02"),
		IsActive:         r.IsActive,
	}
	if r.EffectiveUntil != nil {
		v := r.EffectiveUntil.Format("2006-01-02")
		resp.EffectiveUntil = &v
	}

	fmtDec := func(d *decimal.Decimal) *string {
		if d == nil {
			return nil
		}
		s := d.StringFixed(2)
		return &s
	}
	resp.Parameters = RuleParamsResponse{
		MaxHours:      fmtDec(r.Parameters.MaxHours),
		MinHours:      fmtDec(r.Parameters.MinHours),
		Period:        r.Parameters.Period,
		MinAge:        r.Parameters.MinAge,
		MinHourlyRate: fmtDec(r.Parameters.MinHourlyRate),
	}
	return resp
}
