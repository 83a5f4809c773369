package exemption

import (
	"context"
	"database/sql"
	"errors"
	"time"

	exerrors "gigpay/internal/exemption/errors"
	"gigpay/internal/laborrule"
	"gigpay/internal/shared/clock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	// GetActive mengembalikan exemption yang sedang berlaku untuk
	// (worker, rule), atau nil tanpa error bila tidak ada.
	GetActive(ctx context.Context, workerID, ruleCode string) (*WorkerExemption, error)
	RequestOptOut(ctx context.Context, actorID string, req RequestOptOutRequest) (ExemptionResponse, error)
	Approve(ctx context.Context, adminID, id string) (ExemptionResponse, error)
	Reject(ctx context.Context, adminID, id, reason string) (ExemptionResponse, error)
	Revoke(ctx context.Context, adminID, id, reason string) (ExemptionResponse, error)
	Acknowledge(ctx context.Context, workerID, id string) (ExemptionResponse, error)
	GetAllByWorker(ctx context.Context, workerID string) ([]ExemptionResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	ruleRepo laborrule.Repository
	clk      clock.Clock
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, ruleRepo laborrule.Repository, clk clock.Clock, logger ...*zap.Logger) Service {
	l := zap.L().Named("exemption.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("exemption.service")
	}
	return &service{db: db, repo: repo, ruleRepo: ruleRepo, clk: clk, logger: l}
}

func (s *service) GetActive(ctx context.Context, workerID, ruleCode string) (*WorkerExemption, error) {
	e, err := s.repo.FindApprovedActive(ctx, workerID, ruleCode, s.clk.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func (s *service) RequestOptOut(ctx context.Context, actorID string, req RequestOptOutRequest) (ExemptionResponse, error) {
	s.logger.Debug("opt-out requested",
		zap.String("actor_id", actorID),
		zap.String("worker_id", req.WorkerID),
		zap.String("rule_code", req.RuleCode),
	)

	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return ExemptionResponse{}, exerrors.ErrInvalidWorkerID
	}

	validFrom, validUntil, err := parseValidityWindow(req.ValidFrom, req.ValidUntil)
	if err != nil {
		return ExemptionResponse{}, err
	}

	rule, err := s.ruleRepo.FindByCode(ctx, req.JurisdictionCode, req.RuleCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExemptionResponse{}, exerrors.ErrExemptionNotFound
		}
		return ExemptionResponse{}, err
	}
	if !rule.AllowsOptOut {
		s.logger.Warn("opt-out refused: rule does not allow it",
			zap.String("rule_code", req.RuleCode),
		)
		return ExemptionResponse{}, exerrors.ErrRuleNotOptOutable
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ExemptionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e := &WorkerExemption{
		ID:               uuid.New(),
		WorkerID:         workerID,
		JurisdictionCode: req.JurisdictionCode,
		RuleCode:         req.RuleCode,
		Reason:           req.Reason,
		DocumentURL:      req.DocumentURL,
		ValidFrom:        validFrom,
		ValidUntil:       validUntil,
		Status:           StatusPending,
	}

	if err := qtx.Create(ctx, e); err != nil {
		s.logger.Error("persist opt-out request failed", zap.Error(err))
		return ExemptionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ExemptionResponse{}, err
	}

	s.logger.Info("opt-out request created",
		zap.String("exemption_id", e.ID.String()),
		zap.String("worker_id", req.WorkerID),
		zap.String("rule_code", req.RuleCode),
	)
	return s.mapToResponse(*e), nil
}

// Approve diserialisasi lewat transaksi + cek overlap: saat dua approval
// berlomba untuk (worker, rule) yang sama, yang kedua mendapat konflik.
// Approval TIDAK menyentuh baris pelanggaran yang sudah tercatat.
func (s *service) Approve(ctx context.Context, adminID, id string) (ExemptionResponse, error) {
	if _, err := uuid.Parse(adminID); err != nil {
		return ExemptionResponse{}, exerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ExemptionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExemptionResponse{}, exerrors.ErrExemptionNotFound
		}
		return ExemptionResponse{}, err
	}
	if e.Status != StatusPending {
		return ExemptionResponse{}, exerrors.ErrInvalidStatusTransition
	}

	overlap, err := qtx.HasOverlappingApproved(ctx, e.WorkerID.String(), e.RuleCode, e.ValidFrom, e.ValidUntil, &id)
	if err != nil {
		return ExemptionResponse{}, err
	}
	if overlap {
		s.logger.Warn("exemption approval conflict",
			zap.String("exemption_id", id),
			zap.String("worker_id", e.WorkerID.String()),
			zap.String("rule_code", e.RuleCode),
		)
		return ExemptionResponse{}, exerrors.ErrExemptionConflict
	}

	adminUUID := uuid.MustParse(adminID)
	now := s.clk.Now()
	e.Status = StatusApproved
	e.ReviewedBy = &adminUUID
	e.ReviewedAt = &now

	if err := qtx.Update(ctx, e); err != nil {
		if isUniqueActiveExemptionViolation(err) {
			return ExemptionResponse{}, exerrors.ErrExemptionConflict
		}
		return ExemptionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ExemptionResponse{}, err
	}

	s.logger.Info("exemption approved",
		zap.String("exemption_id", id),
		zap.String("admin_id", adminID),
	)
	return s.mapToResponse(*e), nil
}

func (s *service) Reject(ctx context.Context, adminID, id, reason string) (ExemptionResponse, error) {
	if reason == "" {
		return ExemptionResponse{}, exerrors.ErrRejectionReasonRequired
	}
	return s.review(ctx, adminID, id, func(e *WorkerExemption) error {
		if e.Status != StatusPending {
			return exerrors.ErrInvalidStatusTransition
		}
		e.Status = StatusRejected
		e.RejectionReason = &reason
		return nil
	})
}

// Revoke berlaku seketika, bahkan di tengah jendela validitas; lookup
// berikutnya berhenti mengembalikannya sebagai aktif sejak saat ini.
func (s *service) Revoke(ctx context.Context, adminID, id, reason string) (ExemptionResponse, error) {
	if reason == "" {
		return ExemptionResponse{}, exerrors.ErrRevocationReasonRequired
	}
	return s.review(ctx, adminID, id, func(e *WorkerExemption) error {
		if e.Status != StatusApproved {
			return exerrors.ErrInvalidStatusTransition
		}
		now := s.clk.Now()
		e.Status = StatusRevoked
		e.RevocationReason = &reason
		e.RevokedAt = &now
		return nil
	})
}

func (s *service) Acknowledge(ctx context.Context, workerID, id string) (ExemptionResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ExemptionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	e, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExemptionResponse{}, exerrors.ErrExemptionNotFound
		}
		return ExemptionResponse{}, err
	}
	if e.WorkerID.String() != workerID {
		return ExemptionResponse{}, exerrors.ErrExemptionNotFound
	}

	e.WorkerAcknowledged = true
	if err := qtx.Update(ctx, e); err != nil {
		return ExemptionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ExemptionResponse{}, err
	}
	return s.mapToResponse(*e), nil
}

func (s *service) GetAllByWorker(ctx context.Context, workerID string) ([]ExemptionResponse, error) {
	if _, err := uuid.Parse(workerID); err != nil {
		return nil, exerrors.ErrInvalidWorkerID
	}
	rows, err := s.repo.FindAllByWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	res := make([]ExemptionResponse, len(rows))
	for i, e := range rows {
		res[i] = s.mapToResponse(e)
	}
	return res, nil
}

func (s *service) review(ctx context.Context, adminID, id string, apply func(*WorkerExemption) error) (ExemptionResponse, error) {
	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return ExemptionResponse{}, exerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ExemptionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	e, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExemptionResponse{}, exerrors.ErrExemptionNotFound
		}
		return ExemptionResponse{}, err
	}

	if err := apply(e); err != nil {
		return ExemptionResponse{}, err
	}

	now := s.clk.Now()
	e.ReviewedBy = &adminUUID
	e.ReviewedAt = &now

	if err := qtx.Update(ctx, e); err != nil {
		return ExemptionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ExemptionResponse{}, err
	}

	s.logger.Info("exemption reviewed",
		zap.String("exemption_id", id),
		zap.String("admin_id", adminID),
		zap.String("status", e.Status),
	)
	return s.mapToResponse(*e), nil
}

func isUniqueActiveExemptionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func parseValidityWindow(fromStr string, untilStr *string) (time.Time, *time.Time, error) {
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, nil, exerrors.ErrInvalidDateFormat
	}
	var until *time.Time
	if untilStr != nil && *untilStr != "" {
		t, err := time.Parse("2006-01-02", *untilStr)
		if err != nil {
			return time.Time{}, nil, exerrors.ErrInvalidDateFormat
		}
		if from.After(t) {
			return time.Time{}, nil, exerrors.ErrInvalidValidityWindow
		}
		until = &t
	}
	return from, until, nil
}

func (s *service) mapToResponse(e WorkerExemption) ExemptionResponse {
	resp := ExemptionResponse{
		ID:                 e.ID.String(),
		WorkerID:           e.WorkerID.String(),
		JurisdictionCode:   e.JurisdictionCode,
		RuleCode:           e.RuleCode,
		Reason:             e.Reason,
		DocumentURL:        e.DocumentURL,
		ValidFrom:          e.ValidFrom.Format("2006-01-02"),
		Status:             e.DisplayStatus(s.clk.Now()),
		WorkerAcknowledged: e.WorkerAcknowledged,
		RejectionReason:    e.RejectionReason,
		RevocationReason:   e.RevocationReason,
	}
	if e.ValidUntil != nil {
		v := e.ValidUntil.Format("2006-01-02")
		resp.ValidUntil = &v
	}
	if e.ReviewedBy != nil {
		v := e.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if e.ReviewedAt != nil {
		v := e.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}
