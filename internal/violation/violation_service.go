package violation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gigpay/internal/shared/clock"
	"gigpay/internal/shared/counter"
	vioerrors "gigpay/internal/violation/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecordInput adalah hasil deteksi dari rule engine, sudah final: severity
// dan angka-angkanya tidak dihitung ulang di sini.
type RecordInput struct {
	WorkerID         uuid.UUID
	ShiftID          *uuid.UUID
	JurisdictionCode string
	RuleCode         string
	RuleType         string
	Data             ViolationData
	Severity         string
	WasBlocked       bool
	DedupKey         string
	DetectedAt       time.Time
}

type Service interface {
	// Record menulis satu baris ledger, idempoten per dedup key: insert
	// kedua dengan kunci sama mengembalikan baris lama tanpa error.
	Record(ctx context.Context, input RecordInput) (*ComplianceViolation, error)
	Transition(ctx context.Context, actorID, id string, req ReviewViolationRequest) (ViolationResponse, error)
	GetByID(ctx context.Context, id string) (ViolationResponse, error)
	GetAll(ctx context.Context, filter ListFilter, page, limit int) (ViolationListResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	counterRepo counter.Repository
	clk         clock.Clock
	logger      *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counterRepo counter.Repository, clk clock.Clock, logger ...*zap.Logger) Service {
	l := zap.L().Named("violation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("violation.service")
	}
	return &service{db: db, repo: repo, counterRepo: counterRepo, clk: clk, logger: l}
}

func (s *service) Record(ctx context.Context, input RecordInput) (*ComplianceViolation, error) {
	if existing, err := s.repo.FindByDedupKey(ctx, input.DedupKey); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seq, err := s.counterRepo.GetNextValue(ctx, "violation")
	if err != nil {
		return nil, err
	}

	v := &ComplianceViolation{
		ID:               uuid.New(),
		ViolationCode:    fmt.Sprintf("VIO-%d-%06d", s.clk.Now().Year(), seq),
		WorkerID:         input.WorkerID,
		ShiftID:          input.ShiftID,
		JurisdictionCode: input.JurisdictionCode,
		RuleCode:         input.RuleCode,
		RuleType:         input.RuleType,
		Data:             input.Data,
		Severity:         input.Severity,
		Status:           StatusDetected,
		WasBlocked:       input.WasBlocked,
		DedupKey:         input.DedupKey,
		DetectedAt:       input.DetectedAt,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		// balapan antara cek dedup dan insert: pihak lain menang, pakai barisnya
		if isDuplicateDedupKey(err) {
			return s.repo.FindByDedupKey(ctx, input.DedupKey)
		}
		s.logger.Error("persist violation failed",
			zap.String("worker_id", input.WorkerID.String()),
			zap.String("rule_code", input.RuleCode),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("violation recorded",
		zap.String("violation_code", v.ViolationCode),
		zap.String("worker_id", input.WorkerID.String()),
		zap.String("rule_code", input.RuleCode),
		zap.String("severity", input.Severity),
		zap.Bool("was_blocked", input.WasBlocked),
	)
	return v, nil
}

func (s *service) Transition(ctx context.Context, actorID, id string, req ReviewViolationRequest) (ViolationResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return ViolationResponse{}, vioerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return ViolationResponse{}, vioerrors.ErrInvalidViolationID
	}
	if !isKnownStatus(req.Status) {
		return ViolationResponse{}, vioerrors.ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ViolationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	v, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ViolationResponse{}, vioerrors.ErrViolationNotFound
		}
		return ViolationResponse{}, err
	}

	if !isAllowedStatusTransition(v.Status, req.Status) {
		s.logger.Warn("violation transition refused",
			zap.String("violation_id", id),
			zap.String("from", v.Status),
			zap.String("to", req.Status),
		)
		return ViolationResponse{}, vioerrors.ErrInvalidStatusTransition
	}

	from := v.Status
	v.Status = req.Status
	if err := qtx.Update(ctx, v); err != nil {
		return ViolationResponse{}, err
	}

	t := &ViolationTransition{
		ID:          uuid.New(),
		ViolationID: v.ID,
		FromStatus:  from,
		ToStatus:    req.Status,
		ActorID:     &actorUUID,
		Notes:       req.Notes,
	}
	if err := qtx.AppendTransition(ctx, t); err != nil {
		return ViolationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ViolationResponse{}, err
	}

	s.logger.Info("violation transitioned",
		zap.String("violation_id", id),
		zap.String("from", from),
		zap.String("to", req.Status),
		zap.String("actor_id", actorID),
	)
	return mapToResponse(*v, nil), nil
}

func (s *service) GetByID(ctx context.Context, id string) (ViolationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ViolationResponse{}, vioerrors.ErrInvalidViolationID
	}

	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ViolationResponse{}, vioerrors.ErrViolationNotFound
		}
		return ViolationResponse{}, err
	}

	transitions, err := s.repo.FindTransitions(ctx, id)
	if err != nil {
		return ViolationResponse{}, err
	}
	return mapToResponse(*v, transitions), nil
}

func (s *service) GetAll(ctx context.Context, filter ListFilter, page, limit int) (ViolationListResponse, error) {
	if filter.WorkerID != nil {
		if _, err := uuid.Parse(*filter.WorkerID); err != nil {
			return ViolationListResponse{}, vioerrors.ErrInvalidWorkerID
		}
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return ViolationListResponse{}, vioerrors.ErrInvalidDateRange
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, total, err := s.repo.FindAll(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return ViolationListResponse{}, err
	}

	res := ViolationListResponse{
		Violations: make([]ViolationResponse, len(rows)),
		Total:      total,
		Page:       page,
		Limit:      limit,
	}
	for i, v := range rows {
		res.Violations[i] = mapToResponse(v, nil)
	}
	return res, nil
}

func isKnownStatus(s string) bool {
	switch s {
	case StatusDetected, StatusAcknowledged, StatusResolved, StatusExempted, StatusAppealed:
		return true
	}
	return false
}

func isDuplicateDedupKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToResponse(v ComplianceViolation, transitions []ViolationTransition) ViolationResponse {
	resp := ViolationResponse{
		ID:               v.ID.String(),
		ViolationCode:    v.ViolationCode,
		WorkerID:         v.WorkerID.String(),
		JurisdictionCode: v.JurisdictionCode,
		RuleCode:         v.RuleCode,
		RuleType:         v.RuleType,
		Data: ViolationDataResponse{
			Actual:      v.Data.Actual,
			Limit:       v.Data.Limit,
			PercentOver: v.Data.PercentOver,
			Period:      v.Data.Period,
			Unit:        v.Data.Unit,
		},
		Severity:   v.Severity,
		Status:     v.Status,
		WasBlocked: v.WasBlocked,
		DetectedAt: v.DetectedAt.Format(time.RFC3339),
	}
	if v.ShiftID != nil {
		s := v.ShiftID.String()
		resp.ShiftID = &s
	}
	for _, t := range transitions {
		tr := TransitionResponse{
			FromStatus: t.FromStatus,
			ToStatus:   t.ToStatus,
			Notes:      t.Notes,
			At:         t.CreatedAt.Format(time.RFC3339),
		}
		if t.ActorID != nil {
			a := t.ActorID.String()
			tr.ActorID = &a
		}
		resp.Transitions = append(resp.Transitions, tr)
	}
	return resp
}
