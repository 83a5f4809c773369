package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"gigpay/internal/compliance"
	"gigpay/internal/events"
	"gigpay/internal/jurisdiction"
	"gigpay/internal/messaging/kafka"
	payerrors "gigpay/internal/payment/errors"
	"gigpay/internal/shared/clock"
	"gigpay/internal/shared/contextutil"
	"gigpay/internal/taxcalc"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 8

type Service interface {
	// ProcessPayment: resolve yurisdiksi, hitung pajak, evaluasi kepatuhan,
	// catat kalkulasi + pelanggaran, antre event outbox. Saat hard-block,
	// kalkulasi tetap dicatat sebagai estimate (is_applied=false) dan
	// Compliance.Blocked=true; pemanggil yang membatalkan aksinya.
	ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (PaymentResponse, error)
	// ProcessBatch mengevaluasi item-item secara paralel dengan konkurensi
	// terbatas; error per-item tidak membatalkan batch, urutan hasil
	// deterministik mengikuti indeks input.
	ProcessBatch(ctx context.Context, req BatchRequest) (BatchResponse, error)
}

type service struct {
	db       *sql.DB
	resolver jurisdiction.Resolver
	taxes    taxcalc.Service
	engine   compliance.Engine
	outbox   kafka.OutboxRepository
	clk      clock.Clock
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	resolver jurisdiction.Resolver,
	taxes taxcalc.Service,
	engine compliance.Engine,
	outbox kafka.OutboxRepository,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payment.service")
	}
	return &service{
		db:       db,
		resolver: resolver,
		taxes:    taxes,
		engine:   engine,
		outbox:   outbox,
		clk:      clk,
		logger:   l,
	}
}

func (s *service) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (PaymentResponse, error) {
	md := contextutil.ExtractMetadata(ctx)

	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return PaymentResponse{}, payerrors.ErrInvalidWorkerID
	}
	gross, err := decimal.NewFromString(req.GrossAmount)
	if err != nil || gross.IsNegative() {
		return PaymentResponse{}, payerrors.ErrInvalidAmount
	}

	j, err := s.resolver.ResolveTax(ctx, req.Country, req.State, req.City)
	if err != nil {
		return PaymentResponse{}, err
	}

	var (
		decision compliance.Decision
		shiftID  *uuid.UUID
	)
	if req.WorkRecord != nil {
		record, err := parseWorkRecord(*req.WorkRecord)
		if err != nil {
			return PaymentResponse{}, err
		}
		shiftID = record.ShiftID

		rules, err := s.resolver.ResolveRules(ctx, req.Country, req.State)
		if err != nil {
			return PaymentResponse{}, err
		}
		decision, err = s.engine.Evaluate(ctx, workerID, record, rules)
		if err != nil {
			return PaymentResponse{}, err
		}
	}

	calcType := taxcalc.TypeShiftPayment
	if decision.Blocked {
		// pembayaran tidak jadi: simpan sebagai estimate untuk audit
		calcType = taxcalc.TypeEstimate
	}
	calc, err := s.taxes.Apply(ctx, taxcalc.ApplyInput{
		WorkerID:        workerID,
		Jurisdiction:    j,
		ShiftID:         shiftID,
		GrossAmount:     gross,
		CalculationType: calcType,
		IsApplied:       !decision.Blocked,
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	if err := s.queueEvents(ctx, md.RequestID, workerID, j.Code(), calc, decision); err != nil {
		return PaymentResponse{}, err
	}

	s.logger.Info("payment processed",
		zap.String("request_id", md.RequestID),
		zap.String("actor_id", md.UserID),
		zap.String("worker_id", req.WorkerID),
		zap.String("jurisdiction", j.Code()),
		zap.Bool("blocked", decision.Blocked),
		zap.Int("violations", len(decision.Violations)),
	)
	return PaymentResponse{Calculation: calc, Compliance: decision}, nil
}

func (s *service) ProcessBatch(ctx context.Context, req BatchRequest) (BatchResponse, error) {
	if len(req.Items) == 0 {
		return BatchResponse{}, payerrors.ErrEmptyBatch
	}

	results := make([]BatchItemResult, len(req.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultBatchConcurrency)
	for i, item := range req.Items {
		i, item := i, item
		g.Go(func() error {
			resp, err := s.ProcessPayment(gctx, item)
			if err != nil {
				// item rusak tidak menggagalkan batch
				msg := err.Error()
				results[i] = BatchItemResult{Index: i, Error: &msg}
				return nil
			}
			results[i] = BatchItemResult{Index: i, Payment: &resp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResponse{}, err
	}

	out := BatchResponse{Results: results}
	for _, r := range results {
		switch {
		case r.Error != nil:
			out.Failed++
		case r.Payment.Compliance.Blocked:
			out.Blocked++
		default:
			out.Processed++
		}
	}

	s.logger.Info("payment batch finished",
		zap.Int("items", len(req.Items)),
		zap.Int("processed", out.Processed),
		zap.Int("blocked", out.Blocked),
		zap.Int("failed", out.Failed),
	)
	return out, nil
}

func (s *service) queueEvents(
	ctx context.Context,
	rid string,
	workerID uuid.UUID,
	jurisdictionCode string,
	calc taxcalc.CalculationResponse,
	decision compliance.Decision,
) error {
	if s.outbox == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	outboxRepo := s.outbox.WithTx(tx)
	now := s.clk.Now().UTC()

	for _, v := range decision.Violations {
		payload, err := json.Marshal(events.ViolationDetectedEvent{
			EventType:     "violation_detected",
			RequestID:     rid,
			ViolationCode: v.ViolationCode,
			WorkerID:      workerID.String(),
			RuleCode:      v.RuleCode,
			Severity:      v.Severity,
			WasBlocked:    v.Blocked,
			OccurredAt:    now,
		})
		if err != nil {
			return err
		}
		if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "violation",
			AggregateID:   v.ViolationCode,
			EventType:     "violation_detected",
			Topic:         events.ViolationDetectedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("violation outbox persist failed",
				zap.String("violation_code", v.ViolationCode),
				zap.Error(err),
			)
			return err
		}
	}

	if !decision.Blocked {
		payload, err := json.Marshal(events.PaymentProcessedEvent{
			EventType:        "payment_processed",
			RequestID:        rid,
			CalculationID:    calc.ID,
			WorkerID:         workerID.String(),
			JurisdictionCode: jurisdictionCode,
			GrossAmount:      calc.Breakdown.Gross,
			NetAmount:        calc.Breakdown.Net,
			OccurredAt:       now,
		})
		if err != nil {
			return err
		}
		if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "tax_calculation",
			AggregateID:   calc.ID,
			EventType:     "payment_processed",
			Topic:         events.PaymentProcessedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("payment outbox persist failed",
				zap.String("calculation_id", calc.ID),
				zap.Error(err),
			)
			return err
		}
	}

	return tx.Commit()
}

func parseWorkRecord(req WorkRecordRequest) (compliance.WorkRecord, error) {
	start, err := time.Parse(time.RFC3339, req.ShiftStart)
	if err != nil {
		return compliance.WorkRecord{}, payerrors.ErrInvalidWorkRecord
	}
	end, err := time.Parse(time.RFC3339, req.ShiftEnd)
	if err != nil {
		return compliance.WorkRecord{}, payerrors.ErrInvalidWorkRecord
	}
	if !start.Before(end) {
		return compliance.WorkRecord{}, payerrors.ErrInvalidShiftWindow
	}

	record := compliance.WorkRecord{
		ShiftStart: start,
		ShiftEnd:   end,
		WorkerAge:  req.WorkerAge,
	}
	if req.ShiftID != nil {
		id, err := uuid.Parse(*req.ShiftID)
		if err != nil {
			return compliance.WorkRecord{}, payerrors.ErrInvalidWorkRecord
		}
		record.ShiftID = &id
	}

	record.HoursInPeriod, err = parseDecimalMap(req.HoursInPeriod)
	if err != nil {
		return compliance.WorkRecord{}, err
	}
	record.NightHoursInPeriod, err = parseDecimalMap(req.NightHoursInPeriod)
	if err != nil {
		return compliance.WorkRecord{}, err
	}

	if req.RestGapHours != nil {
		v, err := decimal.NewFromString(*req.RestGapHours)
		if err != nil {
			return compliance.WorkRecord{}, payerrors.ErrInvalidWorkRecord
		}
		record.RestGapHours = &v
	}
	if req.HourlyRate != nil {
		v, err := decimal.NewFromString(*req.HourlyRate)
		if err != nil {
			return compliance.WorkRecord{}, payerrors.ErrInvalidWorkRecord
		}
		record.HourlyRate = &v
	}
	return record, nil
}

func parseDecimalMap(in map[string]string) (map[string]decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for period, raw := range in {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, payerrors.ErrInvalidWorkRecord
		}
		out[period] = v
	}
	return out, nil
}
