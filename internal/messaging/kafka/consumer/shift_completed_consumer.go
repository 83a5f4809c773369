package consumer

import (
	"context"
	"encoding/json"

	"gigpay/internal/compliance"
	"gigpay/internal/events"
	"gigpay/internal/jurisdiction"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConsumeShiftCompleted mengevaluasi ulang tiap shift yang selesai terhadap
// aturan yurisdiksinya. Pelanggaran masuk ledger lewat engine; pencatatan
// idempoten per dedup key sehingga retry aman.
func ConsumeShiftCompleted(
	ctx context.Context,
	reader *kafkago.Reader,
	resolver jurisdiction.Resolver,
	engine compliance.Engine,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.shift_completed")
	log.Info("shift completed consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("shift completed consumer stopped")
				return
			}
			log.Error("fetch shift completed message failed", zap.Error(err))
			continue
		}

		if !processShiftCompleted(ctx, msg.Value, resolver, engine, log) {
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit shift completed message failed", zap.Error(err))
		}
	}
}

// processShiftCompleted mengembalikan true bila pesan boleh di-commit:
// sukses dievaluasi, atau pesan rusak (poison) yang tidak akan pernah
// berhasil diulang. Kegagalan sementara (resolve/evaluate) mengembalikan
// false agar pesan di-retry.
func processShiftCompleted(
	ctx context.Context,
	value []byte,
	resolver jurisdiction.Resolver,
	engine compliance.Engine,
	log *zap.Logger,
) bool {
	var event events.ShiftCompletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Error("decode shift_completed event failed", zap.Error(err))
		return true
	}

	workerID, err := uuid.Parse(event.WorkerID)
	if err != nil {
		log.Error("shift_completed event has invalid worker id",
			zap.String("worker_id", event.WorkerID),
		)
		return true
	}

	record, err := recordFromEvent(event)
	if err != nil {
		log.Error("shift_completed event has malformed work record",
			zap.String("shift_id", event.ShiftID),
			zap.Error(err),
		)
		return true
	}

	rules, err := resolver.ResolveRules(ctx, event.CountryCode, event.StateCode)
	if err != nil {
		log.Error("resolve rules for shift failed",
			zap.String("country", event.CountryCode),
			zap.Error(err),
		)
		return false
	}

	decision, err := engine.Evaluate(ctx, workerID, record, rules)
	if err != nil {
		log.Error("evaluate completed shift failed",
			zap.String("shift_id", event.ShiftID),
			zap.String("worker_id", event.WorkerID),
			zap.Error(err),
		)
		return false
	}

	log.Info("completed shift evaluated",
		zap.String("shift_id", event.ShiftID),
		zap.String("worker_id", event.WorkerID),
		zap.Int("violations", len(decision.Violations)),
		zap.Bool("blocked", decision.Blocked),
	)
	return true
}

func recordFromEvent(event events.ShiftCompletedEvent) (compliance.WorkRecord, error) {
	record := compliance.WorkRecord{
		ShiftStart: event.ShiftStart,
		ShiftEnd:   event.ShiftEnd,
		WorkerAge:  event.WorkerAge,
	}

	if event.ShiftID != "" {
		id, err := uuid.Parse(event.ShiftID)
		if err != nil {
			return compliance.WorkRecord{}, err
		}
		record.ShiftID = &id
	}

	var err error
	record.HoursInPeriod, err = decimalMap(event.HoursInPeriod)
	if err != nil {
		return compliance.WorkRecord{}, err
	}
	record.NightHoursInPeriod, err = decimalMap(event.NightHoursInPeriod)
	if err != nil {
		return compliance.WorkRecord{}, err
	}

	if event.RestGapHours != nil {
		v, err := decimal.NewFromString(*event.RestGapHours)
		if err != nil {
			return compliance.WorkRecord{}, err
		}
		record.RestGapHours = &v
	}
	if event.HourlyRate != nil {
		v, err := decimal.NewFromString(*event.HourlyRate)
		if err != nil {
			return compliance.WorkRecord{}, err
		}
		record.HourlyRate = &v
	}
	return record, nil
}

func decimalMap(in map[string]string) (map[string]decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for period, raw := range in {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		out[period] = v
	}
	return out, nil
}
