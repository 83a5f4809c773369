package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gigpay/internal/compliance"
	"gigpay/internal/events"
	"gigpay/internal/jurisdiction"
	"gigpay/internal/laborrule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct {
	resolveRulesFn func(ctx context.Context, country string, state *string) ([]laborrule.LaborLawRule, error)
}

func (f *fakeResolver) ResolveTax(ctx context.Context, country string, state, city *string) (*jurisdiction.TaxJurisdiction, error) {
	panic("not used")
}

func (f *fakeResolver) ResolveRules(ctx context.Context, country string, state *string) ([]laborrule.LaborLawRule, error) {
	if f.resolveRulesFn != nil {
		return f.resolveRulesFn(ctx, country, state)
	}
	return nil, nil
}

type fakeEngine struct {
	evaluateFn func(ctx context.Context, workerID uuid.UUID, record compliance.WorkRecord, rules []laborrule.LaborLawRule) (compliance.Decision, error)
	calls      int
}

func (f *fakeEngine) Evaluate(ctx context.Context, workerID uuid.UUID, record compliance.WorkRecord, rules []laborrule.LaborLawRule) (compliance.Decision, error) {
	f.calls++
	if f.evaluateFn != nil {
		return f.evaluateFn(ctx, workerID, record, rules)
	}
	return compliance.Decision{}, nil
}

func strPtr(s string) *string { return &s }

func validShiftEvent() events.ShiftCompletedEvent {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return events.ShiftCompletedEvent{
		EventType:   "shift.completed",
		ShiftID:     uuid.NewString(),
		WorkerID:    uuid.NewString(),
		CountryCode: "DE",
		StateCode:   strPtr("BY"),
		ShiftStart:  start,
		ShiftEnd:    start.Add(9 * time.Hour),
		HoursInPeriod: map[string]string{
			"weekly": "46.5",
			"daily":  "9",
		},
		NightHoursInPeriod: map[string]string{"weekly": "4"},
		RestGapHours:       strPtr("10.5"),
		HourlyRate:         strPtr("14.25"),
		OccurredAt:         start.Add(9 * time.Hour),
	}
}

func TestRecordFromEvent(t *testing.T) {
	t.Run("maps full event", func(t *testing.T) {
		event := validShiftEvent()
		age := 17
		event.WorkerAge = &age

		record, err := recordFromEvent(event)
		require.NoError(t, err)

		require.NotNil(t, record.ShiftID)
		assert.Equal(t, event.ShiftID, record.ShiftID.String())
		assert.Equal(t, event.ShiftStart, record.ShiftStart)
		assert.Equal(t, event.ShiftEnd, record.ShiftEnd)
		assert.True(t, record.HoursInPeriod["weekly"].Equal(decimal.RequireFromString("46.5")))
		assert.True(t, record.HoursInPeriod["daily"].Equal(decimal.RequireFromString("9")))
		assert.True(t, record.NightHoursInPeriod["weekly"].Equal(decimal.RequireFromString("4")))
		require.NotNil(t, record.RestGapHours)
		assert.True(t, record.RestGapHours.Equal(decimal.RequireFromString("10.5")))
		require.NotNil(t, record.HourlyRate)
		assert.True(t, record.HourlyRate.Equal(decimal.RequireFromString("14.25")))
		require.NotNil(t, record.WorkerAge)
		assert.Equal(t, 17, *record.WorkerAge)
	})

	t.Run("empty aggregates stay nil", func(t *testing.T) {
		event := validShiftEvent()
		event.HoursInPeriod = nil
		event.NightHoursInPeriod = nil
		event.RestGapHours = nil
		event.HourlyRate = nil

		record, err := recordFromEvent(event)
		require.NoError(t, err)
		assert.Nil(t, record.HoursInPeriod)
		assert.Nil(t, record.NightHoursInPeriod)
		assert.Nil(t, record.RestGapHours)
		assert.Nil(t, record.HourlyRate)
	})

	t.Run("malformed hours", func(t *testing.T) {
		event := validShiftEvent()
		event.HoursInPeriod["weekly"] = "not-a-number"

		_, err := recordFromEvent(event)
		assert.Error(t, err)
	})

	t.Run("malformed rest gap", func(t *testing.T) {
		event := validShiftEvent()
		event.RestGapHours = strPtr("??")

		_, err := recordFromEvent(event)
		assert.Error(t, err)
	})

	t.Run("malformed shift id", func(t *testing.T) {
		event := validShiftEvent()
		event.ShiftID = "shift-42"

		_, err := recordFromEvent(event)
		assert.Error(t, err)
	})
}

func TestProcessShiftCompleted(t *testing.T) {
	log := zap.NewNop()

	marshal := func(t *testing.T, event events.ShiftCompletedEvent) []byte {
		t.Helper()
		b, err := json.Marshal(event)
		require.NoError(t, err)
		return b
	}

	t.Run("evaluates and commits", func(t *testing.T) {
		event := validShiftEvent()
		rules := []laborrule.LaborLawRule{{RuleCode: "EU-WT-001"}}
		resolver := &fakeResolver{resolveRulesFn: func(ctx context.Context, country string, state *string) ([]laborrule.LaborLawRule, error) {
			assert.Equal(t, "DE", country)
			require.NotNil(t, state)
			assert.Equal(t, "BY", *state)
			return rules, nil
		}}
		engine := &fakeEngine{evaluateFn: func(ctx context.Context, workerID uuid.UUID, record compliance.WorkRecord, got []laborrule.LaborLawRule) (compliance.Decision, error) {
			assert.Equal(t, event.WorkerID, workerID.String())
			assert.Equal(t, rules, got)
			assert.True(t, record.HoursInPeriod["weekly"].Equal(decimal.RequireFromString("46.5")))
			return compliance.Decision{}, nil
		}}

		commit := processShiftCompleted(context.Background(), marshal(t, event), resolver, engine, log)
		assert.True(t, commit)
		assert.Equal(t, 1, engine.calls)
	})

	t.Run("poison payload is committed", func(t *testing.T) {
		engine := &fakeEngine{}
		commit := processShiftCompleted(context.Background(), []byte("{not json"), &fakeResolver{}, engine, log)
		assert.True(t, commit)
		assert.Zero(t, engine.calls)
	})

	t.Run("invalid worker id is committed", func(t *testing.T) {
		event := validShiftEvent()
		event.WorkerID = "worker-1"
		engine := &fakeEngine{}

		commit := processShiftCompleted(context.Background(), marshal(t, event), &fakeResolver{}, engine, log)
		assert.True(t, commit)
		assert.Zero(t, engine.calls)
	})

	t.Run("malformed work record is committed", func(t *testing.T) {
		event := validShiftEvent()
		event.HoursInPeriod["weekly"] = "banyak"
		engine := &fakeEngine{}

		commit := processShiftCompleted(context.Background(), marshal(t, event), &fakeResolver{}, engine, log)
		assert.True(t, commit)
		assert.Zero(t, engine.calls)
	})

	t.Run("resolver failure is retried", func(t *testing.T) {
		resolver := &fakeResolver{resolveRulesFn: func(ctx context.Context, country string, state *string) ([]laborrule.LaborLawRule, error) {
			return nil, errors.New("db down")
		}}
		engine := &fakeEngine{}

		commit := processShiftCompleted(context.Background(), marshal(t, validShiftEvent()), resolver, engine, log)
		assert.False(t, commit)
		assert.Zero(t, engine.calls)
	})

	t.Run("engine failure is retried", func(t *testing.T) {
		engine := &fakeEngine{evaluateFn: func(ctx context.Context, workerID uuid.UUID, record compliance.WorkRecord, rules []laborrule.LaborLawRule) (compliance.Decision, error) {
			return compliance.Decision{}, errors.New("ledger unavailable")
		}}

		commit := processShiftCompleted(context.Background(), marshal(t, validShiftEvent()), &fakeResolver{}, engine, log)
		assert.False(t, commit)
		assert.Equal(t, 1, engine.calls)
	})
}
