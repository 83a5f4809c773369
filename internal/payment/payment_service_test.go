package payment_test

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"gigpay/internal/compliance"
	"gigpay/internal/jurisdiction"
	jerrors "gigpay/internal/jurisdiction/errors"
	"gigpay/internal/laborrule"
	"gigpay/internal/payment"
	payerrors "gigpay/internal/payment/errors"
	"gigpay/internal/shared/clock"
	"gigpay/internal/taxcalc"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeResolver struct {
	resolveTaxFn   func(ctx context.Context, country string, state, city *string) (*jurisdiction.TaxJurisdiction, error)
	resolveRulesFn func(ctx context.Context, country string, state *string) ([]laborrule.LaborLawRule, error)
}

func (f *fakeResolver) ResolveTax(ctx context.Context, country string, state, city *string) (*jurisdiction.TaxJurisdiction, error) {
	if f.resolveTaxFn != nil {
		return f.resolveTaxFn(ctx, country, state, city)
	}
	return &jurisdiction.TaxJurisdiction{ID: uuid.New(), CountryCode: country, CurrencyCode: "USD"}, nil
}

func (f *fakeResolver) ResolveRules(ctx context.Context, country string, state *string) ([]laborrule.LaborLawRule, error) {
	if f.resolveRulesFn != nil {
		return f.resolveRulesFn(ctx, country, state)
	}
	return nil, nil
}

type fakeTaxService struct {
	taxcalc.Service
	applyFn func(ctx context.Context, req taxcalc.ApplyInput) (taxcalc.CalculationResponse, error)
}

func (f *fakeTaxService) Apply(ctx context.Context, req taxcalc.ApplyInput) (taxcalc.CalculationResponse, error) {
	if f.applyFn != nil {
		return f.applyFn(ctx, req)
	}
	return taxcalc.CalculationResponse{
		ID:              uuid.New().String(),
		WorkerID:        req.WorkerID.String(),
		CalculationType: req.CalculationType,
		IsApplied:       req.IsApplied,
	}, nil
}

type fakeEngine struct {
	evaluateFn func(ctx context.Context, workerID uuid.UUID, record compliance.WorkRecord, rules []laborrule.LaborLawRule) (compliance.Decision, error)
}

func (f *fakeEngine) Evaluate(ctx context.Context, workerID uuid.UUID, record compliance.WorkRecord, rules []laborrule.LaborLawRule) (compliance.Decision, error) {
	if f.evaluateFn != nil {
		return f.evaluateFn(ctx, workerID, record, rules)
	}
	return compliance.Decision{}, nil
}

type paymentServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  payment.Service
	resolver *fakeResolver
	taxes    *fakeTaxService
	engine   *fakeEngine
}

func setupPaymentServiceTest(t *testing.T) *paymentServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	resolver := &fakeResolver{}
	taxes := &fakeTaxService{}
	engine := &fakeEngine{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := payment.NewService(db, resolver, taxes, engine, nil, clock.Fixed(now))

	return &paymentServiceDeps{db: db, sqlMock: sqlMock, service: svc, resolver: resolver, taxes: taxes, engine: engine}
}

func workRecordRequest() *payment.WorkRecordRequest {
	shiftID := uuid.New().String()
	return &payment.WorkRecordRequest{
		ShiftID:       &shiftID,
		ShiftStart:    "2026-03-01T00:00:00Z",
		ShiftEnd:      "2026-03-01T09:00:00Z",
		HoursInPeriod: map[string]string{"week": "55"},
	}
}

func TestPaymentService_ProcessPayment(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New().String()

	t.Run("success applies shift payment", func(t *testing.T) {
		deps := setupPaymentServiceTest(t)
		defer deps.db.Close()

		var applied taxcalc.ApplyInput
		deps.taxes.applyFn = func(ctx context.Context, req taxcalc.ApplyInput) (taxcalc.CalculationResponse, error) {
			applied = req
			return taxcalc.CalculationResponse{ID: uuid.New().String(), IsApplied: req.IsApplied, CalculationType: req.CalculationType}, nil
		}

		resp, err := deps.service.ProcessPayment(ctx, payment.ProcessPaymentRequest{
			WorkerID:    workerID,
			Country:     "US",
			GrossAmount: "1000",
			WorkRecord:  workRecordRequest(),
		})

		assert.NoError(t, err)
		assert.False(t, resp.Compliance.Blocked)
		assert.Equal(t, taxcalc.TypeShiftPayment, applied.CalculationType)
		assert.True(t, applied.IsApplied)
		assert.Equal(t, "1000", applied.GrossAmount.String())
	})

	t.Run("hard block records estimate only", func(t *testing.T) {
		deps := setupPaymentServiceTest(t)
		defer deps.db.Close()

		deps.engine.evaluateFn = func(ctx context.Context, wid uuid.UUID, record compliance.WorkRecord, rules []laborrule.LaborLawRule) (compliance.Decision, error) {
			return compliance.Decision{
				Blocked: true,
				Violations: []compliance.RuleDecision{{
					RuleCode: "de_weekly_hours",
					Severity: "CRITICAL",
					Blocked:  true,
				}},
			}, nil
		}

		var applied taxcalc.ApplyInput
		deps.taxes.applyFn = func(ctx context.Context, req taxcalc.ApplyInput) (taxcalc.CalculationResponse, error) {
			applied = req
			return taxcalc.CalculationResponse{ID: uuid.New().String()}, nil
		}

		resp, err := deps.service.ProcessPayment(ctx, payment.ProcessPaymentRequest{
			WorkerID:    workerID,
			Country:     "DE",
			GrossAmount: "900",
			WorkRecord:  workRecordRequest(),
		})

		// keputusan kembali ke pemanggil; kalkulasi dicatat sebagai estimate
		assert.NoError(t, err)
		assert.True(t, resp.Compliance.Blocked)
		assert.Equal(t, taxcalc.TypeEstimate, applied.CalculationType)
		assert.False(t, applied.IsApplied)
	})

	t.Run("no work record skips compliance", func(t *testing.T) {
		deps := setupPaymentServiceTest(t)
		defer deps.db.Close()

		deps.engine.evaluateFn = func(ctx context.Context, wid uuid.UUID, record compliance.WorkRecord, rules []laborrule.LaborLawRule) (compliance.Decision, error) {
			t.Fatal("engine must not run without a work record")
			return compliance.Decision{}, nil
		}

		resp, err := deps.service.ProcessPayment(ctx, payment.ProcessPaymentRequest{
			WorkerID:    workerID,
			Country:     "US",
			GrossAmount: "250",
		})

		assert.NoError(t, err)
		assert.False(t, resp.Compliance.Blocked)
		assert.Empty(t, resp.Compliance.Violations)
	})

	t.Run("negative amount", func(t *testing.T) {
		deps := setupPaymentServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.ProcessPayment(ctx, payment.ProcessPaymentRequest{
			WorkerID:    workerID,
			Country:     "US",
			GrossAmount: "-5",
		})
		assert.ErrorIs(t, err, payerrors.ErrInvalidAmount)
	})

	t.Run("negative inverted shift window", func(t *testing.T) {
		deps := setupPaymentServiceTest(t)
		defer deps.db.Close()

		wr := workRecordRequest()
		wr.ShiftStart, wr.ShiftEnd = wr.ShiftEnd, wr.ShiftStart
		_, err := deps.service.ProcessPayment(ctx, payment.ProcessPaymentRequest{
			WorkerID:    workerID,
			Country:     "US",
			GrossAmount: "100",
			WorkRecord:  wr,
		})
		assert.ErrorIs(t, err, payerrors.ErrInvalidShiftWindow)
	})
}

func TestPaymentService_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("per item errors do not abort the batch", func(t *testing.T) {
		deps := setupPaymentServiceTest(t)
		defer deps.db.Close()

		deps.resolver.resolveTaxFn = func(ctx context.Context, country string, state, city *string) (*jurisdiction.TaxJurisdiction, error) {
			if country == "ZZ" {
				return nil, jerrors.ErrJurisdictionNotFound
			}
			return &jurisdiction.TaxJurisdiction{ID: uuid.New(), CountryCode: country, CurrencyCode: "USD"}, nil
		}

		req := payment.BatchRequest{Items: []payment.ProcessPaymentRequest{
			{WorkerID: uuid.New().String(), Country: "US", GrossAmount: "100"},
			{WorkerID: uuid.New().String(), Country: "ZZ", GrossAmount: "100"},
			{WorkerID: "not-a-uuid", Country: "US", GrossAmount: "100"},
			{WorkerID: uuid.New().String(), Country: "US", GrossAmount: "300"},
		}}

		resp, err := deps.service.ProcessBatch(ctx, req)

		assert.NoError(t, err)
		assert.Len(t, resp.Results, 4)
		assert.Equal(t, 2, resp.Processed)
		assert.Equal(t, 2, resp.Failed)

		// urutan hasil deterministik mengikuti indeks input
		for i, r := range resp.Results {
			assert.Equal(t, i, r.Index)
		}
		assert.Nil(t, resp.Results[0].Error)
		assert.NotNil(t, resp.Results[1].Error)
		assert.NotNil(t, resp.Results[2].Error)
		assert.Nil(t, resp.Results[3].Error)
	})

	t.Run("bounded concurrency", func(t *testing.T) {
		deps := setupPaymentServiceTest(t)
		defer deps.db.Close()

		var inFlight, peak int64
		deps.resolver.resolveTaxFn = func(ctx context.Context, country string, state, city *string) (*jurisdiction.TaxJurisdiction, error) {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return &jurisdiction.TaxJurisdiction{ID: uuid.New(), CountryCode: country, CurrencyCode: "USD"}, nil
		}

		items := make([]payment.ProcessPaymentRequest, 32)
		for i := range items {
			items[i] = payment.ProcessPaymentRequest{WorkerID: uuid.New().String(), Country: "US", GrossAmount: "10"}
		}

		resp, err := deps.service.ProcessBatch(ctx, payment.BatchRequest{Items: items})

		assert.NoError(t, err)
		assert.Equal(t, 32, resp.Processed)
		assert.LessOrEqual(t, peak, int64(8))
	})

	t.Run("negative empty batch", func(t *testing.T) {
		deps := setupPaymentServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.ProcessBatch(ctx, payment.BatchRequest{})
		assert.ErrorIs(t, err, payerrors.ErrEmptyBatch)
	})
}
