package exemption_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"gigpay/internal/exemption"
	exerrors "gigpay/internal/exemption/errors"
	"gigpay/internal/laborrule"
	"gigpay/internal/shared/clock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeExemptionRepository struct {
	withTxFn                 func(tx *sql.Tx) exemption.Repository
	createFn                 func(ctx context.Context, e *exemption.WorkerExemption) error
	updateFn                 func(ctx context.Context, e *exemption.WorkerExemption) error
	findByIDFn               func(ctx context.Context, id string) (*exemption.WorkerExemption, error)
	findAllByWorkerFn        func(ctx context.Context, workerID string) ([]exemption.WorkerExemption, error)
	findApprovedActiveFn     func(ctx context.Context, workerID, ruleCode string, at time.Time) (*exemption.WorkerExemption, error)
	hasOverlappingApprovedFn func(ctx context.Context, workerID, ruleCode string, from time.Time, until *time.Time, excludeID *string) (bool, error)
}

func (f *fakeExemptionRepository) WithTx(tx *sql.Tx) exemption.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeExemptionRepository) Create(ctx context.Context, e *exemption.WorkerExemption) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeExemptionRepository) Update(ctx context.Context, e *exemption.WorkerExemption) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, e)
	}
	return nil
}

func (f *fakeExemptionRepository) FindByID(ctx context.Context, id string) (*exemption.WorkerExemption, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeExemptionRepository) FindAllByWorker(ctx context.Context, workerID string) ([]exemption.WorkerExemption, error) {
	if f.findAllByWorkerFn != nil {
		return f.findAllByWorkerFn(ctx, workerID)
	}
	return nil, nil
}

func (f *fakeExemptionRepository) FindApprovedActive(ctx context.Context, workerID, ruleCode string, at time.Time) (*exemption.WorkerExemption, error) {
	if f.findApprovedActiveFn != nil {
		return f.findApprovedActiveFn(ctx, workerID, ruleCode, at)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeExemptionRepository) HasOverlappingApproved(ctx context.Context, workerID, ruleCode string, from time.Time, until *time.Time, excludeID *string) (bool, error) {
	if f.hasOverlappingApprovedFn != nil {
		return f.hasOverlappingApprovedFn(ctx, workerID, ruleCode, from, until, excludeID)
	}
	return false, nil
}

type fakeRuleRepository struct {
	laborrule.Repository
	findByCodeFn func(ctx context.Context, jurisdictionCode, ruleCode string) (*laborrule.LaborLawRule, error)
}

func (f *fakeRuleRepository) FindByCode(ctx context.Context, jurisdictionCode, ruleCode string) (*laborrule.LaborLawRule, error) {
	if f.findByCodeFn != nil {
		return f.findByCodeFn(ctx, jurisdictionCode, ruleCode)
	}
	return nil, gorm.ErrRecordNotFound
}

var exemptionNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type exemptionServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  exemption.Service
	repo     *fakeExemptionRepository
	ruleRepo *fakeRuleRepository
}

func setupExemptionServiceTest(t *testing.T) *exemptionServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeExemptionRepository{}
	ruleRepo := &fakeRuleRepository{}
	svc := exemption.NewService(db, repo, ruleRepo, clock.Fixed(exemptionNow))

	return &exemptionServiceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo, ruleRepo: ruleRepo}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func optOutableRule() *laborrule.LaborLawRule {
	return &laborrule.LaborLawRule{
		ID:               uuid.New(),
		JurisdictionCode: "DE",
		RuleCode:         "de_weekly_hours",
		RuleType:         laborrule.TypeWorkingTime,
		Enforcement:      laborrule.EnforcementSoftWarning,
		AllowsOptOut:     true,
		IsActive:         true,
	}
}

func TestExemptionService_RequestOptOut(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New().String()
	actorID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		deps.ruleRepo.findByCodeFn = func(ctx context.Context, jc, rc string) (*laborrule.LaborLawRule, error) {
			assert.Equal(t, "DE", jc)
			assert.Equal(t, "de_weekly_hours", rc)
			return optOutableRule(), nil
		}
		expectTx(t, deps.sqlMock, true)

		deps.repo.createFn = func(ctx context.Context, e *exemption.WorkerExemption) error {
			assert.Equal(t, uuid.MustParse(workerID), e.WorkerID)
			assert.Equal(t, exemption.StatusPending, e.Status)
			assert.Equal(t, "2026-03-10", e.ValidFrom.Format("2006-01-02"))
			assert.Nil(t, e.ValidUntil)
			return nil
		}

		resp, err := deps.service.RequestOptOut(ctx, actorID, exemption.RequestOptOutRequest{
			WorkerID:         workerID,
			JurisdictionCode: "DE",
			RuleCode:         "de_weekly_hours",
			Reason:           "Student visa allows longer hours",
			ValidFrom:        "2026-03-10",
		})

		assert.NoError(t, err)
		assert.Equal(t, exemption.StatusPending, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative rule does not allow opt-out", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		rule := optOutableRule()
		rule.AllowsOptOut = false
		deps.ruleRepo.findByCodeFn = func(ctx context.Context, jc, rc string) (*laborrule.LaborLawRule, error) {
			return rule, nil
		}

		_, err := deps.service.RequestOptOut(ctx, actorID, exemption.RequestOptOutRequest{
			WorkerID:         workerID,
			JurisdictionCode: "DE",
			RuleCode:         "de_weekly_hours",
			Reason:           "x",
			ValidFrom:        "2026-03-10",
		})

		assert.ErrorIs(t, err, exerrors.ErrRuleNotOptOutable)
	})

	t.Run("negative inverted validity window", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		until := "2026-03-01"
		_, err := deps.service.RequestOptOut(ctx, actorID, exemption.RequestOptOutRequest{
			WorkerID:         workerID,
			JurisdictionCode: "DE",
			RuleCode:         "de_weekly_hours",
			Reason:           "x",
			ValidFrom:        "2026-03-10",
			ValidUntil:       &until,
		})

		assert.ErrorIs(t, err, exerrors.ErrInvalidValidityWindow)
	})
}

func TestExemptionService_Approve(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New().String()

	pendingExemption := func() *exemption.WorkerExemption {
		return &exemption.WorkerExemption{
			ID:        uuid.New(),
			WorkerID:  uuid.New(),
			RuleCode:  "de_weekly_hours",
			Status:    exemption.StatusPending,
			ValidFrom: exemptionNow.AddDate(0, 0, 1),
		}
	}

	t.Run("success", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		e := pendingExemption()
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*exemption.WorkerExemption, error) {
			return e, nil
		}
		deps.repo.updateFn = func(ctx context.Context, got *exemption.WorkerExemption) error {
			assert.Equal(t, exemption.StatusApproved, got.Status)
			assert.Equal(t, uuid.MustParse(adminID), *got.ReviewedBy)
			assert.Equal(t, exemptionNow, *got.ReviewedAt)
			return nil
		}

		resp, err := deps.service.Approve(ctx, adminID, e.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, exemption.StatusApproved, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative overlapping approved exemption", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		e := pendingExemption()
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*exemption.WorkerExemption, error) {
			return e, nil
		}
		deps.repo.hasOverlappingApprovedFn = func(ctx context.Context, workerID, ruleCode string, from time.Time, until *time.Time, excludeID *string) (bool, error) {
			assert.Equal(t, e.WorkerID.String(), workerID)
			assert.Equal(t, e.RuleCode, ruleCode)
			return true, nil
		}

		_, err := deps.service.Approve(ctx, adminID, e.ID.String())

		assert.ErrorIs(t, err, exerrors.ErrExemptionConflict)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not pending", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		e := pendingExemption()
		e.Status = exemption.StatusRejected
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*exemption.WorkerExemption, error) {
			return e, nil
		}

		_, err := deps.service.Approve(ctx, adminID, e.ID.String())

		assert.ErrorIs(t, err, exerrors.ErrInvalidStatusTransition)
	})
}

func TestExemptionService_Reject(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New().String()

	t.Run("reason required", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Reject(ctx, adminID, uuid.New().String(), "")
		assert.ErrorIs(t, err, exerrors.ErrRejectionReasonRequired)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		e := &exemption.WorkerExemption{
			ID:       uuid.New(),
			WorkerID: uuid.New(),
			Status:   exemption.StatusPending,
		}
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*exemption.WorkerExemption, error) {
			return e, nil
		}

		resp, err := deps.service.Reject(ctx, adminID, e.ID.String(), "Document missing")

		assert.NoError(t, err)
		assert.Equal(t, exemption.StatusRejected, resp.Status)
		assert.Equal(t, "Document missing", *resp.RejectionReason)
	})
}

func TestExemptionService_Revoke(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New().String()

	t.Run("revoke approved immediately", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		until := exemptionNow.AddDate(0, 6, 0)
		e := &exemption.WorkerExemption{
			ID:         uuid.New(),
			WorkerID:   uuid.New(),
			Status:     exemption.StatusApproved,
			ValidFrom:  exemptionNow.AddDate(0, -1, 0),
			ValidUntil: &until,
		}
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*exemption.WorkerExemption, error) {
			return e, nil
		}
		deps.repo.updateFn = func(ctx context.Context, got *exemption.WorkerExemption) error {
			assert.Equal(t, exemption.StatusRevoked, got.Status)
			assert.Equal(t, exemptionNow, *got.RevokedAt)
			return nil
		}

		resp, err := deps.service.Revoke(ctx, adminID, e.ID.String(), "Visa expired")

		assert.NoError(t, err)
		assert.Equal(t, exemption.StatusRevoked, resp.Status)
		// meski jendela masih berjalan, revoke berlaku seketika
		assert.False(t, e.ActiveAt(exemptionNow.Add(time.Hour)))
	})

	t.Run("negative revoke pending", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		e := &exemption.WorkerExemption{ID: uuid.New(), Status: exemption.StatusPending}
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*exemption.WorkerExemption, error) {
			return e, nil
		}

		_, err := deps.service.Revoke(ctx, adminID, e.ID.String(), "x")
		assert.ErrorIs(t, err, exerrors.ErrInvalidStatusTransition)
	})
}

func TestExemptionService_GetActive(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New().String()

	t.Run("active exemption returned", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		e := &exemption.WorkerExemption{ID: uuid.New(), Status: exemption.StatusApproved}
		deps.repo.findApprovedActiveFn = func(ctx context.Context, wid, ruleCode string, at time.Time) (*exemption.WorkerExemption, error) {
			assert.Equal(t, workerID, wid)
			assert.Equal(t, exemptionNow, at)
			return e, nil
		}

		got, err := deps.service.GetActive(ctx, workerID, "de_weekly_hours")
		assert.NoError(t, err)
		assert.Equal(t, e.ID, got.ID)
	})

	t.Run("none is nil without error", func(t *testing.T) {
		deps := setupExemptionServiceTest(t)
		defer deps.db.Close()

		got, err := deps.service.GetActive(ctx, workerID, "de_weekly_hours")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestWorkerExemption_DisplayStatus(t *testing.T) {
	until := exemptionNow.AddDate(0, 0, -1)
	e := exemption.WorkerExemption{
		Status:     exemption.StatusApproved,
		ValidFrom:  exemptionNow.AddDate(0, -2, 0),
		ValidUntil: &until,
	}

	// jendela habis: listing menampilkan EXPIRED tanpa menulis ulang baris
	assert.Equal(t, exemption.StatusExpired, e.DisplayStatus(exemptionNow))
	assert.Equal(t, exemption.StatusApproved, e.Status)
	assert.False(t, e.ActiveAt(exemptionNow))
}
