package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"partytab-backend/internal/config"
	"partytab-backend/internal/domain"
	"partytab-backend/internal/metrics"
)

type MockTabRepo struct {
	mock.Mock
}

func (m *MockTabRepo) Create(ctx context.Context, tab *domain.Tab, participants []domain.Participant) error {
	return m.Called(ctx, tab, participants).Error(0)
}
func (m *MockTabRepo) GetByID(ctx context.Context, id int32) (*domain.Tab, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tab), args.Error(1)
}
func (m *MockTabRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Tab, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Tab), args.Error(1)
}
func (m *MockTabRepo) ListByStatus(ctx context.Context, status domain.TabStatus) ([]domain.Tab, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Tab), args.Error(1)
}
func (m *MockTabRepo) Close(ctx context.Context, id int32, closedAt time.Time) error {
	return m.Called(ctx, id, closedAt).Error(0)
}

type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) GetSettlement(ctx context.Context, userID, tabID int32) (*domain.Settlement, error) {
	args := m.Called(ctx, userID, tabID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}
func (m *MockSettlementService) ListAcknowledgements(ctx context.Context, userID, tabID int32) ([]domain.Acknowledgement, []domain.AcknowledgementAction, error) {
	args := m.Called(ctx, userID, tabID)
	return args.Get(0).([]domain.Acknowledgement), args.Get(1).([]domain.AcknowledgementAction), args.Error(2)
}
func (m *MockSettlementService) MarkPaid(ctx context.Context, userID, tabID, fromID, toID int32) (*domain.SettlementTransfer, error) {
	args := m.Called(ctx, userID, tabID, fromID, toID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementTransfer), args.Error(1)
}
func (m *MockSettlementService) ConfirmReceived(ctx context.Context, userID, tabID, fromID, toID int32) (*domain.SettlementTransfer, error) {
	args := m.Called(ctx, userID, tabID, fromID, toID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementTransfer), args.Error(1)
}
func (m *MockSettlementService) ReconcileTab(ctx context.Context, tabID int32) (int, error) {
	args := m.Called(ctx, tabID)
	return args.Int(0), args.Error(1)
}
func (m *MockSettlementService) RemindAwaitingConfirmations(ctx context.Context, markedBefore time.Time) (int, error) {
	args := m.Called(ctx, markedBefore)
	return args.Int(0), args.Error(1)
}

const testConfigYAML = `
server:
  port: 8080
database:
  host: localhost
  user: partytab
  database: partytab
jwt:
  secret: "0123456789abcdef0123456789abcdef"
`

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newRunner(t *testing.T) (*JobRunner, *MockTabRepo, *MockSettlementService, *metrics.Metrics) {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfigYAML))
	require.NoError(t, err)

	tabRepo := new(MockTabRepo)
	settlementSvc := new(MockSettlementService)
	m := metrics.New()
	jr := NewJobRunner(tabRepo, &Services{Settlement: settlementSvc}, cfg, m)
	jr.now = func() time.Time { return fixedNow }
	return jr, tabRepo, settlementSvc, m
}

// jobRuns reads partytab_job_runs_total for one job and outcome.
func jobRuns(t *testing.T, m *metrics.Metrics, job, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "partytab_job_runs_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["job"] == job && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestReconcileAcknowledgements(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		jr, tabRepo, settlementSvc, m := newRunner(t)
		tabRepo.On("ListByStatus", mock.Anything, domain.TabStatusActive).
			Return([]domain.Tab{{ID: 1}, {ID: 2}}, nil)
		tabRepo.On("ListByStatus", mock.Anything, domain.TabStatusClosed).
			Return([]domain.Tab{{ID: 3, Status: domain.TabStatusClosed}}, nil)
		settlementSvc.On("ReconcileTab", mock.Anything, int32(1)).Return(2, nil)
		settlementSvc.On("ReconcileTab", mock.Anything, int32(2)).Return(0, nil)
		settlementSvc.On("ReconcileTab", mock.Anything, int32(3)).Return(1, nil)

		err := jr.RunReconcileAcknowledgements()

		assert.NoError(t, err)
		tabRepo.AssertExpectations(t)
		settlementSvc.AssertExpectations(t)
		assert.Equal(t, 1.0, jobRuns(t, m, JobReconcileAcknowledgements, "success"))
	})

	t.Run("OneTabFails", func(t *testing.T) {
		jr, tabRepo, settlementSvc, m := newRunner(t)
		tabRepo.On("ListByStatus", mock.Anything, domain.TabStatusActive).
			Return([]domain.Tab{{ID: 1}}, nil)
		tabRepo.On("ListByStatus", mock.Anything, domain.TabStatusClosed).
			Return([]domain.Tab{{ID: 2}}, nil)
		settlementSvc.On("ReconcileTab", mock.Anything, int32(1)).Return(0, errors.New("db down"))
		settlementSvc.On("ReconcileTab", mock.Anything, int32(2)).Return(1, nil)

		err := jr.RunReconcileAcknowledgements()

		assert.EqualError(t, err, "1 of 2 tabs failed to reconcile")
		settlementSvc.AssertExpectations(t)
		assert.Equal(t, 1.0, jobRuns(t, m, JobReconcileAcknowledgements, "error"))
	})

	t.Run("ListFails", func(t *testing.T) {
		jr, tabRepo, settlementSvc, _ := newRunner(t)
		tabRepo.On("ListByStatus", mock.Anything, domain.TabStatusActive).
			Return([]domain.Tab(nil), errors.New("db down"))

		err := jr.RunReconcileAcknowledgements()

		assert.ErrorContains(t, err, "failed to list ACTIVE tabs")
		settlementSvc.AssertNotCalled(t, "ReconcileTab", mock.Anything, mock.Anything)
	})

	t.Run("ClosedListFails", func(t *testing.T) {
		jr, tabRepo, settlementSvc, _ := newRunner(t)
		tabRepo.On("ListByStatus", mock.Anything, domain.TabStatusActive).
			Return([]domain.Tab{{ID: 1}}, nil)
		tabRepo.On("ListByStatus", mock.Anything, domain.TabStatusClosed).
			Return([]domain.Tab(nil), errors.New("db down"))

		err := jr.RunReconcileAcknowledgements()

		assert.ErrorContains(t, err, "failed to list CLOSED tabs")
		settlementSvc.AssertNotCalled(t, "ReconcileTab", mock.Anything, mock.Anything)
	})

	t.Run("PanicRecovered", func(t *testing.T) {
		jr, tabRepo, _, _ := newRunner(t)
		tabRepo.On("ListByStatus", mock.Anything, domain.TabStatusActive).
			Run(func(mock.Arguments) { panic("boom") }).
			Return([]domain.Tab(nil), nil)

		var err error
		assert.NotPanics(t, func() { err = jr.RunReconcileAcknowledgements() })
		assert.ErrorContains(t, err, "panicked: boom")
	})
}

func TestSendConfirmationReminders(t *testing.T) {
	t.Run("UsesConfiguredWindow", func(t *testing.T) {
		jr, _, settlementSvc, _ := newRunner(t)
		cutoff := fixedNow.Add(-48 * time.Hour)
		settlementSvc.On("RemindAwaitingConfirmations", mock.Anything, cutoff).Return(3, nil)

		err := jr.RunSendConfirmationReminders()

		assert.NoError(t, err)
		settlementSvc.AssertExpectations(t)
	})

	t.Run("Failure", func(t *testing.T) {
		jr, _, settlementSvc, _ := newRunner(t)
		settlementSvc.On("RemindAwaitingConfirmations", mock.Anything, mock.Anything).Return(0, errors.New("db down"))

		err := jr.RunSendConfirmationReminders()

		assert.ErrorContains(t, err, "failed to send confirmation reminders")
	})
}

func TestRunJob(t *testing.T) {
	t.Run("All", func(t *testing.T) {
		jr, tabRepo, settlementSvc, _ := newRunner(t)
		tabRepo.On("ListByStatus", mock.Anything, domain.TabStatusActive).Return([]domain.Tab{}, nil)
		tabRepo.On("ListByStatus", mock.Anything, domain.TabStatusClosed).Return([]domain.Tab{}, nil)
		settlementSvc.On("RemindAwaitingConfirmations", mock.Anything, mock.Anything).Return(0, nil)

		assert.NoError(t, jr.RunJob("all"))
		tabRepo.AssertExpectations(t)
		settlementSvc.AssertExpectations(t)
	})

	t.Run("Unknown", func(t *testing.T) {
		jr, _, _, _ := newRunner(t)
		err := jr.RunJob("nightly")
		assert.ErrorContains(t, err, `unknown job "nightly"`)
	})

	t.Run("Names", func(t *testing.T) {
		jr, _, _, _ := newRunner(t)
		assert.Equal(t, []string{"reconcile-acknowledgements", "send-confirmation-reminders"}, jr.JobNames())
	})
}
