package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type fakePublisher struct {
	mu       sync.Mutex
	failures map[string]int
	sent     []messaging.Message
}

func (f *fakePublisher) Publish(_ context.Context, channel string, msg messaging.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures[msg.Type] > 0 {
		f.failures[msg.Type]--
		return assert.AnError
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
		MaxRetries:    5,
		Channel:       "clinic.events",
	}
}

func outboxEvent(eventType string) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   json.RawMessage(`{"ok":true}`),
		Status:    model.OutboxStatusProcessing,
		CreatedAt: time.Now().Add(-time.Second),
	}
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Channel = ""
	_, err := NewOutboxProcessor(&mocks.OutboxRepository{}, &fakePublisher{}, cfg, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.BatchSize = 0
	_, err = NewOutboxProcessor(&mocks.OutboxRepository{}, &fakePublisher{}, cfg, nil)
	assert.Error(t, err)
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	pub := &fakePublisher{failures: map[string]int{
		model.EventAppointmentCreated: 1, // recovers on the in-process retry
		model.EventInvoicePaid:        5,
	}}
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())

	created, paid := outboxEvent(model.EventAppointmentCreated), outboxEvent(model.EventInvoicePaid)
	repo.On("GetPendingEventsWithLock", mock.Anything, 10, 5).Return([]*model.OutboxEvent{created, paid}, nil)
	repo.On("MarkProcessed", mock.Anything, created.ID).Return(nil)
	repo.On("MarkFailed", mock.Anything, paid.ID, assert.AnError.Error()).Return(nil)

	p, err := NewOutboxProcessor(repo, pub, testConfig(), m)
	require.NoError(t, err)

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	repo.AssertExpectations(t)

	require.Len(t, pub.sent, 1)
	assert.Equal(t, created.ID, pub.sent[0].ID)
	assert.JSONEq(t, `{"ok":true}`, string(pub.sent[0].Payload))
}

func TestProcessBatchClaimError(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	repo.On("GetPendingEventsWithLock", mock.Anything, 10, 5).Return([]*model.OutboxEvent(nil), assert.AnError)

	p, err := NewOutboxProcessor(repo, &fakePublisher{}, testConfig(), nil)
	require.NoError(t, err)

	_, err = p.ProcessBatch(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRetentionWorkerRunOnce(t *testing.T) {
	audits := &mocks.AuditRepository{}
	outbox := &mocks.OutboxRepository{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	audits.On("Cleanup", mock.Anything, now.AddDate(0, 0, -30)).Return(int64(4), nil)
	outbox.On("DeleteProcessedBefore", mock.Anything, now.Add(-48*time.Hour)).Return(int64(0), assert.AnError)

	w := NewRetentionWorker(audits, outbox, 30, 48*time.Hour, time.Hour)
	w.now = func() time.Time { return now }
	w.RunOnce(context.Background())

	audits.AssertExpectations(t)
	outbox.AssertExpectations(t)
}

func TestRetentionWorkerZeroRetentionSkips(t *testing.T) {
	audits := &mocks.AuditRepository{}
	outbox := &mocks.OutboxRepository{}

	NewRetentionWorker(audits, outbox, 0, 0, time.Hour).RunOnce(context.Background())
	audits.AssertNotCalled(t, "Cleanup", mock.Anything, mock.Anything)
	outbox.AssertNotCalled(t, "DeleteProcessedBefore", mock.Anything, mock.Anything)
}
