package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func TestNewEnvelope(t *testing.T) {
	ctx := logger.ContextWithCorrelationID(context.Background(), "req-42")

	env := NewEnvelope(ctx, SubjectCarCreated, map[string]string{"car_id": "c1"})

	assert.NotEmpty(t, env.ID)
	assert.Equal(t, SubjectCarCreated, env.Subject)
	assert.Equal(t, "req-42", env.CorrelationID)
	assert.False(t, env.OccurredAt.IsZero())
}

func TestPublishBestEffort_SwallowsErrors(t *testing.T) {
	p := new(mockPublisher)
	p.On("Publish", mock.Anything, SubjectReviewCreated, "payload").Return(errors.New("nats down")).Once()

	assert.NotPanics(t, func() {
		PublishBestEffort(context.Background(), p, SubjectReviewCreated, "payload")
	})
	p.AssertExpectations(t)
}

func TestPublishBestEffort_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		PublishBestEffort(context.Background(), nil, SubjectCarSold, nil)
	})
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), SubjectCarApproved, nil))
}
