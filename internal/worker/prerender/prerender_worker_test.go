package prerender_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/perception-map/internal/domain"
	apperrors "github.com/perception-map/internal/pkg/errors"
	"github.com/perception-map/internal/worker/prerender"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int64) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockRefresher is a mock of YearRefresher
type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) ValidateYear(year int) error {
	args := m.Called(year)
	return args.Error(0)
}

func (m *MockRefresher) RefreshYear(ctx context.Context, year int) (int, error) {
	args := m.Called(ctx, year)
	return args.Int(0), args.Error(1)
}

const group = "map-prerender-workers"

func refreshedEvent(year int, success bool) interface{} {
	return mock.MatchedBy(func(e domain.MapRefreshedEvent) bool {
		return e.Year == year && e.Success == success
	})
}

func TestWorker_Name(t *testing.T) {
	w := prerender.NewWorker(&MockStreamRepository{}, &MockRefresher{}, group, 3, zap.NewNop())
	assert.Equal(t, "map-prerender", w.Name())
	assert.Equal(t, group, w.ConsumerGroup())
}

func TestWorker_ProcessBatch(t *testing.T) {
	stream := &MockStreamRepository{}
	refresher := &MockRefresher{}

	messages := []domain.StreamMessage{
		{ID: "1-0", Data: `{"year": 2024, "reason": "aggregation finished"}`},
		{ID: "2-0", Data: `not json`},
		{ID: "3-0", Data: `{"year": 1999}`},
		{ID: "4-0", Data: `{"year": 2024}`},
		{ID: "5-0", Data: `{"year": 2016}`},
		{ID: "6-0", Data: `{}`},
	}
	stream.On("ConsumeBatch", mock.Anything, domain.StreamMapRefresh, group, mock.AnythingOfType("string"), int64(20)).
		Return(messages, nil).Once()

	refresher.On("ValidateYear", 2024).Return(nil)
	refresher.On("ValidateYear", 2016).Return(nil)
	refresher.On("ValidateYear", 1999).Return(apperrors.ErrInvalidYear)
	refresher.On("RefreshYear", mock.Anything, 2024).Return(412, nil).Once()
	refresher.On("RefreshYear", mock.Anything, 2016).Return(0, nil).Once()

	stream.On("PublishToStream", mock.Anything, domain.StreamMapRefreshed, refreshedEvent(2024, true)).Return(nil).Once()
	stream.On("PublishToStream", mock.Anything, domain.StreamMapRefreshed, refreshedEvent(2016, true)).Return(nil).Once()
	stream.On("AckMessages", mock.Anything, domain.StreamMapRefresh, group,
		[]string{"1-0", "2-0", "3-0", "4-0", "5-0", "6-0"}).Return(nil).Once()

	w := prerender.NewWorker(stream, refresher, group, 3, zap.NewNop())
	processed, err := w.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 6, processed)
	refresher.AssertNumberOfCalls(t, "RefreshYear", 2)
	stream.AssertExpectations(t)
	refresher.AssertExpectations(t)
}

func TestWorker_ProcessBatchEmptyQueue(t *testing.T) {
	stream := &MockStreamRepository{}
	stream.On("ConsumeBatch", mock.Anything, domain.StreamMapRefresh, group, mock.Anything, int64(20)).
		Return(nil, nil).Once()

	w := prerender.NewWorker(stream, &MockRefresher{}, group, 3, zap.NewNop())
	processed, err := w.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, processed)
	stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWorker_ProcessBatchConsumeError(t *testing.T) {
	stream := &MockStreamRepository{}
	stream.On("ConsumeBatch", mock.Anything, domain.StreamMapRefresh, group, mock.Anything, int64(20)).
		Return(nil, errors.New("connection reset")).Once()

	w := prerender.NewWorker(stream, &MockRefresher{}, group, 3, zap.NewNop())
	_, err := w.ProcessBatch(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestWorker_RetriesThenReportsFailure(t *testing.T) {
	stream := &MockStreamRepository{}
	refresher := &MockRefresher{}

	stream.On("ConsumeBatch", mock.Anything, domain.StreamMapRefresh, group, mock.Anything, int64(20)).
		Return([]domain.StreamMessage{{ID: "7-0", Data: `{"year": 2020}`}}, nil).Once()
	refresher.On("ValidateYear", 2020).Return(nil)
	refresher.On("RefreshYear", mock.Anything, 2020).Return(0, errors.New("backend down"))
	stream.On("PublishToStream", mock.Anything, domain.StreamMapRefreshed, mock.MatchedBy(func(e domain.MapRefreshedEvent) bool {
		return e.Year == 2020 && !e.Success && e.Error == "backend down"
	})).Return(nil).Once()
	stream.On("AckMessages", mock.Anything, domain.StreamMapRefresh, group, []string{"7-0"}).Return(nil).Once()

	w := prerender.NewWorker(stream, refresher, group, 2, zap.NewNop())
	processed, err := w.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	refresher.AssertNumberOfCalls(t, "RefreshYear", 2)
	stream.AssertExpectations(t)
}

func TestWorker_StartStops(t *testing.T) {
	stream := &MockStreamRepository{}
	polled := make(chan struct{}, 1)
	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamMapRefresh, group).Return(nil).Once()
	stream.On("ConsumeBatch", mock.Anything, domain.StreamMapRefresh, group, mock.Anything, int64(20)).
		Run(func(mock.Arguments) {
			select {
			case polled <- struct{}{}:
			default:
			}
		}).
		Return(nil, nil)

	w := prerender.NewWorker(stream, &MockRefresher{}, group, 1, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never polled the stream")
	}
	require.NoError(t, w.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_StartFailsWithoutGroup(t *testing.T) {
	stream := &MockStreamRepository{}
	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamMapRefresh, group).Return(errors.New("NOAUTH")).Once()

	w := prerender.NewWorker(stream, &MockRefresher{}, group, 1, zap.NewNop())
	assert.ErrorContains(t, w.Start(context.Background()), "NOAUTH")
}
