// Package prerender keeps the year cell cache warm: it consumes refresh
// events, drops the cached year and loads it again from the backend.
package prerender

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/domain/repository"
	"github.com/perception-map/internal/pkg/metrics"
	"github.com/perception-map/internal/worker"
)

const (
	maxBatchSize    = 20                     // максимум сообщений за раз
	emptyQueueSleep = 500 * time.Millisecond // пауза если очередь пуста
	errorSleep      = time.Second
	retryBackoff    = 200 * time.Millisecond
)

// YearRefresher сбрасывает и заново загружает кеш года
type YearRefresher interface {
	ValidateYear(year int) error
	RefreshYear(ctx context.Context, year int) (int, error)
}

// Worker обрабатывает события stream:map:refresh
type Worker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	refresher  YearRefresher
	maxRetries int
	idlePause  time.Duration
	now        func() time.Time
}

// NewWorker создает воркер предварительной загрузки
func NewWorker(
	streamRepo repository.StreamRepository,
	refresher YearRefresher,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *Worker {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Worker{
		BaseWorker: worker.NewBaseWorker("map-prerender", consumerGroup, logger),
		streamRepo: streamRepo,
		refresher:  refresher,
		maxRetries: maxRetries,
		idlePause:  emptyQueueSleep,
		now:        time.Now,
	}
}

// WithIdlePause задает паузу между опросами пустого стрима
func (w *Worker) WithIdlePause(d time.Duration) *Worker {
	if d > 0 {
		w.idlePause = d
	}
	return w
}

// Start запускает воркер
func (w *Worker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting map prerender worker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("max_batch_size", maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamMapRefresh, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		processed, err := w.ProcessBatch(ctx)
		pause := time.Duration(0)
		switch {
		case err != nil:
			logger.Error("Failed to process batch", zap.Error(err))
			pause = errorSleep
		case processed == 0:
			pause = w.idlePause
		}

		if pause == 0 {
			select {
			case <-w.StopChan():
				logger.Info("Worker stopped")
				return nil
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			continue
		}
		if !w.Sleep(ctx, pause) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Info("Worker stopped")
			return nil
		}
	}
}

// ProcessBatch читает и обрабатывает одну пачку событий. Возвращает число
// прочитанных сообщений. Год, встретившийся в пачке несколько раз,
// загружается один раз.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(ctx, domain.StreamMapRefresh, w.ConsumerGroup(), w.ConsumerName(), maxBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	years := make([]int, 0, len(messages))
	seen := make(map[int]bool, len(messages))
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		// битые сообщения тоже подтверждаются, чтобы не застревали
		ids = append(ids, msg.ID)

		event, err := parseEvent(msg)
		if err == nil {
			err = w.refresher.ValidateYear(event.Year)
		}
		if err != nil {
			logger.Warn("Dropping refresh event",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			metrics.PrerenderEventsTotal.WithLabelValues("invalid").Inc()
			continue
		}
		if seen[event.Year] {
			metrics.PrerenderEventsTotal.WithLabelValues("duplicate").Inc()
			continue
		}
		seen[event.Year] = true
		years = append(years, event.Year)
	}

	for _, year := range years {
		w.refresh(ctx, year)
	}

	if err := w.streamRepo.AckMessages(ctx, domain.StreamMapRefresh, w.ConsumerGroup(), ids); err != nil {
		// не критично - сообщения будут обработаны повторно
		logger.Error("Failed to ack messages", zap.Error(err))
	}

	logger.Info("Batch processed",
		zap.Int("messages", len(messages)),
		zap.Ints("years", years))
	return len(messages), nil
}

func (w *Worker) refresh(ctx context.Context, year int) {
	logger := w.Logger().With(zap.Int("year", year))

	var (
		cells int
		err   error
	)
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		cells, err = w.refresher.RefreshYear(ctx, year)
		if err == nil || ctx.Err() != nil {
			break
		}
		logger.Warn("Refresh attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < w.maxRetries && !w.Sleep(ctx, time.Duration(attempt)*retryBackoff) {
			break
		}
	}

	done := domain.MapRefreshedEvent{
		Year:        year,
		Cells:       cells,
		Success:     err == nil,
		RefreshedAt: w.now().UTC(),
	}
	if err != nil {
		done.Error = err.Error()
		metrics.PrerenderEventsTotal.WithLabelValues("failed").Inc()
		logger.Error("Failed to refresh year", zap.Error(err))
	} else {
		metrics.PrerenderEventsTotal.WithLabelValues("refreshed").Inc()
		logger.Info("Year cache refreshed", zap.Int("cells", cells))
	}

	if err := w.streamRepo.PublishToStream(ctx, domain.StreamMapRefreshed, done); err != nil {
		logger.Error("Failed to publish refreshed event", zap.Error(err))
	}
}

func parseEvent(msg domain.StreamMessage) (*domain.MapRefreshEvent, error) {
	var event domain.MapRefreshEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Year == 0 {
		return nil, fmt.Errorf("event has no year")
	}
	return &event, nil
}
