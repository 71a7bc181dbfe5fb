package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultShutdownTimeout - сколько Stop ждет завершения воркеров
const DefaultShutdownTimeout = 30 * time.Second

// WorkerManager запускает воркеры и останавливает их вместе
type WorkerManager struct {
	logger          *zap.Logger
	shutdownTimeout time.Duration

	mu      sync.Mutex
	workers []Worker
	errs    []error
	wg      sync.WaitGroup
}

// NewWorkerManager создает новый WorkerManager
func NewWorkerManager(logger *zap.Logger) *WorkerManager {
	return &WorkerManager{
		logger:          logger,
		shutdownTimeout: DefaultShutdownTimeout,
	}
}

// SetShutdownTimeout меняет время ожидания в Stop
func (m *WorkerManager) SetShutdownTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.shutdownTimeout = d
	}
}

// Register регистрирует воркер
func (m *WorkerManager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workers = append(m.workers, w)
	m.logger.Info("Worker registered", zap.String("name", w.Name()))
}

// Start запускает каждый зарегистрированный воркер в своей горутине
func (m *WorkerManager) Start(ctx context.Context) error {
	workers := m.snapshot()
	if len(workers) == 0 {
		return errors.New("no workers registered")
	}

	m.logger.Info("Starting workers", zap.Int("count", len(workers)))
	for _, w := range workers {
		m.wg.Add(1)
		go func(w Worker) {
			defer m.wg.Done()

			err := w.Start(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				m.logger.Info("Worker exited", zap.String("name", w.Name()))
				return
			}
			m.logger.Error("Worker failed", zap.String("name", w.Name()), zap.Error(err))
			m.mu.Lock()
			m.errs = append(m.errs, fmt.Errorf("%s: %w", w.Name(), err))
			m.mu.Unlock()
		}(w)
	}
	return nil
}

// Stop останавливает все воркеры и ждет их не дольше shutdownTimeout.
// Возвращает ошибки, с которыми воркеры завершились.
func (m *WorkerManager) Stop() error {
	workers := m.snapshot()
	m.logger.Info("Stopping workers", zap.Int("count", len(workers)))

	for _, w := range workers {
		if err := w.Stop(); err != nil {
			m.logger.Error("Failed to stop worker", zap.String("name", w.Name()), zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	m.mu.Lock()
	timeout := m.shutdownTimeout
	m.mu.Unlock()

	select {
	case <-done:
		m.logger.Info("All workers stopped")
	case <-time.After(timeout):
		m.logger.Warn("Workers shutdown timed out", zap.Duration("timeout", timeout))
		return fmt.Errorf("workers shutdown timed out after %v", timeout)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}

func (m *WorkerManager) snapshot() []Worker {
	m.mu.Lock()
	defer m.mu.Unlock()
	workers := make([]Worker, len(m.workers))
	copy(workers, m.workers)
	return workers
}
