package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/perception-map/internal/config"
	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/domain/repository"
	"github.com/perception-map/internal/pkg/metrics"
)

const maxErrorBody = 64 << 10

// ErrCircuitOpen - бэкенд временно отключен после серии отказов
var ErrCircuitOpen = errors.New("evaluation backend circuit open")

type client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	breaker    *gobreaker.CircuitBreaker[[]domain.GeoCell]
	logger     *zap.Logger
}

// NewClient создает клиент API агрегированной карты оценок
func NewClient(cfg *config.BackendConfig, logger *zap.Logger) repository.CellSource {
	c := &client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		logger:  logger,
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]domain.GeoCell](gobreaker.Settings{
		Name:        "evaluation-backend",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// 404 и 401 - корректные ответы бэкенда, они не должны размыкать цепь
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrNoData) ||
				errors.Is(err, domain.ErrUnauthorized) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Backend circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return c
}

// FetchYear загружает ячейки за год: GET {base}/map/composite/{year}/
func (c *client) FetchYear(ctx context.Context, year int) ([]domain.GeoCell, error) {
	start := time.Now()
	cells, err := c.breaker.Execute(func() ([]domain.GeoCell, error) {
		return c.fetch(ctx, year)
	})
	metrics.RecordBackendRequest(outcome(err), time.Since(start))

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return cells, err
}

func (c *client) fetch(ctx context.Context, year int) ([]domain.GeoCell, error) {
	url := fmt.Sprintf("%s/map/composite/%d/", c.baseURL, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("Calling evaluation backend", zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Int("year", year), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNoData
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("Evaluation backend returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, &domain.BackendError{
			StatusCode: resp.StatusCode,
			Message:    ErrorMessage(body, year),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	cells, skipped, err := ExtractCells(body, year)
	if err != nil {
		c.logger.Error("Failed to decode response", zap.Int("year", year), zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	for _, s := range skipped {
		c.logger.Warn("Dropping undecodable geo cell",
			zap.Int("year", year),
			zap.Int("cell_index", s.Index),
			zap.String("reason", s.Reason))
	}
	metrics.RecordDecodeSkips(len(skipped))

	c.logger.Debug("Evaluation backend call successful",
		zap.Int("year", year),
		zap.Int("cells", len(cells)),
		zap.Int("dropped", len(skipped)))
	return cells, nil
}

// ExtractCells принимает три формы ответа: {"<year>": [...]}, массив ячеек
// или {"data": [...]}. Иная форма дает пустой набор. Ячейки декодируются
// по одной: битая ячейка попадает в skipped и не роняет весь год.
func ExtractCells(body []byte, year int) ([]domain.GeoCell, []domain.SkippedCell, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []domain.GeoCell{}, nil, nil
	}

	if trimmed[0] == '[' {
		return decodeCells(trimmed)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, nil, err
	}
	for _, key := range []string{strconv.Itoa(year), "data"} {
		raw, ok := envelope[key]
		if !ok || !isArray(raw) {
			continue
		}
		return decodeCells(raw)
	}
	return []domain.GeoCell{}, nil, nil
}

func decodeCells(raw json.RawMessage) ([]domain.GeoCell, []domain.SkippedCell, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, err
	}

	cells := make([]domain.GeoCell, 0, len(items))
	var skipped []domain.SkippedCell
	for i, item := range items {
		var cell domain.GeoCell
		if err := json.Unmarshal(item, &cell); err != nil {
			skipped = append(skipped, domain.SkippedCell{
				Index:  cellIndex(item, i),
				Kind:   domain.SkipDecode,
				Reason: err.Error(),
			})
			continue
		}
		cells = append(cells, cell)
	}
	return cells, skipped, nil
}

// cellIndex достает индекс из битой ячейки; без него - позиция в массиве
func cellIndex(item json.RawMessage, pos int) int {
	var ids struct {
		SquareIndex *int `json:"square_index"`
		Index       *int `json:"index"`
	}
	if err := json.Unmarshal(item, &ids); err == nil {
		switch {
		case ids.SquareIndex != nil:
			return *ids.SquareIndex
		case ids.Index != nil:
			return *ids.Index
		}
	}
	return pos
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// ErrorMessage извлекает текст ошибки из тела ответа:
// non_field_errors[0], затем error, message, detail.
func ErrorMessage(body []byte, year int) string {
	fallback := fmt.Sprintf("Failed to load map data for year %d", year)

	var payload struct {
		NonFieldErrors []string `json:"non_field_errors"`
		Error          string   `json:"error"`
		Message        string   `json:"message"`
		Detail         string   `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}

	switch {
	case len(payload.NonFieldErrors) > 0 && payload.NonFieldErrors[0] != "":
		return payload.NonFieldErrors[0]
	case payload.Error != "":
		return payload.Error
	case payload.Message != "":
		return payload.Message
	case payload.Detail != "":
		return payload.Detail
	default:
		return fallback
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNoData):
		return "no_data"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	default:
		return "error"
	}
}
