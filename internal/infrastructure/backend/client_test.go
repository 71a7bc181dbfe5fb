package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/perception-map/internal/config"
	"github.com/perception-map/internal/domain"
)

func newTestClient(url string, maxFailures uint32) *client {
	cfg := &config.BackendConfig{
		BaseURL:            url,
		Token:              "test_token",
		Timeout:            5 * time.Second,
		BreakerMaxFailures: maxFailures,
		BreakerOpenTimeout: time.Minute,
	}
	return NewClient(cfg, zap.NewNop()).(*client)
}

func TestClient_FetchYear(t *testing.T) {
	t.Run("year envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/map/composite/2023/", r.URL.Path)
			assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"2023": [
				{"square_index": 1, "score": 3.5, "coords": {"lat": 45.18, "lng": 5.72}, "evaluations": [
					{"id": "e1", "beauty": 4, "boring": 1, "media_info": {"url": "https://vimeo.com/1", "type": "video"}}
				]},
				{"square_index": 2, "score": -1, "coords": null, "evaluations": []}
			]}`))
		}))
		defer server.Close()

		cells, err := newTestClient(server.URL, 5).FetchYear(context.Background(), 2023)
		require.NoError(t, err)
		require.Len(t, cells, 2)
		assert.Equal(t, 1, cells[0].Index)
		assert.Equal(t, 3.5, cells[0].Score)
		require.Len(t, cells[0].Evaluations, 1)
		assert.Equal(t, 4, cells[0].Evaluations[0].Beauty)
		assert.Equal(t, domain.MediaTypeVideo, cells[0].Evaluations[0].Media.Type)
	})

	t.Run("not found means no data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, 5).FetchYear(context.Background(), 2016)
		assert.ErrorIs(t, err, domain.ErrNoData)
	})

	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, 5).FetchYear(context.Background(), 2016)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("server error carries backend message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"non_field_errors": ["Année invalide"]}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, 5).FetchYear(context.Background(), 1990)
		var backendErr *domain.BackendError
		require.True(t, errors.As(err, &backendErr))
		assert.Equal(t, http.StatusBadRequest, backendErr.StatusCode)
		assert.Equal(t, "Année invalide", backendErr.Message)
	})
}

func TestClient_CircuitOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 2)
	for i := 0; i < 2; i++ {
		_, err := c.FetchYear(context.Background(), 2024)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, err := c.FetchYear(context.Background(), 2024)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_NoDataDoesNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 1)
	for i := 0; i < 3; i++ {
		_, err := c.FetchYear(context.Background(), 2017)
		assert.ErrorIs(t, err, domain.ErrNoData)
	}
}

func TestExtractCells(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		count int
	}{
		{name: "year key", body: `{"2020": [{"square_index": 1}, {"square_index": 2}]}`, count: 2},
		{name: "bare array", body: `[{"index": 7}]`, count: 1},
		{name: "data key", body: `{"data": [{"square_index": 1}]}`, count: 1},
		{name: "other year only", body: `{"2019": [{"square_index": 1}]}`, count: 0},
		{name: "empty object", body: `{}`, count: 0},
		{name: "null", body: `null`, count: 0},
		{name: "empty body", body: ``, count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells, skipped, err := ExtractCells([]byte(tt.body), 2020)
			require.NoError(t, err)
			assert.Len(t, cells, tt.count)
			assert.Empty(t, skipped)
		})
	}

	cells, _, err := ExtractCells([]byte(`[{"index": 7}]`), 2020)
	require.NoError(t, err)
	assert.Equal(t, 7, cells[0].Index)

	_, _, err = ExtractCells([]byte(`{"2020": [`), 2020)
	assert.Error(t, err)
}

func TestExtractCells_BadCellIsDropped(t *testing.T) {
	t.Run("decimal string score is accepted", func(t *testing.T) {
		body := `{"2024": [
			{"square_index": 1, "score": 3, "coords": {"lat": 45.18, "lng": 5.72}},
			{"square_index": 2, "score": "4.5", "coords": {"lat": 45.19, "lng": 5.72}}
		]}`
		cells, skipped, err := ExtractCells([]byte(body), 2024)
		require.NoError(t, err)
		assert.Empty(t, skipped)
		require.Len(t, cells, 2)
		assert.Equal(t, 4.5, cells[1].Score)
	})

	t.Run("fractional criterion is accepted", func(t *testing.T) {
		body := `[{"square_index": 1, "score": 1, "evaluations": [{"id": "e", "beauty": 2.5}]}]`
		cells, skipped, err := ExtractCells([]byte(body), 2024)
		require.NoError(t, err)
		assert.Empty(t, skipped)
		require.Len(t, cells, 1)
		assert.Equal(t, 3, cells[0].Evaluations[0].Beauty)
	})

	t.Run("undecodable cells are skipped, the rest survive", func(t *testing.T) {
		body := `{"2024": [
			{"square_index": 1, "score": 3},
			{"square_index": 2, "score": "high"},
			{"square_index": 3, "score": 1, "evaluations": {"id": "not a list"}},
			{"square_index": 5, "score": -2},
			42
		]}`
		cells, skipped, err := ExtractCells([]byte(body), 2024)
		require.NoError(t, err)

		require.Len(t, cells, 2)
		assert.Equal(t, 1, cells[0].Index)
		assert.Equal(t, 5, cells[1].Index)

		require.Len(t, skipped, 3)
		assert.Equal(t, 2, skipped[0].Index)
		assert.Equal(t, 3, skipped[1].Index)
		assert.Equal(t, 4, skipped[2].Index, "position is used when the cell has no index")
		for _, s := range skipped {
			assert.Equal(t, domain.SkipDecode, s.Kind)
			assert.NotEmpty(t, s.Reason)
		}
	})
}

func TestClient_FetchYearKeepsGoodCells(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"2024": [{"square_index": 1, "score": "2.0"}, {"square_index": 2, "score": [1]}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 5)
	cells, err := c.FetchYear(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 1, cells[0].Index)
	assert.Equal(t, 2.0, cells[0].Score)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "first", ErrorMessage([]byte(`{"non_field_errors": ["first", "second"], "error": "e"}`), 2020))
	assert.Equal(t, "e", ErrorMessage([]byte(`{"error": "e", "message": "m"}`), 2020))
	assert.Equal(t, "m", ErrorMessage([]byte(`{"message": "m", "detail": "d"}`), 2020))
	assert.Equal(t, "d", ErrorMessage([]byte(`{"detail": "d"}`), 2020))
	assert.Equal(t, "Failed to load map data for year 2020", ErrorMessage([]byte(`<html>`), 2020))
	assert.Equal(t, "Failed to load map data for year 2020", ErrorMessage([]byte(`{}`), 2020))
}
