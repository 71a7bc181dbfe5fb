package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoCell_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		expectedIndex int
		expectedEvals int
	}{
		{
			name:          "square_index from composite endpoint",
			payload:       `{"square_index": 3, "score": -7, "coords": {"lat_1": 45.18}}`,
			expectedIndex: 3,
		},
		{
			name:          "plain index",
			payload:       `{"index": 12, "score": 1.5, "coords": null}`,
			expectedIndex: 12,
		},
		{
			name:          "square_index wins over index",
			payload:       `{"square_index": 4, "index": 9, "score": 0}`,
			expectedIndex: 4,
		},
		{
			name:          "evaluations decoded with flattened criteria",
			payload:       `{"square_index": 1, "score": 2, "evaluations": [{"id": "a", "beauty": 5, "safe": 2}]}`,
			expectedIndex: 1,
			expectedEvals: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cell GeoCell
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &cell))
			assert.Equal(t, tt.expectedIndex, cell.Index)
			assert.Len(t, cell.Evaluations, tt.expectedEvals)
		})
	}
}

func TestEvaluation_MissingCriteriaDefaultToZero(t *testing.T) {
	var e Evaluation
	require.NoError(t, json.Unmarshal([]byte(`{"id": "x", "beauty": 4, "media_info": {"url": "https://vimeo.com/1", "type": "video"}}`), &e))

	assert.Equal(t, 4, e.Beauty)
	assert.Equal(t, 0, e.Boring)
	assert.Equal(t, 0, e.Depressing)
	assert.Equal(t, 0, e.Lively)
	assert.Equal(t, 0, e.Wealthy)
	assert.Equal(t, 0, e.Safe)
	require.NotNil(t, e.Media)
	assert.Equal(t, MediaTypeVideo, e.Media.Type)
	assert.True(t, e.CreatedAt.IsZero())
}

func TestGeoCell_DecimalStringScore(t *testing.T) {
	var cell GeoCell
	require.NoError(t, json.Unmarshal([]byte(`{"square_index": 2, "score": "4.50", "coords": null}`), &cell))
	assert.Equal(t, 4.5, cell.Score)

	err := json.Unmarshal([]byte(`{"square_index": 2, "score": "high"}`), &cell)
	assert.Error(t, err)
}

func TestEvaluation_LooseCriteria(t *testing.T) {
	var e Evaluation
	payload := `{"id": "x", "beauty": 2.5, "boring": "3", "lively": null, "safe": 1.4, "created_at": "2024-05-01"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &e))

	assert.Equal(t, "x", e.ID)
	assert.Equal(t, 3, e.Beauty)
	assert.Equal(t, 3, e.Boring)
	assert.Equal(t, 0, e.Lively)
	assert.Equal(t, 1, e.Safe)
	assert.Equal(t, 2024, e.CreatedAt.Year())
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		payload  string
		expected Number
		wantErr  bool
	}{
		{`4.5`, 4.5, false},
		{`"-7"`, -7, false},
		{`" 1.25 "`, 1.25, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"n/a"`, 0, true},
		{`true`, 0, true},
		{`{}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			var n Number
			err := n.UnmarshalJSON([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected time.Time
	}{
		{"rfc3339", `"2024-05-01T10:30:00Z"`, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{"fractional without zone", `"2024-05-01T10:30:00.123456"`, time.Date(2024, 5, 1, 10, 30, 0, 123456000, time.UTC)},
		{"history format", `"2024-05-01 10:30:00"`, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{"garbage", `"yesterday"`, time.Time{}},
		{"null", `null`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, ts.UnmarshalJSON([]byte(tt.payload)))
			assert.True(t, tt.expected.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}

func TestViewMode_IsValid(t *testing.T) {
	assert.True(t, ViewModeComposite.IsValid())
	assert.True(t, ViewModeIndividual.IsValid())
	assert.False(t, ViewMode("heatmap").IsValid())
}

func TestContainer_Valid(t *testing.T) {
	assert.True(t, Container{Width: 800, Height: 600}.Valid())
	assert.False(t, Container{Width: 800}.Valid())
	assert.False(t, Container{}.Valid())
}
