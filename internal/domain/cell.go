package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MediaType - тип оцененного медиа
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// ViewMode - режим отображения карты
type ViewMode string

const (
	ViewModeComposite  ViewMode = "composite"
	ViewModeIndividual ViewMode = "individual"
)

// IsValid проверяет режим отображения
func (m ViewMode) IsValid() bool {
	return m == ViewModeComposite || m == ViewModeIndividual
}

// GeoCell - одна оцененная географическая ячейка за выбранный год
type GeoCell struct {
	Index       int             `json:"square_index"`
	Score       float64         `json:"score"`
	Coords      json.RawMessage `json:"coords,omitempty"`
	Evaluations []Evaluation    `json:"evaluations"`
}

// UnmarshalJSON accepts both "square_index" and "index" as the cell identifier.
func (c *GeoCell) UnmarshalJSON(data []byte) error {
	var raw struct {
		SquareIndex *int            `json:"square_index"`
		Index       *int            `json:"index"`
		Score       Number          `json:"score"`
		Coords      json.RawMessage `json:"coords"`
		Evaluations []Evaluation    `json:"evaluations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode geo cell: %w", err)
	}

	switch {
	case raw.SquareIndex != nil:
		c.Index = *raw.SquareIndex
	case raw.Index != nil:
		c.Index = *raw.Index
	}
	c.Score = float64(raw.Score)
	c.Coords = raw.Coords
	c.Evaluations = raw.Evaluations
	return nil
}

// Criteria - шесть оценок по шкале 0..5, отсутствующие считаются нулем
type Criteria struct {
	Beauty     int `json:"beauty"`
	Boring     int `json:"boring"`
	Depressing int `json:"depressing"`
	Lively     int `json:"lively"`
	Wealthy    int `json:"wealthy"`
	Safe       int `json:"safe"`
}

// Number - число, которое бэкенд может прислать строкой ("4.50", как DRF
// отдает Decimal). null и пустая строка читаются как 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	var f float64
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("number %q: %w", s, err)
		}
		f = parsed
	} else if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("number %s is not finite", data)
	}
	*n = Number(f)
	return nil
}

// MediaInfo - ссылка на оцененный элемент
type MediaInfo struct {
	URL   string    `json:"url"`
	Type  MediaType `json:"type"`
	Place string    `json:"place,omitempty"`
	Year  *int      `json:"year,omitempty"`
}

// Evaluation - оценка одного медиа одним пользователем
type Evaluation struct {
	ID string `json:"id"`
	Criteria
	Comment        string     `json:"comment,omitempty"`
	Media          *MediaInfo `json:"media_info,omitempty"`
	EvaluatorEmail string     `json:"evaluator_email,omitempty"`
	CreatedAt      Timestamp  `json:"created_at"`
}

// UnmarshalJSON reads criteria through Number, so "3" and 2.5 are accepted.
// Fractional ratings are rounded to the nearest integer.
func (e *Evaluation) UnmarshalJSON(data []byte) error {
	type plain Evaluation
	var raw struct {
		plain
		Beauty     Number `json:"beauty"`
		Boring     Number `json:"boring"`
		Depressing Number `json:"depressing"`
		Lively     Number `json:"lively"`
		Wealthy    Number `json:"wealthy"`
		Safe       Number `json:"safe"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode evaluation: %w", err)
	}

	*e = Evaluation(raw.plain)
	e.Criteria = Criteria{
		Beauty:     rating(raw.Beauty),
		Boring:     rating(raw.Boring),
		Depressing: rating(raw.Depressing),
		Lively:     rating(raw.Lively),
		Wealthy:    rating(raw.Wealthy),
		Safe:       rating(raw.Safe),
	}
	return nil
}

func rating(n Number) int {
	return int(math.Round(float64(n)))
}

// Timestamp is a display-only time that tolerates the formats the evaluation
// backend emits. Unparseable values decode to the zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
