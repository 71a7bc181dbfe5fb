// Package scoring derives comparable scores and colours from perceptual criteria.
package scoring

import (
	"fmt"
	"math"

	"github.com/perception-map/internal/domain"
)

// Band is a four-way severity classification of a composite score.
type Band string

const (
	BandDanger  Band = "danger"
	BandWarning Band = "warning"
	BandInfo    Band = "info"
	BandSuccess Band = "success"
)

// CompositeScore = beauty + lively + wealthy + safe - boring - depressing.
func CompositeScore(c domain.Criteria) int {
	return c.Beauty + c.Lively + c.Wealthy + c.Safe - c.Boring - c.Depressing
}

// SeverityBand classifies a score: danger < -5 <= warning < 0 <= info < 5 <= success.
func SeverityBand(score float64) Band {
	switch {
	case score < -5:
		return BandDanger
	case score < 0:
		return BandWarning
	case score < 5:
		return BandInfo
	default:
		return BandSuccess
	}
}

// RGB is an 8-bit colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex renders the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var (
	CellRed   = RGB{R: 255}
	CellGreen = RGB{G: 128}
)

// ColorForCellScore interpolates the map fill from red (<= -10) to green (>= 10).
func ColorForCellScore(score float64) RGB {
	switch {
	case math.IsNaN(score):
		// NaN compares false everywhere; treat it as the neutral midpoint.
		score = 0
	case score <= -10:
		return CellRed
	case score >= 10:
		return CellGreen
	}

	n := (score + 10) / 20
	n = math.Max(0, math.Min(1, n))
	return RGB{
		R: uint8(math.Round(255 * (1 - n))),
		G: uint8(math.Round(128 * n)),
	}
}

// CriterionPercent maps a 0..5 rating onto a 0..100 progress value.
func CriterionPercent(v int) float64 {
	return clampPercent(float64(v) * 20)
}

// CompositePercent maps a composite score onto a 0..100 progress value over [-30, 30].
func CompositePercent(score int) float64 {
	return clampPercent(float64(score+30) * (100.0 / 60.0))
}

func clampPercent(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}

// Criterion describes one rating axis for detail views.
type Criterion struct {
	Key   string
	Label string
	Color string
	// Positive criteria add to the composite score, the others subtract.
	Positive bool
	value    func(domain.Criteria) int
}

// Value returns the rating of this criterion in c.
func (k Criterion) Value(c domain.Criteria) int {
	return k.value(c)
}

// Criteria lists the rating axes in display order.
var Criteria = []Criterion{
	{Key: "beauty", Label: "Beauty", Color: "success", Positive: true, value: func(c domain.Criteria) int { return c.Beauty }},
	{Key: "boring", Label: "Boring", Color: "warning", value: func(c domain.Criteria) int { return c.Boring }},
	{Key: "depressing", Label: "Depressing", Color: "danger", value: func(c domain.Criteria) int { return c.Depressing }},
	{Key: "lively", Label: "Lively", Color: "info", Positive: true, value: func(c domain.Criteria) int { return c.Lively }},
	{Key: "wealthy", Label: "Wealthy", Color: "primary", Positive: true, value: func(c domain.Criteria) int { return c.Wealthy }},
	{Key: "safe", Label: "Safe", Color: "success", Positive: true, value: func(c domain.Criteria) int { return c.Safe }},
}
