// Package navigator pages through the evaluations recorded for one selected cell.
package navigator

import (
	"fmt"
	"regexp"
	"time"

	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/scoring"
)

const (
	anonymousEvaluator = "Anonymous"
	notSpecified       = "Not specified"
	noEvaluationsText  = "No evaluations available for this square."
	noComment          = "No comment"
)

// Navigator holds the selected cell and the index of the evaluation on display.
// The zero value is closed.
type Navigator struct {
	cell  *domain.GeoCell
	index int
}

// Open selects cell and shows its first evaluation.
func (n *Navigator) Open(cell domain.GeoCell) {
	c := cell
	n.cell = &c
	n.index = 0
}

// Close clears the selection.
func (n *Navigator) Close() {
	n.cell = nil
	n.index = 0
}

func (n *Navigator) IsOpen() bool {
	return n.cell != nil
}

// Index is the current evaluation index; 0 when closed.
func (n *Navigator) Index() int {
	return n.index
}

func (n *Navigator) total() int {
	if n.cell == nil {
		return 0
	}
	return len(n.cell.Evaluations)
}

// Next moves forward, wrapping to the first evaluation. No-op with fewer than 2.
func (n *Navigator) Next() {
	n.step(1)
}

// Previous moves back, wrapping to the last evaluation. No-op with fewer than 2.
func (n *Navigator) Previous() {
	n.step(-1)
}

func (n *Navigator) step(delta int) {
	total := n.total()
	if total <= 1 {
		return
	}
	n.index = (n.index + delta + total) % total
}

// CriterionView is one rating bar of the detail view.
type CriterionView struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Max     int     `json:"max"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color"`
}

// EvaluationView is the evaluation currently on display.
type EvaluationView struct {
	ID               string           `json:"id"`
	Evaluator        string           `json:"evaluator"`
	CreatedAt        *time.Time       `json:"created_at,omitempty"`
	Place            string           `json:"place"`
	Year             string           `json:"year"`
	MediaType        domain.MediaType `json:"media_type"`
	MediaURL         string           `json:"media_url,omitempty"`
	EmbedURL         string           `json:"embed_url,omitempty"`
	Comment          string           `json:"comment"`
	Criteria         []CriterionView  `json:"criteria"`
	CompositeScore   int              `json:"composite_score"`
	CompositeBand    scoring.Band     `json:"composite_band"`
	CompositePercent float64          `json:"composite_percent"`
}

// DetailView is everything the cell detail panel shows.
type DetailView struct {
	CellIndex     int             `json:"cell_index"`
	CellScore     float64         `json:"cell_score"`
	CellBand      scoring.Band    `json:"cell_band"`
	Total         int             `json:"total"`
	Index         int             `json:"index"`
	PositionLabel string          `json:"position_label,omitempty"`
	CanNavigate   bool            `json:"can_navigate"`
	Empty         bool            `json:"empty"`
	EmptyMessage  string          `json:"empty_message,omitempty"`
	Evaluation    *EvaluationView `json:"evaluation,omitempty"`
}

// View renders the current state, or nil when closed. Scores are recomputed from
// the current evaluation's criteria on every call.
func (n *Navigator) View() *DetailView {
	if n.cell == nil {
		return nil
	}

	total := len(n.cell.Evaluations)
	v := &DetailView{
		CellIndex:   n.cell.Index,
		CellScore:   n.cell.Score,
		CellBand:    scoring.SeverityBand(n.cell.Score),
		Total:       total,
		CanNavigate: total > 1,
	}
	if total == 0 {
		v.Empty = true
		v.EmptyMessage = noEvaluationsText
		return v
	}

	v.Index = n.index
	v.PositionLabel = fmt.Sprintf("%d/%d", n.index+1, total)
	v.Evaluation = evaluationView(n.cell.Evaluations[n.index])
	return v
}

func evaluationView(e domain.Evaluation) *EvaluationView {
	score := scoring.CompositeScore(e.Criteria)
	ev := &EvaluationView{
		ID:               e.ID,
		Evaluator:        orDefault(e.EvaluatorEmail, anonymousEvaluator),
		Place:            notSpecified,
		Year:             notSpecified,
		MediaType:        domain.MediaTypeImage,
		Comment:          orDefault(e.Comment, noComment),
		CompositeScore:   score,
		CompositeBand:    scoring.SeverityBand(float64(score)),
		CompositePercent: scoring.CompositePercent(score),
	}
	if !e.CreatedAt.IsZero() {
		t := e.CreatedAt.Time
		ev.CreatedAt = &t
	}
	if m := e.Media; m != nil {
		ev.Place = orDefault(m.Place, notSpecified)
		if m.Year != nil {
			ev.Year = fmt.Sprintf("%d", *m.Year)
		}
		ev.MediaURL = m.URL
		if m.Type == domain.MediaTypeVideo {
			ev.MediaType = domain.MediaTypeVideo
			ev.EmbedURL = VimeoEmbedURL(m.URL)
		}
	}

	ev.Criteria = make([]CriterionView, 0, len(scoring.Criteria))
	for _, k := range scoring.Criteria {
		value := k.Value(e.Criteria)
		ev.Criteria = append(ev.Criteria, CriterionView{
			Key:     k.Key,
			Label:   k.Label,
			Value:   value,
			Max:     5,
			Percent: scoring.CriterionPercent(value),
			Color:   k.Color,
		})
	}
	return ev
}

var vimeoID = regexp.MustCompile(`vimeo\.com/(\d+)`)

// VimeoEmbedURL turns a vimeo page URL into its player URL. Other URLs are returned unchanged.
func VimeoEmbedURL(url string) string {
	m := vimeoID.FindStringSubmatch(url)
	if m == nil {
		return url
	}
	return "https://player.vimeo.com/video/" + m[1]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
