package navigator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/scoring"
)

func cellWith(n int) domain.GeoCell {
	evals := make([]domain.Evaluation, n)
	for i := range evals {
		evals[i] = domain.Evaluation{ID: string(rune('a' + i))}
	}
	return domain.GeoCell{Index: 7, Score: 2.5, Evaluations: evals}
}

func TestNavigator_ClosedByDefault(t *testing.T) {
	var n Navigator
	assert.False(t, n.IsOpen())
	assert.Nil(t, n.View())

	n.Next()
	n.Previous()
	assert.Zero(t, n.Index())
}

func TestNavigator_FullCycleWraps(t *testing.T) {
	var n Navigator
	n.Open(cellWith(4))

	seen := []int{n.Index()}
	for i := 0; i < 4; i++ {
		n.Next()
		seen = append(seen, n.Index())
	}
	assert.Equal(t, []int{0, 1, 2, 3, 0}, seen)

	n.Previous()
	assert.Equal(t, 3, n.Index())
	for i := 0; i < 4; i++ {
		n.Previous()
	}
	assert.Equal(t, 3, n.Index())
}

func TestNavigator_SingleEvaluationDoesNotMove(t *testing.T) {
	var n Navigator
	n.Open(cellWith(1))

	n.Next()
	n.Previous()
	assert.Zero(t, n.Index())

	v := n.View()
	require.NotNil(t, v)
	assert.False(t, v.CanNavigate)
	assert.Equal(t, "1/1", v.PositionLabel)
}

func TestNavigator_OpenResetsIndexAndCloseClears(t *testing.T) {
	var n Navigator
	n.Open(cellWith(3))
	n.Next()
	n.Next()
	assert.Equal(t, 2, n.Index())

	n.Open(cellWith(3))
	assert.Zero(t, n.Index())

	n.Next()
	n.Close()
	assert.False(t, n.IsOpen())
	assert.Zero(t, n.Index())
	assert.Nil(t, n.View())
}

func TestNavigator_NoEvaluations(t *testing.T) {
	var n Navigator
	n.Open(domain.GeoCell{Index: 4, Score: -6})

	n.Next()
	v := n.View()
	require.NotNil(t, v)
	assert.True(t, v.Empty)
	assert.NotEmpty(t, v.EmptyMessage)
	assert.Nil(t, v.Evaluation)
	assert.Equal(t, 0, v.Total)
	assert.Equal(t, scoring.BandDanger, v.CellBand)
	assert.Empty(t, v.PositionLabel)
}

func TestNavigator_ViewRecomputesComposite(t *testing.T) {
	year := 2019
	cell := domain.GeoCell{
		Index: 12,
		Score: 4,
		Evaluations: []domain.Evaluation{
			{
				ID:       "first",
				Criteria: domain.Criteria{Beauty: 1, Boring: 5, Depressing: 5},
			},
			{
				ID:             "second",
				Criteria:       domain.Criteria{Beauty: 5, Lively: 4, Wealthy: 3, Safe: 5, Boring: 1},
				Comment:        "Nice square",
				EvaluatorEmail: "someone@example.org",
				CreatedAt:      domain.Timestamp{Time: time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)},
				Media: &domain.MediaInfo{
					URL:   "https://vimeo.com/123456",
					Type:  domain.MediaTypeVideo,
					Place: "Place Grenette",
					Year:  &year,
				},
			},
		},
	}

	var n Navigator
	n.Open(cell)

	v := n.View()
	require.NotNil(t, v)
	assert.Equal(t, "1/2", v.PositionLabel)
	assert.True(t, v.CanNavigate)
	assert.Equal(t, scoring.BandInfo, v.CellBand)

	ev := v.Evaluation
	require.NotNil(t, ev)
	assert.Equal(t, -9, ev.CompositeScore)
	assert.Equal(t, scoring.BandDanger, ev.CompositeBand)
	assert.InDelta(t, 35.0, ev.CompositePercent, 1e-9)
	assert.Equal(t, "Anonymous", ev.Evaluator)
	assert.Equal(t, "Not specified", ev.Place)
	assert.Equal(t, "Not specified", ev.Year)
	assert.Equal(t, domain.MediaTypeImage, ev.MediaType)
	assert.Nil(t, ev.CreatedAt)
	require.Len(t, ev.Criteria, 6)
	assert.Equal(t, "beauty", ev.Criteria[0].Key)
	assert.InDelta(t, 20.0, ev.Criteria[0].Percent, 1e-9)
	assert.InDelta(t, 100.0, ev.Criteria[1].Percent, 1e-9)

	n.Next()
	ev = n.View().Evaluation
	require.NotNil(t, ev)
	assert.Equal(t, 16, ev.CompositeScore)
	assert.Equal(t, scoring.BandSuccess, ev.CompositeBand)
	assert.Equal(t, "someone@example.org", ev.Evaluator)
	assert.Equal(t, "Place Grenette", ev.Place)
	assert.Equal(t, "2019", ev.Year)
	assert.Equal(t, domain.MediaTypeVideo, ev.MediaType)
	assert.Equal(t, "https://player.vimeo.com/video/123456", ev.EmbedURL)
	assert.Equal(t, "Nice square", ev.Comment)
	require.NotNil(t, ev.CreatedAt)
	assert.Equal(t, 2023, ev.CreatedAt.Year())
}

func TestVimeoEmbedURL(t *testing.T) {
	assert.Equal(t, "https://player.vimeo.com/video/42", VimeoEmbedURL("https://vimeo.com/42"))
	assert.Equal(t, "https://player.vimeo.com/video/42", VimeoEmbedURL("http://www.vimeo.com/42?autoplay=1"))
	assert.Equal(t, "https://example.org/v.mp4", VimeoEmbedURL("https://example.org/v.mp4"))
}
