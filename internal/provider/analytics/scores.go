package analytics

import (
	"context"

	"github.com/cardfolio/cardfolio-data/internal/normalize"
	"github.com/cardfolio/cardfolio-data/internal/provider"
)

// --------------------------------------------------------------------------
// Hero score series
// --------------------------------------------------------------------------

// rawScoreSeries is one hero's entry in the heroes-scores feed. The
// summary metrics arrive as numbers or numeric strings; dates and data are
// parallel arrays zipped positionally.
type rawScoreSeries struct {
	HeroID string `json:"hero_id"`
	Name   string `json:"name"`

	CurrentScore any `json:"current_score"`
	Median7Days  any `json:"median_7_days"`
	Median14Days any `json:"median_14_days"`
	Change1Day   any `json:"change_1_day"`
	Change7Days  any `json:"change_7_days"`

	Dates []string `json:"dates"`
	Data  []any    `json:"data"`
}

// HeroScores fetches every hero's score summary and historical series.
// Series points whose date fails to parse are dropped with a warning;
// a bad point never fails the series, and a bad series never fails the
// batch.
func (c *Client) HeroScores(ctx context.Context, token string) ([]provider.ScoreSeries, error) {
	var raw []rawScoreSeries
	if err := c.getJSON(ctx, scoresPath, token, &raw); err != nil {
		return nil, err
	}

	series := make([]provider.ScoreSeries, 0, len(raw))
	for _, r := range raw {
		series = append(series, c.normalizeScoreSeries(r))
	}
	return series, nil
}

func (c *Client) normalizeScoreSeries(raw rawScoreSeries) provider.ScoreSeries {
	s := provider.ScoreSeries{
		HeroID:       raw.HeroID,
		Name:         raw.Name,
		CurrentScore: c.float(raw.HeroID, "current_score", raw.CurrentScore),
		Median7Days:  c.float(raw.HeroID, "median_7_days", raw.Median7Days),
		Median14Days: c.float(raw.HeroID, "median_14_days", raw.Median14Days),
		Change1Day:   c.float(raw.HeroID, "change_1_day", raw.Change1Day),
		Change7Days:  c.float(raw.HeroID, "change_7_days", raw.Change7Days),
	}

	// Zip the parallel date/value arrays; the shorter side wins.
	n := len(raw.Dates)
	if len(raw.Data) < n {
		n = len(raw.Data)
	}
	for i := 0; i < n; i++ {
		date, err := normalize.DateOnly(raw.Dates[i])
		if err != nil {
			c.logger.Warn("dropping score point with unparsable date",
				"hero_id", raw.HeroID, "date", raw.Dates[i])
			continue
		}
		score := c.float(raw.HeroID, "data", raw.Data[i])
		s.Points = append(s.Points, provider.ScorePoint{Date: date, Score: score})
	}

	return s
}

// float coerces a real-valued field, logging a warning when a present
// value could not be parsed.
func (c *Client) float(heroID, field string, v any) float64 {
	f, ok := normalize.Float(v)
	if !ok && v != nil {
		c.logger.Warn("unparsable score field", "hero_id", heroID, "field", field, "value", v)
	}
	return f
}

// --------------------------------------------------------------------------
// Tournament score series
// --------------------------------------------------------------------------

type rawTournamentSeries struct {
	HeroID string `json:"hero_id"`
	Name   string `json:"name"`
	Data   []any  `json:"data"`
}

type tournamentResponse struct {
	Data []rawTournamentSeries `json:"data"`
}

// TournamentScores fetches every hero's tournament score series. Scores
// are index-ordered; the position in the array is the upsert key.
func (c *Client) TournamentScores(ctx context.Context, token string) ([]provider.TournamentSeries, error) {
	var raw tournamentResponse
	if err := c.getJSON(ctx, tournamentPath, token, &raw); err != nil {
		return nil, err
	}

	series := make([]provider.TournamentSeries, 0, len(raw.Data))
	for _, r := range raw.Data {
		s := provider.TournamentSeries{HeroID: r.HeroID, Name: r.Name}
		for i, v := range r.Data {
			score, ok := normalize.Float(v)
			if !ok && v != nil {
				c.logger.Warn("unparsable tournament score",
					"hero_id", r.HeroID, "index", i, "value", v)
			}
			s.Scores = append(s.Scores, score)
		}
		series = append(series, s)
	}
	return series, nil
}
