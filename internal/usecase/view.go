package usecase

import (
	"fmt"
	"time"

	"github.com/naka-gawa/star-trend/internal/domain"
	"github.com/naka-gawa/star-trend/internal/store"
)

// View is everything the presentation layer needs to draw the panel.
type View struct {
	Repository         *domain.RepoStats       `json:"repository,omitempty"`
	DaysSinceCreated   *int                    `json:"days_since_created,omitempty"`
	Stars              *domain.StarStats       `json:"stars,omitempty"`
	AverageStarsPerDay domain.Rate             `json:"average_stars_per_day"`
	IncrementSummary   domain.IncrementSummary `json:"increment_summary"`
	Cumulative         []domain.StarPoint      `json:"cumulative"`
	Daily              []domain.StarPoint      `json:"daily"`
	Status             map[string]string       `json:"status"`
	Errors             map[string]string       `json:"errors,omitempty"`
}

// View derives the chart series and summary figures from the current
// store contents. If the history holds a larger daily increment than
// starStats knows about, the new maximum is written back in one update.
func (p *Panel) View(now time.Time) (*View, error) {
	state := p.store.Snapshot()

	v := &View{
		Repository: state.RepoStats,
		Cumulative: domain.CumulativeSeries(state.StarData),
		Status:     make(map[string]string, len(state.Status)),
	}
	for key, status := range state.Status {
		v.Status[string(key)] = string(status.Phase)
		if status.Err != nil {
			if v.Errors == nil {
				v.Errors = make(map[string]string)
			}
			v.Errors[string(key)] = status.Err.Error()
		}
	}

	if state.RepoStats != nil {
		if days, ok := domain.DaysSince(state.RepoStats.CreatedAt, now); ok {
			v.DaysSinceCreated = &days
		}
	}

	prior := 0
	if state.StarStats != nil {
		prior = state.StarStats.MaxIncrement
	}
	daily, maxIncrement := domain.IncrementSeries(state.StarData, prior)
	v.Daily = daily
	if maxIncrement != prior {
		if err := p.store.UpdateStatsField(store.KeyStarStats, store.Patch{MaxIncrement: &maxIncrement}); err != nil {
			return nil, fmt.Errorf("failed to store max increment: %w", err)
		}
	}

	if state.StarStats != nil {
		stars := *state.StarStats
		stars.MaxIncrement = maxIncrement
		v.Stars = &stars
		v.AverageStarsPerDay = domain.AverageStarsPerDay(stars.TotalStar, stars.CreatedAt, now)
	}

	summary, err := domain.SummarizeIncrements(state.StarData)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize daily increments: %w", err)
	}
	v.IncrementSummary = summary

	return v, nil
}
