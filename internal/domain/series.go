package domain

import (
	"math"
	"strconv"
	"time"

	"github.com/montanaflynn/stats"
)

const day = 24 * time.Hour

// IncrementSeries returns one point per history entry holding that day's
// star count, together with the largest count seen so far. currentMax is
// the previously known maximum (zero if none); the result never drops below it.
func IncrementSeries(history StarHistory, currentMax int) ([]StarPoint, int) {
	series := make([]StarPoint, 0, len(history))
	maxIncrement := currentMax
	for _, e := range history {
		series = append(series, StarPoint{Date: e.Date, Stars: e.Count})
		if e.Count > maxIncrement {
			maxIncrement = e.Count
		}
	}
	return series, maxIncrement
}

// CumulativeSeries returns the running star total, one point per history entry.
func CumulativeSeries(history StarHistory) []StarPoint {
	series := make([]StarPoint, 0, len(history))
	total := 0
	for _, e := range history {
		total += e.Count
		series = append(series, StarPoint{Date: e.Date, Stars: total})
	}
	return series
}

// DaysSince returns the number of whole days between createdAt and now.
// ok is false when createdAt is unknown or lies after now.
func DaysSince(createdAt, now time.Time) (days int, ok bool) {
	if createdAt.IsZero() {
		return 0, false
	}
	days = int(math.Floor(float64(now.Sub(createdAt)) / float64(day)))
	if days < 0 {
		return 0, false
	}
	return days, true
}

// Rate is a per-day figure that may be not applicable.
type Rate struct {
	Value float64
	Valid bool
}

// String formats the rate with two decimals, or "N/A".
func (r Rate) String() string {
	if !r.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

// MarshalJSON encodes an invalid rate as null.
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, r.Value, 'f', -1, 64), nil
}

// AverageStarsPerDay divides totalStar by the repository age in whole days.
// A repository younger than one day, or with no creation date, has no rate.
func AverageStarsPerDay(totalStar int, createdAt, now time.Time) Rate {
	days, ok := DaysSince(createdAt, now)
	if !ok || days <= 0 {
		return Rate{}
	}
	return Rate{Value: float64(totalStar) / float64(days), Valid: true}
}

// IncrementSummary describes the distribution of daily increments.
type IncrementSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
}

// SummarizeIncrements computes mean, median and 95th percentile of the
// daily counts. An empty history yields a zero summary.
func SummarizeIncrements(history StarHistory) (IncrementSummary, error) {
	if len(history) == 0 {
		return IncrementSummary{}, nil
	}
	data := make(stats.Float64Data, len(history))
	for i, e := range history {
		data[i] = float64(e.Count)
	}

	var (
		summary IncrementSummary
		err     error
	)
	if summary.Mean, err = data.Mean(); err != nil {
		return IncrementSummary{}, err
	}
	if summary.Median, err = data.Median(); err != nil {
		return IncrementSummary{}, err
	}
	if summary.P95, err = data.Percentile(95); err != nil {
		return IncrementSummary{}, err
	}
	return summary, nil
}
