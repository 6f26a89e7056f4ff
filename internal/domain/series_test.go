package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleHistory() StarHistory {
	return StarHistory{
		{Date: date("2020-01-01"), Count: 5},
		{Date: date("2020-01-02"), Count: 3},
		{Date: date("2020-01-03"), Count: 10},
	}
}

func stars(points []StarPoint) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.Stars
	}
	return out
}

func TestCumulativeSeries(t *testing.T) {
	testCases := []struct {
		name     string
		history  StarHistory
		expected []int
	}{
		{name: "three days", history: sampleHistory(), expected: []int{5, 8, 18}},
		{name: "empty history", history: StarHistory{}, expected: []int{}},
		{name: "nil history", history: nil, expected: []int{}},
		{
			name: "zero days keep the total flat",
			history: StarHistory{
				{Date: date("2021-05-01"), Count: 2},
				{Date: date("2021-05-02"), Count: 0},
				{Date: date("2021-05-03"), Count: 1},
			},
			expected: []int{2, 2, 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			series := CumulativeSeries(tc.history)

			assert.Len(t, series, len(tc.history))
			assert.Equal(t, tc.expected, stars(series))
			for i := 1; i < len(series); i++ {
				assert.GreaterOrEqual(t, series[i].Stars, series[i-1].Stars)
			}
			if len(series) > 0 {
				assert.Equal(t, tc.history.Total(), series[len(series)-1].Stars)
				assert.Equal(t, tc.history[0].Date, series[0].Date)
			}
		})
	}
}

func TestCumulativeSeries_IsIdempotent(t *testing.T) {
	history := sampleHistory()

	first := CumulativeSeries(history)
	second := CumulativeSeries(history)

	assert.Equal(t, first, second)
	assert.Equal(t, sampleHistory(), history, "input must not be modified")
}

func TestIncrementSeries(t *testing.T) {
	testCases := []struct {
		name        string
		history     StarHistory
		priorMax    int
		expected    []int
		expectedMax int
	}{
		{name: "no prior maximum", history: sampleHistory(), priorMax: 0, expected: []int{5, 3, 10}, expectedMax: 10},
		{name: "prior maximum is larger", history: sampleHistory(), priorMax: 42, expected: []int{5, 3, 10}, expectedMax: 42},
		{name: "prior maximum is smaller", history: sampleHistory(), priorMax: 7, expected: []int{5, 3, 10}, expectedMax: 10},
		{name: "empty history keeps prior maximum", history: StarHistory{}, priorMax: 9, expected: []int{}, expectedMax: 9},
		{name: "nil history without prior maximum", history: nil, priorMax: 0, expected: []int{}, expectedMax: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			series, maxIncrement := IncrementSeries(tc.history, tc.priorMax)

			assert.Len(t, series, len(tc.history))
			assert.Equal(t, tc.expected, stars(series))
			assert.Equal(t, tc.expectedMax, maxIncrement)
			assert.GreaterOrEqual(t, maxIncrement, tc.priorMax)
			for _, e := range tc.history {
				assert.GreaterOrEqual(t, maxIncrement, e.Count)
			}
		})
	}
}

func TestIncrementSeries_GrowsWithSupersetHistory(t *testing.T) {
	partial := sampleHistory()[:2]
	_, firstMax := IncrementSeries(partial, 0)
	require.Equal(t, 5, firstMax)

	_, secondMax := IncrementSeries(sampleHistory(), firstMax)
	assert.Equal(t, 10, secondMax)
}

func TestAverageStarsPerDay(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		totalStar int
		createdAt time.Time
		expected  Rate
	}{
		{name: "created exactly a year ago", totalStar: 365, createdAt: now.AddDate(0, 0, -365), expected: Rate{Value: 1.0, Valid: true}},
		{name: "created today", totalStar: 100, createdAt: now.Add(-3 * time.Hour), expected: Rate{}},
		{name: "unknown creation date", totalStar: 100, createdAt: time.Time{}, expected: Rate{}},
		{name: "creation date in the future", totalStar: 1, createdAt: now.Add(48 * time.Hour), expected: Rate{}},
		{name: "partial days are floored", totalStar: 10, createdAt: now.Add(-(4*24 + 23) * time.Hour), expected: Rate{Value: 2.5, Valid: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AverageStarsPerDay(tc.totalStar, tc.createdAt, now))
		})
	}
}

func TestRate_Formatting(t *testing.T) {
	assert.Equal(t, "N/A", Rate{}.String())
	assert.Equal(t, "2.50", Rate{Value: 2.5, Valid: true}.String())

	data, err := json.Marshal(struct {
		Missing Rate `json:"missing"`
		Present Rate `json:"present"`
	}{Present: Rate{Value: 1, Valid: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"missing": null, "present": 1}`, string(data))
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	days, ok := DaysSince(now.AddDate(0, 0, -10), now)
	assert.True(t, ok)
	assert.Equal(t, 10, days)

	_, ok = DaysSince(time.Time{}, now)
	assert.False(t, ok)

	days, ok = DaysSince(now.Add(72*time.Hour), now)
	assert.False(t, ok)
	assert.Equal(t, 0, days)
}

func TestSummarizeIncrements(t *testing.T) {
	summary, err := SummarizeIncrements(sampleHistory())
	require.NoError(t, err)
	assert.InDelta(t, 6.0, summary.Mean, 1e-9)
	assert.InDelta(t, 5.0, summary.Median, 1e-9)
	assert.GreaterOrEqual(t, summary.P95, 3.0)
	assert.LessOrEqual(t, summary.P95, 10.0)

	empty, err := SummarizeIncrements(nil)
	require.NoError(t, err)
	assert.Equal(t, IncrementSummary{}, empty)
}
