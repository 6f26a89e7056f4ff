// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidHistory is returned when a star history breaks its ordering or value rules.
var ErrInvalidHistory = errors.New("invalid star history")

// RepoStats holds the identity of a repository as shown in the repository section.
type RepoStats struct {
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName returns "owner/name".
func (r RepoStats) FullName() string {
	return r.Owner + "/" + r.Name
}

// StarStats holds the summary numbers of the star trend section.
// TotalStar and CreatedAt come from the data provider, MaxIncrement is
// maintained by the aggregator.
type StarStats struct {
	TotalStar    int       `json:"total_star"`
	MaxIncrement int       `json:"max_increment"`
	CreatedAt    time.Time `json:"created_at"`
}

// StarEntry is the number of stars a repository received on one day.
type StarEntry struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// StarHistory is a chronological, day-keyed list of star increments.
// A nil StarHistory is a valid empty history.
type StarHistory []StarEntry

// StarPoint is a single point of a derived chart series.
type StarPoint struct {
	Date  time.Time `json:"date"`
	Stars int       `json:"stars"`
}

// Validate checks that dates strictly increase and counts are not negative.
func (h StarHistory) Validate() error {
	for i, e := range h {
		if e.Count < 0 {
			return fmt.Errorf("%w: negative count %d at %s", ErrInvalidHistory, e.Count, e.Date.Format(time.DateOnly))
		}
		if i > 0 && !e.Date.After(h[i-1].Date) {
			return fmt.Errorf("%w: %s does not follow %s", ErrInvalidHistory, e.Date.Format(time.DateOnly), h[i-1].Date.Format(time.DateOnly))
		}
	}
	return nil
}

// Total returns the sum of all counts.
func (h StarHistory) Total() int {
	total := 0
	for _, e := range h {
		total += e.Count
	}
	return total
}

// Clone returns a copy that does not share its backing array with h.
func (h StarHistory) Clone() StarHistory {
	if h == nil {
		return nil
	}
	out := make(StarHistory, len(h))
	copy(out, h)
	return out
}

// AddStar records one star given at t. Stars are bucketed by UTC day, so
// callers must feed events in chronological order.
func (h StarHistory) AddStar(t time.Time) StarHistory {
	day := t.UTC().Truncate(24 * time.Hour)
	if n := len(h); n > 0 && h[n-1].Date.Equal(day) {
		h[n-1].Count++
		return h
	}
	return append(h, StarEntry{Date: day, Count: 1})
}
