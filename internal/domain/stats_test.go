package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStarHistory_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		history     StarHistory
		expectError bool
	}{
		{name: "chronological history", history: sampleHistory()},
		{name: "empty history", history: nil},
		{
			name: "duplicate date",
			history: StarHistory{
				{Date: date("2020-01-01"), Count: 1},
				{Date: date("2020-01-01"), Count: 2},
			},
			expectError: true,
		},
		{
			name: "out of order",
			history: StarHistory{
				{Date: date("2020-01-02"), Count: 1},
				{Date: date("2020-01-01"), Count: 2},
			},
			expectError: true,
		},
		{
			name:        "negative count",
			history:     StarHistory{{Date: date("2020-01-01"), Count: -1}},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.history.Validate()
			if tc.expectError {
				assert.ErrorIs(t, err, ErrInvalidHistory)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStarHistory_AddStar(t *testing.T) {
	var h StarHistory
	h = h.AddStar(time.Date(2020, 1, 1, 8, 0, 0, 0, time.UTC))
	h = h.AddStar(time.Date(2020, 1, 1, 23, 59, 0, 0, time.UTC))
	h = h.AddStar(time.Date(2020, 1, 3, 0, 0, 1, 0, time.UTC))

	assert.Equal(t, StarHistory{
		{Date: date("2020-01-01"), Count: 2},
		{Date: date("2020-01-03"), Count: 1},
	}, h)
	assert.NoError(t, h.Validate())
	assert.Equal(t, 3, h.Total())
}

func TestStarHistory_CloneIsIndependent(t *testing.T) {
	h := sampleHistory()
	c := h.Clone()
	c[0].Count = 99

	assert.Equal(t, 5, h[0].Count)
	assert.Nil(t, StarHistory(nil).Clone())
}

func TestRepoStats_FullName(t *testing.T) {
	assert.Equal(t, "octo/hello", RepoStats{Owner: "octo", Name: "hello"}.FullName())
}
