package strategy

import (
	"testing"

	"portfolio-doctor/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDepositSchedule(t *testing.T) {
	s := &DepositSchedule{Deposits: []model.DepositSpec{
		{StartYearIdx: 1, EndYearIdx: 2, Amount: 10000},
		{StartYearIdx: 2, EndYearIdx: 3, Amount: 5000},
		{StartYearIdx: 5, EndYearIdx: 4, Amount: 99999},
	}}

	cases := []struct {
		year int
		real float64
	}{
		{1, 10000},
		{2, 15000},
		{3, 5000},
		{4, 0},
		{5, 0},
	}
	for _, tc := range cases {
		got := s.Decide(Context{CycleYear: tc.year, CumulativeInflation: 1.1})
		assert.InDelta(t, tc.real, got.Real, 1e-9, "year %d", tc.year)
		assert.InDelta(t, tc.real*1.1, got.Nominal, 1e-9, "year %d", tc.year)
	}
}

func TestInWindow(t *testing.T) {
	assert.True(t, inWindow(3, 3, 3))
	assert.True(t, inWindow(2, 1, 3))
	assert.False(t, inWindow(4, 1, 3))
	assert.False(t, inWindow(1, 2, 1))
}
