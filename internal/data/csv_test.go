package data

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"portfolio-doctor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var want2015to2018 = model.MarketSeries{
	{Year: 2015, EquitiesPrice: 2028.18, EquitiesDividend: 39.89666667, InflationIndex: 233.707, FixedIncomeInterest: 1.88},
	{Year: 2016, EquitiesPrice: 1918.6, EquitiesDividend: 43.55333333, InflationIndex: 236.916, FixedIncomeInterest: 2.09},
	{Year: 2017, EquitiesPrice: 2275.12, EquitiesDividend: 45.92666667, InflationIndex: 242.839, FixedIncomeInterest: 2.43},
	{Year: 2018, EquitiesPrice: 2789.8, EquitiesDividend: 49.28666667, InflationIndex: 247.867, FixedIncomeInterest: 2.58},
}

func TestParseMarketCSV(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		hasHeader bool
	}{
		{
			name:      "header with mixed line endings",
			input:     "Year, S&P Price , S&P Dividend , CPI ,Rate GS10\r2015,2028.18,39.89666667,233.707,1.88\n2016,1918.6,43.55333333,236.916,2.09\r\n2017,2275.12,45.92666667,242.839,2.43\r\n2018,2789.8,49.28666667,247.867,2.58",
			hasHeader: true,
		},
		{
			name:  "no header",
			input: "2015,2028.18,39.89666667,233.707,1.88\r2016,1918.6,43.55333333,236.916,2.09\n2017,2275.12,45.92666667,242.839,2.43\r\n2018,2789.8,49.28666667,247.867,2.58",
		},
		{
			name:  "trailing newline",
			input: "2015,2028.18,39.89666667,233.707,1.88\r2016,1918.6,43.55333333,236.916,2.09\n2017,2275.12,45.92666667,242.839,2.43\r\n2018,2789.8,49.28666667,247.867,2.58\r\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMarketCSV(strings.NewReader(tc.input), tc.hasHeader)
			require.NoError(t, err)
			assert.Equal(t, want2015to2018, got)
		})
	}
}

func TestParseMarketCSVErrors(t *testing.T) {
	_, err := ParseMarketCSV(strings.NewReader("2015,1,2,3\n"), false)
	assert.ErrorContains(t, err, "line 1: expected 5 columns")

	_, err = ParseMarketCSV(strings.NewReader("h,h,h,h,h\n2015,1,2,3,4\n2016,x,2,3,4\n"), true)
	assert.ErrorContains(t, err, "line 3: invalid number")

	_, err = ParseMarketCSV(strings.NewReader("year,1,2,3,4\n"), false)
	assert.ErrorContains(t, err, "invalid year")
}

func TestLoadMarketCSVDetectsHeader(t *testing.T) {
	got, err := LoadMarketCSV(filepath.Join("testdata", "shiller-2015-2018.csv"))
	require.NoError(t, err)
	assert.Equal(t, want2015to2018, got)
}

func TestLoadMarketJSON(t *testing.T) {
	got, err := LoadMarketJSON(filepath.Join("testdata", "tiny.json"))
	require.NoError(t, err)
	assert.Equal(t, want2015to2018[1:], got)
}

func TestLoadMarket(t *testing.T) {
	ctx := context.Background()

	s, err := LoadMarket(ctx, filepath.Join("testdata", "tiny.json"))
	require.NoError(t, err)
	assert.Equal(t, 2016, s.FirstYear())

	s, err = LoadMarket(ctx, filepath.Join("testdata", "shiller-2015-2018.csv"))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())

	_, err = LoadMarket(ctx, "")
	assert.ErrorIs(t, err, model.ErrInsufficientData)

	_, err = LoadMarket(ctx, filepath.Join("testdata", "missing.csv"))
	assert.Error(t, err)
}
