package data

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"portfolio-doctor/internal/model"
)

// ParseMarketCSV reads rows of "year, price, dividend, cpi, rate" (the Shiller
// column order). Lines may end in \n, \r\n or a bare \r; blank lines are
// skipped. With hasHeader the first line is discarded.
func ParseMarketCSV(r io.Reader, hasHeader bool) (model.MarketSeries, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if hasHeader && len(records) > 0 {
		records = records[1:]
	}
	return parseRecords(records, hasHeader)
}

// LoadMarketCSV loads a CSV file, detecting whether it starts with a header.
func LoadMarketCSV(path string) (model.MarketSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseDetectHeader(f)
}

func parseDetectHeader(r io.Reader) (model.MarketSeries, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	header := false
	if len(records) > 0 && len(records[0]) > 0 {
		if _, err := strconv.Atoi(strings.TrimSpace(records[0][0])); err != nil {
			header = true
			records = records[1:]
		}
	}
	return parseRecords(records, header)
}

func readRecords(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	raw = bytes.ReplaceAll(raw, []byte("\r"), []byte("\n"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read market csv: %w", err)
	}
	return records, nil
}

func parseRecords(records [][]string, headerSkipped bool) (model.MarketSeries, error) {
	out := make(model.MarketSeries, 0, len(records))
	for i, rec := range records {
		line := i + 1
		if headerSkipped {
			line++
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("line %d: expected 5 columns, got %d", line, len(rec))
		}
		year, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, rec[0])
		}
		vals := make([]float64, 4)
		for j := range vals {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid number %q in column %d", line, rec[j+1], j+2)
			}
			vals[j] = v
		}
		out = append(out, model.MarketYear{
			Year:                year,
			EquitiesPrice:       vals[0],
			EquitiesDividend:    vals[1],
			InflationIndex:      vals[2],
			FixedIncomeInterest: vals[3],
		})
	}
	return out, nil
}
