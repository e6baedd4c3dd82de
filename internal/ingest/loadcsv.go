package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"energy-core/internal/model"
)

// LoadSeriesCSV reads one input series file: a header row, then columns
// year,month,day,hour,value, one row per local-hour reading. Readings may
// be sparse, irregular, or duplicated; LoadSeriesCSV returns them as read,
// and LoadAndAlign resolves all three via AlignInterpolate (which averages
// duplicates first) before the series reaches C1.
func LoadSeriesCSV(path string) ([]SparseSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil { // header
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	var out []SparseSample
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row of %s: %w", path, err)
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("%s: expected 5 columns, got %d", path, len(rec))
		}
		s, err := parseSparseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseSparseRow(rec []string) (SparseSample, error) {
	year, err := strconv.Atoi(rec[0])
	if err != nil {
		return SparseSample{}, err
	}
	month, err := strconv.Atoi(rec[1])
	if err != nil {
		return SparseSample{}, err
	}
	day, err := strconv.Atoi(rec[2])
	if err != nil {
		return SparseSample{}, err
	}
	hour, err := strconv.Atoi(rec[3])
	if err != nil {
		return SparseSample{}, err
	}
	value, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return SparseSample{}, err
	}
	return SparseSample{Year: year, Month: month, Day: day, Hour: hour, Value: value}, nil
}

// AxisIndexOf builds the local-hour lookup AlignInterpolate needs from a
// calendar axis, keyed on each hour's local civil date/time.
func AxisIndexOf(calendar []model.HourStamp) func(y, m, d, h int) (int, bool) {
	idx := make(map[[4]int]int, len(calendar))
	for i, stamp := range calendar {
		idx[[4]int{stamp.Year, int(stamp.Month), stamp.Day, stamp.Hour}] = i
	}
	return func(y, m, d, h int) (int, bool) {
		i, ok := idx[[4]int{y, m, d, h}]
		return i, ok
	}
}

// LoadAndAlign reads one sparse series CSV and aligns it onto the calendar
// axis via piecewise-linear interpolation.
func LoadAndAlign(path string, calendar []model.HourStamp) ([]float64, error) {
	samples, err := LoadSeriesCSV(path)
	if err != nil {
		return nil, err
	}
	return AlignInterpolate(len(calendar), samples, AxisIndexOf(calendar)), nil
}
