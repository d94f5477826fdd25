package imu

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadCSV reads a recorded session: a header row naming columns, then one sample per row.
// Columns that are not channel names (timestamps, labels) are ignored.
// Channel columns absent from the header leave that channel absent on every sample.
// Blank cells are missing values (NaN).
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty csv", ErrMalformedInput)
		}
		return nil, err
	}
	columns := make(map[int]Channel)
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if c, ok := ChannelFromName(name); ok {
			columns[i] = c
		}
	}

	var samples []Sample
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return samples, err
		}
		s := Sample{}
		for i, c := range columns {
			if i >= len(record) {
				s.Set(c, math.NaN())
				continue
			}
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				s.Set(c, math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return samples, fmt.Errorf("%w: line %d column %s: %v", ErrMalformedInput, line, c, err)
			}
			s.Set(c, v)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// WriteCSV writes samples, the inverse of ReadCSV. The header names only the
// channels present on some sample, all nine when there are no samples.
// Missing values, and channels a sample lacks, are written as blank cells.
func WriteCSV(w io.Writer, samples []Sample) error {
	var columns []Channel
	for _, c := range Channels {
		for _, s := range samples {
			if s.Has(c) {
				columns = append(columns, c)
				break
			}
		}
	}
	if len(samples) == 0 {
		columns = Channels
	}

	cw := csv.NewWriter(w)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.String()
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for _, s := range samples {
		for i, c := range columns {
			if !s.Has(c) || s.IsMissing(c) {
				row[i] = ""
				continue
			}
			row[i] = strconv.FormatFloat(s.Get(c), 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
