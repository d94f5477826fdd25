package features

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"github.com/tidwall/gjson"
	"io"
	"strings"
)

// Schema is the ordered list of feature names a classifier expects.
type Schema []string

// Index returns the position of each name in the schema.
func (s Schema) Index() map[string]int {
	out := make(map[string]int, len(s))
	for i, n := range s {
		out[n] = i
	}
	return out
}

// Formats accepted by ReadSchema.
const (
	FormatAuto  = ""
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatLines = "lines"
)

// labelColumn is the training table's target column, never a feature.
const labelColumn = "Label"

// sniffSize bounds how much of a schema is inspected to guess its format.
const sniffSize = 64 << 10

// ReadSchema reads a feature schema.
//
// FormatCSV takes the header row of the training feature table, dropping the Label column;
// the rows are never read. FormatJSON takes an array of names. FormatLines takes one name per line.
// FormatAuto picks JSON for a leading '[', CSV when the first line holds a comma,
// and lines otherwise.
func ReadSchema(r io.Reader, format string) (Schema, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	if bom, _ := br.Peek(3); bytes.Equal(bom, []byte("\ufeff")) {
		_, _ = br.Discard(3)
	}
	if format == FormatAuto {
		head, err := br.Peek(sniffSize)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, err
		}
		format = sniff(head)
	}
	var names []string
	var err error
	switch format {
	case FormatJSON:
		names, err = schemaJSON(br)
	case FormatCSV:
		names, err = schemaCSV(br)
	case FormatLines:
		names, err = schemaLines(br)
	default:
		return nil, fmt.Errorf("%w: unknown schema format %q", ErrConfiguration, format)
	}
	if err != nil {
		return nil, err
	}
	return newSchema(names)
}

// FormatFromPath guesses a schema format from a file name.
func FormatFromPath(path string) string {
	path = strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch {
	case strings.HasSuffix(path, ".csv"):
		return FormatCSV
	case strings.HasSuffix(path, ".json"):
		return FormatJSON
	case strings.HasSuffix(path, ".txt"):
		return FormatLines
	}
	return FormatAuto
}

func sniff(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return FormatJSON
	}
	first, _, _ := bytes.Cut(trimmed, []byte("\n"))
	if bytes.ContainsRune(first, ',') {
		return FormatCSV
	}
	return FormatLines
}

func schemaJSON(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: schema is not valid JSON", ErrConfiguration)
	}
	res := gjson.ParseBytes(data)
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: JSON schema must be an array of names", ErrConfiguration)
	}
	var names []string
	for _, el := range res.Array() {
		if el.Type != gjson.String {
			return nil, fmt.Errorf("%w: JSON schema entry %s is not a string", ErrConfiguration, el.Raw)
		}
		names = append(names, el.String())
	}
	return names, nil
}

// schemaCSV reads only the header row.
func schemaCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading schema header: %v", ErrConfiguration, err)
	}
	names := make([]string, 0, len(header))
	for _, n := range header {
		if strings.TrimSpace(n) != labelColumn {
			names = append(names, n)
		}
	}
	return names, nil
}

func schemaLines(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		names = append(names, sc.Text())
	}
	return names, sc.Err()
}

func newSchema(names []string) (Schema, error) {
	seen := make(map[string]bool, len(names))
	out := make(Schema, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: duplicate feature %q", ErrConfiguration, n)
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, ErrNoSchema
	}
	return out, nil
}
