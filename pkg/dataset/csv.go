package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding selects how raw CSV bytes are decoded.
type Encoding string

const (
	// EncodingAuto uses UTF-8 when the input is valid UTF-8 and Latin-1 otherwise.
	EncodingAuto Encoding = "auto"
	// EncodingUTF8 requires valid UTF-8 input.
	EncodingUTF8 Encoding = "utf-8"
	// EncodingLatin1 decodes every byte as ISO-8859-1.
	EncodingLatin1 Encoding = "latin1"
)

// DefaultNAValues are the cell values read as missing, following the
// conventions of common dataframe tooling.
var DefaultNAValues = []string{
	"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan", "null", "NULL",
	"None", "#N/A", "#NA", "<NA>", "#N/A N/A", "1.#IND", "1.#QNAN",
}

// ReadOption configures CSV parsing.
type ReadOption func(*readConfig)

type readConfig struct {
	encoding Encoding
	na       map[string]struct{}
	comma    rune
	noHeader bool
}

// WithEncoding sets the input encoding. Default: EncodingAuto.
func WithEncoding(e Encoding) ReadOption {
	return func(c *readConfig) { c.encoding = e }
}

// WithNAValues replaces the set of values treated as missing.
func WithNAValues(values ...string) ReadOption {
	return func(c *readConfig) {
		c.na = make(map[string]struct{}, len(values))
		for _, v := range values {
			c.na[v] = struct{}{}
		}
	}
}

// WithoutHeader treats the first row as data. Columns are named "0", "1", ...
func WithoutHeader() ReadOption {
	return func(c *readConfig) { c.noHeader = true }
}

// WithComma sets the field delimiter. Default: ','.
func WithComma(r rune) ReadOption {
	return func(c *readConfig) { c.comma = r }
}

func newReadConfig(opts []ReadOption) *readConfig {
	cfg := &readConfig{
		encoding: EncodingAuto,
		comma:    ',',
	}
	WithNAValues(DefaultNAValues...)(cfg)
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ReadCSV reads a CSV file whose first row is the header.
func ReadCSV(path string, opts ...ReadOption) (*Frame, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI reads user-specified dataset
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", path, ErrDataSource, err)
	}
	f, err := parseBytes(data, newReadConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseCSV reads CSV from r whose first row is the header.
func ParseCSV(r io.Reader, opts ...ReadOption) (*Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w: %w", ErrDataSource, err)
	}
	return parseBytes(data, newReadConfig(opts))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decode(data []byte, enc Encoding) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	switch enc {
	case EncodingUTF8:
		if !utf8.Valid(data) {
			return nil, errors.New("input is not valid utf-8")
		}
		return data, nil
	case EncodingLatin1:
		return charmap.ISO8859_1.NewDecoder().Bytes(data)
	case EncodingAuto, "":
		if utf8.Valid(data) {
			return data, nil
		}
		return charmap.ISO8859_1.NewDecoder().Bytes(data)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
}

func parseBytes(data []byte, cfg *readConfig) (*Frame, error) {
	text, err := decode(data, cfg.encoding)
	if err != nil {
		return nil, fmt.Errorf("decode: %w: %w", ErrDataSource, err)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = cfg.comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row: %w", ErrDataSource)
	}
	if err != nil {
		return nil, fmt.Errorf("parse header: %w: %w", ErrDataSource, err)
	}

	names := headerNames(header)
	cols := make([][]*string, len(names))
	if cfg.noHeader {
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
		appendRecord(cols, header, cfg.na)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w: %w", ErrDataSource, err)
		}
		appendRecord(cols, record, cfg.na)
	}

	for i := range cols {
		if cols[i] == nil {
			cols[i] = []*string{}
		}
	}
	return New(names, cols)
}

// appendRecord adds one row to cols. Short records are padded with nulls
// and extra fields are dropped.
func appendRecord(cols [][]*string, record []string, na map[string]struct{}) {
	for i := range cols {
		var cell *string
		if i < len(record) {
			if _, missing := na[record[i]]; !missing {
				cell = Str(record[i])
			}
		}
		cols[i] = append(cols[i], cell)
	}
}

// headerNames fills blank names and de-duplicates repeated ones
// ("a", "a" becomes "a", "a.1").
func headerNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int, len(header))
	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for used[name] {
			suffix[h]++
			name = h + "." + strconv.Itoa(suffix[h])
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// WriteCSV writes the frame with a header row. Missing cells are written
// as empty fields, the same as empty strings, so an empty value reads back
// as missing through the default NA values.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.names); err != nil {
		return err
	}

	record := make([]string, len(f.names))
	for row := 0; row < f.rows; row++ {
		for i, col := range f.cols {
			if cell := col[row]; cell != nil {
				record[i] = *cell
			} else {
				record[i] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the frame to path.
func WriteCSVFile(path string, f *Frame) (err error) {
	out, err := os.Create(path) //#nosec G304 -- CLI writes to user-specified output file
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(out, f)
}
