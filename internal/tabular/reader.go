package tabular

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Options control how a source file is parsed.
type Options struct {
	Separator rune
	Encoding  string
}

// Reader loads delimited text files into tables of raw strings.
type Reader struct{}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses the file at path. The first line is the header. Every cell is
// kept as the exact string found in the file. A file holding only a header
// yields a table with that header and no rows.
func (r *Reader) Read(path string, opts Options) (*Table, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the configured input directory
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return r.ReadFrom(f, opts)
}

// ReadFrom parses delimited text from src.
func (r *Reader) ReadFrom(src io.Reader, opts Options) (*Table, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	sep := opts.Separator
	if sep == 0 {
		sep = ','
	}

	data, err := io.ReadAll(enc.NewDecoder().Reader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithDelimiter(sep),
		dataframe.WithLazyQuotes(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		if header, ok := headerOnly(data, sep); ok {
			return NewTable(header...), nil
		}
		return nil, df.Err
	}

	records := df.Records()
	return FromRecords(records[0], records[1:]), nil
}
