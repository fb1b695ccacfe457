package logging

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aegroto/remotia-go/frame"
)

// CSVSerializer writes one row per record to a CSV file, one column per
// tracked key plus an optional trailing drop-reason column. It writes a
// header row on its first Process call. No third-party CSV library appears
// anywhere in the example pack; encoding/csv is the standard library's own
// equivalent of the original's csv crate (see DESIGN.md).
type CSVSerializer struct {
	writer *csv.Writer
	file   *os.File

	keys          []frame.Key
	logDropReason bool
	headerWritten bool
}

// NewCSVSerializer creates (or truncates) the file at path, creating parent
// directories as needed, and returns a CSVSerializer writing keys as
// columns.
func NewCSVSerializer(path string, keys ...frame.Key) (*CSVSerializer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: creating csv directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("logging: creating csv file: %w", err)
	}
	return &CSVSerializer{writer: csv.NewWriter(f), file: f, keys: keys}, nil
}

// WithDropReason appends a drop_reason column recording each record's error
// slot, empty when unset.
func (s *CSVSerializer) WithDropReason() *CSVSerializer {
	s.logDropReason = true
	return s
}

// Process appends one row for rec and flushes immediately, so a trace file
// is readable even if the process is killed mid-run.
func (s *CSVSerializer) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	if !s.headerWritten {
		header := make([]string, 0, len(s.keys)+1)
		for _, key := range s.keys {
			header = append(header, string(key))
		}
		if s.logDropReason {
			header = append(header, "drop_reason")
		}
		s.writer.Write(header)
		s.headerWritten = true
	}

	row := make([]string, 0, len(s.keys)+1)
	for _, key := range s.keys {
		if v, ok := rec.Get(key); ok {
			row = append(row, strconv.FormatUint(v, 10))
		} else {
			row = append(row, "")
		}
	}
	if s.logDropReason {
		if err := rec.Err(); err != nil {
			row = append(row, err.Error())
		} else {
			row = append(row, "")
		}
	}

	s.writer.Write(row)
	s.writer.Flush()

	return rec, true
}

// Close flushes and closes the underlying file.
func (s *CSVSerializer) Close() error {
	s.writer.Flush()
	return s.file.Close()
}
