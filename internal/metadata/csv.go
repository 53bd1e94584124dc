package metadata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVSource is a Source backed by a CSV file with a header row. The
// whole table is loaded once at construction and kept in memory, the
// way the ticket metadata export is consumed in practice: a few
// thousand rows, read-mostly, refreshed by restarting ingestion.
type CSVSource struct {
	idColumn string
	rows     map[string]Record
}

// NewCSVSource loads the CSV file at path, keying rows by idColumn
// (matched case-insensitively against the header).
func NewCSVSource(path, idColumn string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer f.Close()

	source, err := ReadCSVSource(f, idColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %s: %w", path, err)
	}
	return source, nil
}

// ReadCSVSource parses CSV metadata from a reader. Rows that repeat a
// ticket ID keep the first occurrence; rows shorter than the header are
// padded with empty fields.
func ReadCSVSource(r io.Reader, idColumn string) (*CSVSource, error) {
	if strings.TrimSpace(idColumn) == "" {
		return nil, fmt.Errorf("id column name is required")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idIdx := -1
	for i, name := range header {
		if normalizeFieldName(name) == normalizeFieldName(idColumn) {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("id column %q not found in header", idColumn)
	}

	rows := make(map[string]Record)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		if idIdx >= len(fields) {
			continue
		}
		id := strings.TrimSpace(fields[idIdx])
		if id == "" {
			continue
		}
		if _, ok := rows[id]; ok {
			continue
		}

		record := make(Record, len(header))
		for i, name := range header {
			if i < len(fields) {
				record[name] = fields[i]
			} else {
				record[name] = ""
			}
		}
		rows[id] = record
	}

	return &CSVSource{idColumn: idColumn, rows: rows}, nil
}

// Lookup returns the metadata record for a ticket ID.
func (s *CSVSource) Lookup(_ context.Context, ticketID string) (Record, bool, error) {
	record, ok := s.rows[strings.TrimSpace(ticketID)]
	return record, ok, nil
}

// Len returns the number of loaded metadata rows.
func (s *CSVSource) Len() int {
	return len(s.rows)
}
