package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/resolvd-ai/resolvd/internal/domain"
	"github.com/resolvd-ai/resolvd/internal/index"
)

// Row is one knowledge-base row before embedding: the status key it
// belongs under, the text that gets vectorized, and the canned response
// returned on a match.
type Row struct {
	StatusKey    domain.StatusKey
	SourceText   string
	ResponseText string
}

// Source yields the knowledge-base rows for one category.
type Source interface {
	Rows(ctx context.Context, category string) ([]Row, error)
}

// CSVDirSource reads knowledge rows from a directory holding one CSV
// file per category, named after the sanitized category.
// Expected header: status_key, source_text, response_text.
type CSVDirSource struct {
	dir string
}

// NewCSVDirSource creates a source over the given directory.
func NewCSVDirSource(dir string) *CSVDirSource {
	return &CSVDirSource{dir: dir}
}

// Rows loads the category's CSV file.
func (s *CSVDirSource) Rows(_ context.Context, category string) ([]Row, error) {
	path := filepath.Join(s.dir, index.SanitizeName(category)+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge file for category %s: %w", category, err)
	}
	defer f.Close()

	rows, err := ParseRows(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse knowledge file %s: %w", path, err)
	}
	return rows, nil
}

// ParseRows parses knowledge rows from CSV data with a header row.
// Header names are matched case-insensitively.
func ParseRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	col := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}

	statusIdx := col("status_key")
	sourceIdx := col("source_text")
	responseIdx := col("response_text")
	if statusIdx < 0 || sourceIdx < 0 || responseIdx < 0 {
		return nil, fmt.Errorf("header must contain status_key, source_text and response_text")
	}

	field := func(fields []string, idx int) string {
		if idx < len(fields) {
			return fields[idx]
		}
		return ""
	}

	var rows []Row
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, Row{
			StatusKey:    domain.StatusKey(strings.TrimSpace(field(fields, statusIdx))),
			SourceText:   field(fields, sourceIdx),
			ResponseText: field(fields, responseIdx),
		})
	}
	return rows, nil
}
