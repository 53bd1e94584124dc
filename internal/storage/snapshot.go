package storage

import (
	"context"
	"fmt"

	"github.com/resolvd-ai/resolvd/internal/index"
	"github.com/resolvd-ai/resolvd/internal/ingest"
)

// SnapshotSource is an ingest.Source reading knowledge-base snapshots
// from object storage: one CSV object per category under a common
// prefix, named after the sanitized category.
type SnapshotSource struct {
	client *S3Client
	prefix string
}

// NewSnapshotSource creates a SnapshotSource over the given client.
func NewSnapshotSource(client *S3Client, prefix string) *SnapshotSource {
	return &SnapshotSource{
		client: client,
		prefix: prefix,
	}
}

// ObjectKey returns the object key for a category's snapshot.
func (s *SnapshotSource) ObjectKey(category string) string {
	return s.prefix + index.SanitizeName(category) + ".csv"
}

// Rows downloads and parses the category's snapshot object.
func (s *SnapshotSource) Rows(ctx context.Context, category string) ([]ingest.Row, error) {
	key := s.ObjectKey(category)

	body, err := s.client.GetObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch knowledge snapshot for %s: %w", category, err)
	}
	defer body.Close()

	rows, err := ingest.ParseRows(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse knowledge snapshot %s: %w", key, err)
	}
	return rows, nil
}
