package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/resolvd-ai/resolvd/internal/domain"
)

// PostgresStore is the pgvector-backed VectorStore. Entries live in
// knowledge_entries keyed by (partition, version, entry_id); the
// partitions table records which version is searchable. Search joins on
// the active version, and Activate flips it and prunes older versions
// in a single transaction, so readers see either the fully-old or
// fully-new partition content.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore over the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ActiveVersion(ctx context.Context, partition string) (int64, error) {
	var version int64
	err := s.pool.QueryRow(ctx,
		`SELECT active_version FROM partitions WHERE name = $1`,
		partition,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, storeErr(err)
	}
	return version, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, partition string, version int64, entries []domain.KnowledgeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	for _, e := range entries {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO knowledge_entries
				(partition, version, entry_id, category, status_key, source_text, response_text, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (partition, version, entry_id) DO UPDATE SET
				category = EXCLUDED.category,
				status_key = EXCLUDED.status_key,
				source_text = EXCLUDED.source_text,
				response_text = EXCLUDED.response_text,
				embedding = EXCLUDED.embedding,
				created_at = EXCLUDED.created_at`,
			partition,
			version,
			e.EntryID,
			e.Category,
			string(e.StatusKey),
			e.SourceText,
			e.ResponseText,
			pgvector.NewVector(e.Embedding),
			createdAt,
		)
		if err != nil {
			return storeErr(err)
		}
	}
	return nil
}

func (s *PostgresStore) Activate(ctx context.Context, partition string, version int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO partitions (name, active_version, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET
			active_version = EXCLUDED.active_version,
			updated_at = now()`,
		partition, version,
	)
	if err != nil {
		return storeErr(err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM knowledge_entries WHERE partition = $1 AND version <> $2`,
		partition, version,
	)
	if err != nil {
		return storeErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *PostgresStore) Discard(ctx context.Context, partition string, version int64) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM knowledge_entries e
		 WHERE e.partition = $1 AND e.version = $2
		   AND NOT EXISTS (
			SELECT 1 FROM partitions p WHERE p.name = $1 AND p.active_version = $2
		 )`,
		partition, version,
	)
	return storeErr(err)
}

func (s *PostgresStore) Contains(ctx context.Context, partition, entryID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1
			FROM knowledge_entries e
			JOIN partitions p ON p.name = e.partition AND p.active_version = e.version
			WHERE e.partition = $1 AND e.entry_id = $2
		 )`,
		partition, entryID,
	).Scan(&exists)
	if err != nil {
		return false, storeErr(err)
	}
	return exists, nil
}

func (s *PostgresStore) Search(ctx context.Context, partition string, vector []float32, topK int) ([]domain.ScoredEntry, error) {
	vec := pgvector.NewVector(vector)

	// <=> is cosine distance; entries and queries are unit vectors, so
	// 1 - distance equals the dot-product similarity in [-1, 1].
	rows, err := s.pool.Query(ctx,
		`SELECT e.entry_id, e.category, e.status_key, e.source_text, e.response_text,
		        e.embedding, e.version, e.created_at,
		        1 - (e.embedding <=> $2) AS score
		 FROM knowledge_entries e
		 JOIN partitions p ON p.name = e.partition AND p.active_version = e.version
		 WHERE e.partition = $1
		 ORDER BY score DESC, e.entry_id ASC
		 LIMIT $3`,
		partition, vec, topK,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	results := make([]domain.ScoredEntry, 0, topK)
	for rows.Next() {
		var (
			scored    domain.ScoredEntry
			statusKey string
			emb       pgvector.Vector
		)
		if err := rows.Scan(
			&scored.Entry.EntryID,
			&scored.Entry.Category,
			&statusKey,
			&scored.Entry.SourceText,
			&scored.Entry.ResponseText,
			&emb,
			&scored.Entry.Version,
			&scored.Entry.CreatedAt,
			&scored.Score,
		); err != nil {
			return nil, storeErr(err)
		}
		scored.Entry.StatusKey = domain.StatusKey(statusKey)
		scored.Entry.Embedding = emb.Slice()
		results = append(results, scored)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return results, nil
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
}
