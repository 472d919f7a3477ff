// Package store provides production index and cache backends for the
// message generation pipeline: pgvector, Qdrant and Chroma product
// indexes, a Redis result cache, and a MySQL result archive.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	admsg "github.com/beautyflow/admsg-sdk-go"
)

// PgvectorIndex implements admsg.ProductIndex and admsg.VectorQueryIndex
// using PostgreSQL + pgvector.
//
// Requires the pgvector extension: CREATE EXTENSION IF NOT EXISTS vector;
type PgvectorIndex struct {
	db        *sql.DB
	table     string
	dimension int
}

// PgvectorConfig configures the pgvector index.
type PgvectorConfig struct {
	Table       string // table name, default "product_vectors"
	Dimension   int    // vector dimension, default 1024 (snowflake-arctic)
	AutoMigrate bool   // create table if not exist, default true
}

// NewPgvectorIndex creates a product index backed by PostgreSQL + pgvector.
// The sql.DB must be already opened with a Postgres driver (e.g. lib/pq).
func NewPgvectorIndex(db *sql.DB, config ...PgvectorConfig) (*PgvectorIndex, error) {
	cfg := PgvectorConfig{Table: "product_vectors", Dimension: 1024, AutoMigrate: true}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Table == "" {
		cfg.Table = "product_vectors"
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1024
	}

	s := &PgvectorIndex{db: db, table: cfg.Table, dimension: cfg.Dimension}
	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			return nil, fmt.Errorf("pgvector auto-migrate failed: %w", err)
		}
	}
	return s, nil
}

func (s *PgvectorIndex) migrate() error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id        TEXT PRIMARY KEY,
		embedding vector(%d) NOT NULL,
		document  TEXT NOT NULL DEFAULT '',
		metadata  JSONB DEFAULT '{}',
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`, s.table, s.dimension)

	idx := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS idx_%s_embedding ON %s USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		s.table, s.table,
	)

	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	// Index creation may fail if not enough rows; ignore error
	s.db.Exec(idx)
	return nil
}

func (s *PgvectorIndex) Upsert(ctx context.Context, id string, embedding []float32, document string, metadata map[string]string) error {
	vecStr := float32SliceToSQL(embedding)
	metaJSON, _ := json.Marshal(metadata)

	q := fmt.Sprintf(`INSERT INTO %s (id, embedding, document, metadata)
		VALUES ($1, $2::vector, $3, $4::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			document  = EXCLUDED.document,
			metadata  = EXCLUDED.metadata`, s.table)

	_, err := s.db.ExecContext(ctx, q, id, vecStr, document, string(metaJSON))
	return err
}

func (s *PgvectorIndex) Get(ctx context.Context, ids []string) ([]admsg.IndexHit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := fmt.Sprintf("SELECT id, document, metadata FROM %s WHERE id IN (%s)",
		s.table, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []admsg.IndexHit
	for rows.Next() {
		h := admsg.IndexHit{Score: 1}
		var metaJSON string
		if err := rows.Scan(&h.ID, &h.Document, &metaJSON); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(metaJSON), &h.Metadata)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *PgvectorIndex) QueryVector(ctx context.Context, vector []float32, filter map[string]string, topK int) ([]admsg.IndexHit, error) {
	vecStr := float32SliceToSQL(vector)

	where := "1=1"
	var args []interface{}
	args = append(args, vecStr, topK)
	argIdx := 3

	for k, v := range filter {
		where += fmt.Sprintf(" AND metadata->>'%s' = $%d", k, argIdx)
		args = append(args, v)
		argIdx++
	}

	q := fmt.Sprintf(
		`SELECT id, document, metadata, 1 - (embedding <=> $1::vector) AS score
		 FROM %s WHERE %s
		 ORDER BY embedding <=> $1::vector
		 LIMIT $2`, s.table, where)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []admsg.IndexHit
	for rows.Next() {
		var h admsg.IndexHit
		var metaJSON string
		if err := rows.Scan(&h.ID, &h.Document, &metaJSON, &h.Score); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(metaJSON), &h.Metadata)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Delete removes records by id, useful when catalog rows are retired.
func (s *PgvectorIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", s.table, strings.Join(placeholders, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func float32SliceToSQL(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Compile-time interface checks.
var _ admsg.ProductIndex = (*PgvectorIndex)(nil)
var _ admsg.VectorQueryIndex = (*PgvectorIndex)(nil)
