package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kkahadze/mkhedruli-megruli/internal/translation"
)

const schema = `
CREATE TABLE IF NOT EXISTS translation_cache (
	hash            TEXT PRIMARY KEY,
	prompt          TEXT NOT NULL,
	model           TEXT NOT NULL,
	target_language TEXT NOT NULL,
	result          JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PGStore keeps translations in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an open pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Connect opens and pings a pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the cache table if needed.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create translation_cache: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, hash string) (translation.Result, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT result FROM translation_cache WHERE hash = $1`, hash).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return translation.Result{}, ErrNotFound
	}
	if err != nil {
		return translation.Result{}, fmt.Errorf("query translation_cache: %w", err)
	}

	var res translation.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return translation.Result{}, fmt.Errorf("decode cached result: %w", err)
	}
	return res, nil
}

func (s *PGStore) Upsert(ctx context.Context, e Entry) error {
	raw, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO translation_cache (hash, prompt, model, target_language, result)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (hash) DO UPDATE SET result = EXCLUDED.result`,
		e.Hash, e.Prompt, e.Model, e.TargetLanguage, raw)
	if err != nil {
		return fmt.Errorf("upsert translation_cache: %w", err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT hash, prompt, model, target_language, result FROM translation_cache`)
	if err != nil {
		return nil, fmt.Errorf("list translation_cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e   Entry
			raw []byte
		)
		if err := rows.Scan(&e.Hash, &e.Prompt, &e.Model, &e.TargetLanguage, &raw); err != nil {
			return nil, fmt.Errorf("scan translation_cache: %w", err)
		}
		if err := json.Unmarshal(raw, &e.Result); err != nil {
			return nil, fmt.Errorf("decode cached result: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
