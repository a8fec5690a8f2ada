package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outbound-dialer/internal/model"
)

// Pool is the subset of *pgxpool.Pool used by PostgresStore.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS uploads (
	id         TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	size       BIGINT NOT NULL,
	content    BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveUpload(ctx context.Context, filename string, content []byte) (*model.Upload, error) {
	if content == nil {
		content = []byte{}
	}
	u := &model.Upload{
		ID:        uuid.New().String(),
		Filename:  filename,
		Size:      int64(len(content)),
		CreatedAt: time.Now().UTC(),
		Content:   content,
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO uploads (id, filename, size, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Filename, u.Size, u.Content, u.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert upload")
	}
	return u, nil
}

func (s *PostgresStore) GetUpload(ctx context.Context, id string) (*model.Upload, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, filename, size, content, created_at FROM uploads WHERE id = $1`, id,
	)
	u, err := scanPgUpload(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get upload %s", id)
	}
	return u, nil
}

func (s *PostgresStore) LatestUpload(ctx context.Context) (*model.Upload, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, filename, size, content, created_at FROM uploads ORDER BY created_at DESC LIMIT 1`,
	)
	u, err := scanPgUpload(row)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest upload")
	}
	return u, nil
}

func scanPgUpload(row pgx.Row) (*model.Upload, error) {
	var u model.Upload
	if err := row.Scan(&u.ID, &u.Filename, &u.Size, &u.Content, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
