package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outbound-dialer/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS uploads (
	id         TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	size       INTEGER NOT NULL,
	content    BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveUpload(ctx context.Context, filename string, content []byte) (*model.Upload, error) {
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, filename, size, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Filename, u.Size, u.Content, u.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert upload")
	}
	return u, nil
}

func (s *SQLiteStore) GetUpload(ctx context.Context, id string) (*model.Upload, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, size, content, created_at FROM uploads WHERE id = ?`, id,
	)
	u, err := scanUpload(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get upload %s", id)
	}
	return u, nil
}

func (s *SQLiteStore) LatestUpload(ctx context.Context) (*model.Upload, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, size, content, created_at FROM uploads ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	)
	u, err := scanUpload(row)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest upload")
	}
	return u, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanUpload(row scannable) (*model.Upload, error) {
	var u model.Upload
	if err := row.Scan(&u.ID, &u.Filename, &u.Size, &u.Content, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
