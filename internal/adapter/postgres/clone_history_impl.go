package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/cloner-service/internal/entity"
	"github.com/user/cloner-service/internal/repository"
)

const createCloneHistoryTable = `
	CREATE TABLE IF NOT EXISTS clone_history (
		id          UUID PRIMARY KEY,
		url         TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		source      TEXT NOT NULL,
		html_bytes  INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS clone_history_created_at_idx ON clone_history (created_at DESC);
`

// CloneHistoryRepoImpl provides a concrete implementation for the CloneHistoryRepository interface using PostgreSQL.
type CloneHistoryRepoImpl struct {
	db *pgxpool.Pool
}

var _ repository.CloneHistoryRepository = (*CloneHistoryRepoImpl)(nil)

// NewCloneHistoryRepo creates a new instance of CloneHistoryRepoImpl.
func NewCloneHistoryRepo(db *pgxpool.Pool) *CloneHistoryRepoImpl {
	return &CloneHistoryRepoImpl{db: db}
}

// EnsureSchema creates the clone_history table if it does not exist.
func (r *CloneHistoryRepoImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createCloneHistoryTable)
	return err
}

func (r *CloneHistoryRepoImpl) Save(ctx context.Context, record *entity.CloneRecord) error {
	query := `
		INSERT INTO clone_history (id, url, title, source, html_bytes, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.URL,
		record.Title,
		record.Source,
		record.HTMLBytes,
		record.DurationMS,
		record.CreatedAt,
	)
	return err
}

func (r *CloneHistoryRepoImpl) ListRecent(ctx context.Context, limit int) ([]*entity.CloneRecord, error) {
	query := `
		SELECT id::text, url, title, source, html_bytes, duration_ms, created_at
		FROM clone_history
		ORDER BY created_at DESC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.CloneRecord, error) {
		var rec entity.CloneRecord
		err := row.Scan(
			&rec.ID,
			&rec.URL,
			&rec.Title,
			&rec.Source,
			&rec.HTMLBytes,
			&rec.DurationMS,
			&rec.CreatedAt,
		)
		return &rec, err
	})
}

func (r *CloneHistoryRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
