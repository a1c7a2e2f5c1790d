package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS client_storage (
	client_id  UUID        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (client_id, key)
)`

// pgRepo stores buckets in the client_storage table. Writes are
// last-write-wins per (client_id, key).
type pgRepo struct{ pool *pgxpool.Pool }

func NewPostgres(pool *pgxpool.Pool) Repo { return &pgRepo{pool: pool} }

// EnsureSchema creates the storage table when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *pgRepo) Get(ctx context.Context, clientID uuid.UUID, key string) (string, error) {
	slog.DebugContext(ctx, "Get", "client_id", clientID.String(), "key", key)
	var v string
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM client_storage WHERE client_id = $1 AND key = $2`,
		toPgUUID(clientID), key,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "Get failed", "err", err)
		return "", err
	}
	return v, nil
}

func (p *pgRepo) Set(ctx context.Context, clientID uuid.UUID, key, value string) error {
	slog.DebugContext(ctx, "Set", "client_id", clientID.String(), "key", key, "bytes", len(value))
	_, err := p.pool.Exec(ctx, `
		INSERT INTO client_storage (client_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		toPgUUID(clientID), key, value,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Set failed", "err", err)
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (p *pgRepo) Remove(ctx context.Context, clientID uuid.UUID, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	slog.DebugContext(ctx, "Remove", "client_id", clientID.String(), "keys", keys)
	_, err := p.pool.Exec(ctx,
		`DELETE FROM client_storage WHERE client_id = $1 AND key = ANY($2)`,
		toPgUUID(clientID), keys,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Remove failed", "err", err)
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// toPgUUID converts a google/uuid.UUID into a pgtype.UUID for queries.
func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
