package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ricemill/internal/domain/store"
)

const collectionsTable = "ledger_collections"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS ledger_collections (
	name       TEXT PRIMARY KEY,
	items      JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var _ store.Backend = (*CollectionRepo)(nil)

// CollectionRepo implements store.Backend on a jsonb table.
type CollectionRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewCollectionRepo creates the repository.
func NewCollectionRepo(txm *TxManager) *CollectionRepo {
	return &CollectionRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// EnsureSchema creates the table and one row per collection, so that
// SELECT ... FOR UPDATE always has a row to lock.
func (r *CollectionRepo) EnsureSchema(ctx context.Context) error {
	q := r.txm.GetQuerier(ctx)
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create %s: %w", collectionsTable, err)
	}

	insert := r.builder.Insert(collectionsTable).Columns("name")
	for _, c := range store.Collections() {
		insert = insert.Values(string(c))
	}
	sql, args, err := insert.Suffix("ON CONFLICT (name) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build seed: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("seed %s: %w", collectionsTable, err)
	}
	return nil
}

type collectionRow struct {
	Items []byte `db:"items"`
}

// Get reads one collection. Inside a transaction the row is locked
// until commit, which serializes concurrent ledger operations.
func (r *CollectionRepo) Get(ctx context.Context, c store.Collection) ([]byte, error) {
	q := r.builder.Select("items").
		From(collectionsTable).
		Where(squirrel.Eq{"name": string(c)})
	if r.txm.GetTx(ctx) != nil {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var row collectionRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select %s: %w", c, err)
	}
	return row.Items, nil
}

// Set upserts one collection.
func (r *CollectionRepo) Set(ctx context.Context, c store.Collection, data []byte) error {
	sql, args, err := r.builder.Insert(collectionsTable).
		Columns("name", "items", "updated_at").
		Values(string(c), string(data), time.Now().UTC()).
		Suffix("ON CONFLICT (name) DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", c, err)
	}
	return nil
}

// Ping checks the pool.
func (r *CollectionRepo) Ping(ctx context.Context) error {
	return r.txm.pool.Ping(ctx)
}
