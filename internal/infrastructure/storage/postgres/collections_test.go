package postgres

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionSQL(t *testing.T) {
	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	tests := []struct {
		name     string
		query    squirrel.Sqlizer
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "locked select",
			query: builder.Select("items").From(collectionsTable).
				Where(squirrel.Eq{"name": "rice_stocks"}).Suffix("FOR UPDATE"),
			wantSQL:  "SELECT items FROM ledger_collections WHERE name = $1 FOR UPDATE",
			wantArgs: []any{"rice_stocks"},
		},
		{
			name: "seed",
			query: builder.Insert(collectionsTable).Columns("name").
				Values("rice_stocks").Values("paddy_stocks").
				Suffix("ON CONFLICT (name) DO NOTHING"),
			wantSQL:  "INSERT INTO ledger_collections (name) VALUES ($1),($2) ON CONFLICT (name) DO NOTHING",
			wantArgs: []any{"rice_stocks", "paddy_stocks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.query.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
