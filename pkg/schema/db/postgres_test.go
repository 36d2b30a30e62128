package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		name      string
		hasVector bool
		tables    []string
		wantErr   string
	}{
		{name: "complete", hasVector: true, tables: []string{"sources", "hadiths"}},
		{name: "no extension", hasVector: false, wantErr: "vector extension is not installed"},
		{name: "missing table", hasVector: true, tables: []string{"sources"}, wantErr: "missing tables: hadiths"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newMockDB(t)
			mock.ExpectQuery(`FROM pg_extension WHERE extname = 'vector'`).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.hasVector))
			if tt.hasVector {
				rows := sqlmock.NewRows([]string{"table_name"})
				for _, name := range tt.tables {
					rows.AddRow(name)
				}
				mock.ExpectQuery(`FROM information_schema.tables WHERE .* table_name IN \(\$1, \$2\)`).
					WithArgs("hadiths", "sources").
					WillReturnRows(rows)
			}

			err := CheckSchema(context.Background(), conn)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
