package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgschema/pgcanon/internal/parser"
	"github.com/pgschema/pgcanon/internal/schema"
)

const indexTableSetup = `CREATE TABLE events (
	id BIGINT NOT NULL,
	user_id BIGINT NOT NULL,
	kind TEXT NOT NULL,
	payload JSONB,
	created_at TIMESTAMPTZ NOT NULL
);`

func TestParseCreateIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sql         string
		wantName    string
		wantColumns []string
		wantType    string
		wantUnique  bool
		wantWhere   string
		wantInclude []string
	}{
		{
			name:        "simple btree index",
			sql:         `CREATE INDEX idx_events_user ON events (user_id);`,
			wantName:    "idx_events_user",
			wantColumns: []string{"user_id"},
			wantType:    schema.IndexTypeBTree,
		},
		{
			name:        "unique index",
			sql:         `CREATE UNIQUE INDEX idx_events_id ON events (id);`,
			wantName:    "idx_events_id",
			wantColumns: []string{"id"},
			wantType:    schema.IndexTypeBTree,
			wantUnique:  true,
		},
		{
			name:        "gin index on jsonb",
			sql:         `CREATE INDEX idx_events_payload ON events USING GIN (payload);`,
			wantName:    "idx_events_payload",
			wantColumns: []string{"payload"},
			wantType:    schema.IndexTypeGIN,
		},
		{
			name:        "partial index",
			sql:         `CREATE INDEX idx_recent ON events (created_at) WHERE kind = 'login';`,
			wantName:    "idx_recent",
			wantColumns: []string{"created_at"},
			wantType:    schema.IndexTypeBTree,
			wantWhere:   "kind = 'login'",
		},
		{
			name:        "covering index",
			sql:         `CREATE INDEX idx_user_kind ON events (user_id) INCLUDE (kind, created_at);`,
			wantName:    "idx_user_kind",
			wantColumns: []string{"user_id"},
			wantType:    schema.IndexTypeBTree,
			wantInclude: []string{"kind", "created_at"},
		},
		{
			name:        "multi-column with ordering",
			sql:         `CREATE INDEX idx_user_time ON events (user_id, created_at DESC);`,
			wantName:    "idx_user_time",
			wantColumns: []string{"user_id", "created_at DESC"},
			wantType:    schema.IndexTypeBTree,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := parseSQLWithSetup(t, indexTableSetup, tt.sql)
			table := requireSingleTable(t, db)

			idx := table.GetIndex(tt.wantName)
			require.NotNil(t, idx, "index %s not found", tt.wantName)

			assert.Equal(t, tt.wantColumns, idx.Columns)
			assert.Equal(t, tt.wantType, idx.Type)
			assert.Equal(t, tt.wantUnique, idx.IsUnique)
			assert.Equal(t, tt.wantWhere, idx.Where)

			if tt.wantInclude != nil {
				assert.Equal(t, tt.wantInclude, idx.IncludeColumns)
			}
		})
	}
}

func TestParseIndexForMissingTableWarns(t *testing.T) {
	t.Parallel()

	p := parser.New()
	db := &schema.Database{}

	err := p.ParseSQL(`CREATE INDEX idx_orphan ON missing (id);`, db)
	require.NoError(t, err)
	require.NotEmpty(t, p.GetWarnings())
}
