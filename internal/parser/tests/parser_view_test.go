package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateView(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		sql            string
		wantName       string
		wantSchema     string
		wantDefinition string
	}{
		{
			name:           "simple view",
			sql:            `CREATE VIEW active_users AS SELECT id, name FROM users WHERE active;`,
			wantName:       "active_users",
			wantSchema:     "public",
			wantDefinition: "SELECT id, name FROM users WHERE active",
		},
		{
			name:           "or replace",
			sql:            `CREATE OR REPLACE VIEW v AS SELECT 1 AS one;`,
			wantName:       "v",
			wantSchema:     "public",
			wantDefinition: "SELECT 1 AS one",
		},
		{
			name: "schema-qualified with column list",
			sql: `CREATE VIEW reporting.user_summary (uid, total) AS
				SELECT user_id, COUNT(*) FROM events GROUP BY user_id;`,
			wantName:   "user_summary",
			wantSchema: "reporting",
		},
		{
			name: "multi-line body with comments",
			sql: `CREATE VIEW recent AS
				-- only last month
				SELECT *
				FROM events
				WHERE created_at > NOW() - INTERVAL '30 days';`,
			wantName:   "recent",
			wantSchema: "public",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := parseSQL(t, tt.sql)

			require.Len(t, db.Views, 1)
			view := db.Views[0]

			assert.Equal(t, tt.wantName, view.Name)
			assert.Equal(t, tt.wantSchema, view.Schema)

			if tt.wantDefinition != "" {
				got := strings.Join(strings.Fields(view.Definition), " ")
				assert.Equal(t, tt.wantDefinition, got)
			}
		})
	}
}

func TestParseViewCheckOption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		sql             string
		wantCheckOption string
	}{
		{
			name:            "no check option",
			sql:             `CREATE VIEW v AS SELECT * FROM t;`,
			wantCheckOption: "",
		},
		{
			name:            "bare check option defaults to cascaded",
			sql:             `CREATE VIEW v AS SELECT * FROM t WHERE x > 0 WITH CHECK OPTION;`,
			wantCheckOption: "CASCADED",
		},
		{
			name:            "local check option",
			sql:             `CREATE VIEW v AS SELECT * FROM t WHERE x > 0 WITH LOCAL CHECK OPTION;`,
			wantCheckOption: "LOCAL",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := parseSQL(t, tt.sql)

			require.Len(t, db.Views, 1)
			assert.Equal(t, tt.wantCheckOption, db.Views[0].CheckOption)

			if tt.wantCheckOption != "" {
				assert.NotContains(t, db.Views[0].Definition, "CHECK OPTION",
					"check option must not leak into the view body")
			}
		})
	}
}

func TestParseViewReplacesDuplicate(t *testing.T) {
	t.Parallel()

	sql := `CREATE VIEW v AS SELECT 1;
CREATE OR REPLACE VIEW v AS SELECT 2;`

	db := parseSQL(t, sql)

	require.Len(t, db.Views, 1)
	assert.Contains(t, db.Views[0].Definition, "2")
}
