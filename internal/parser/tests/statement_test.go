package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgschema/pgcanon/internal/parser"
)

func TestDetectStatementTypeFromTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sql      string
		expected parser.StatementType
	}{
		{
			name:     "create table",
			sql:      "CREATE TABLE public.users (id INT);",
			expected: parser.StmtCreateTable,
		},
		{
			name:     "create unique index",
			sql:      "CREATE UNIQUE INDEX idx_users_name ON users (name);",
			expected: parser.StmtCreateIndex,
		},
		{
			name:     "create view",
			sql:      "CREATE OR REPLACE VIEW v AS SELECT 1;",
			expected: parser.StmtCreateView,
		},
		{
			name:     "create domain",
			sql:      "CREATE DOMAIN email AS TEXT CHECK (VALUE LIKE '%@%');",
			expected: parser.StmtCreateDomain,
		},
		{
			name:     "create sequence",
			sql:      "CREATE SEQUENCE global_id_seq START WITH 1000;",
			expected: parser.StmtCreateSequence,
		},
		{
			name:     "create procedure",
			sql:      "CREATE OR REPLACE PROCEDURE cleanup() LANGUAGE SQL AS $$ SELECT 1 $$;",
			expected: parser.StmtCreateProcedure,
		},
		{
			name:     "create policy",
			sql:      "CREATE POLICY tenant_isolation ON accounts USING (tenant_id = current_setting('app.tenant')::uuid);",
			expected: parser.StmtCreatePolicy,
		},
		{
			name:     "alter table",
			sql:      "ALTER TABLE users ADD COLUMN age INT;",
			expected: parser.StmtAlterTable,
		},
		{
			name:     "alter sequence",
			sql:      "ALTER SEQUENCE users_id_seq OWNED BY users.id;",
			expected: parser.StmtAlterSequence,
		},
		{
			name:     "constraint trigger",
			sql:      "CREATE CONSTRAINT TRIGGER check_balance AFTER UPDATE ON accounts FOR EACH ROW EXECUTE FUNCTION verify_balance();",
			expected: parser.StmtCreateTrigger,
		},
		{
			name:     "comment",
			sql:      "COMMENT ON TABLE users IS 'accounts';",
			expected: parser.StmtComment,
		},
		{
			name:     "do block",
			sql:      "DO $$ BEGIN PERFORM 1; END $$;",
			expected: parser.StmtDoBlock,
		},
		{
			name:     "materialized view is unsupported",
			sql:      "CREATE MATERIALIZED VIEW mv AS SELECT 1;",
			expected: parser.StmtUnknown,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens, err := parser.NewLexer(tt.sql).Tokenize()
			require.NoError(t, err)

			if len(tokens) > 0 && tokens[len(tokens)-1].Type == parser.TokenEOF {
				tokens = tokens[:len(tokens)-1]
			}

			require.Equal(t, tt.expected, parser.DetectStatementType(tokens))
		})
	}
}
