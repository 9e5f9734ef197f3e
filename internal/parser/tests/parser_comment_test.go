package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommentOnObjects(t *testing.T) {
	t.Parallel()

	setup := `CREATE SCHEMA app;
CREATE EXTENSION IF NOT EXISTS pg_trgm;
CREATE TYPE status AS ENUM ('on', 'off');
CREATE DOMAIN email AS TEXT CHECK (VALUE LIKE '%@%');
CREATE SEQUENCE order_seq;
CREATE TABLE users (
	id BIGINT PRIMARY KEY,
	email TEXT NOT NULL
);
CREATE INDEX idx_users_email ON users (email);
CREATE VIEW active AS SELECT * FROM users;
CREATE FUNCTION noop() RETURNS VOID LANGUAGE SQL AS 'SELECT';
ALTER TABLE users ENABLE ROW LEVEL SECURITY;
CREATE POLICY self_only ON users USING (id = 1);
CREATE TRIGGER touch BEFORE UPDATE ON users FOR EACH ROW EXECUTE FUNCTION noop();`

	t.Run("table and column", func(t *testing.T) {
		t.Parallel()

		db := parseSQLWithSetup(t, setup, `
COMMENT ON TABLE users IS 'accounts';
COMMENT ON COLUMN users.email IS 'login address';`)

		table := requireSingleTable(t, db)
		assert.Equal(t, "accounts", table.Comment)

		col := table.GetColumn("email")
		require.NotNil(t, col)
		assert.Equal(t, "login address", col.Comment)
	})

	t.Run("schema and extension", func(t *testing.T) {
		t.Parallel()

		db := parseSQLWithSetup(t, setup, `
COMMENT ON SCHEMA app IS 'application objects';
COMMENT ON EXTENSION pg_trgm IS 'trigram search';`)

		require.Len(t, db.Schemas, 1)
		assert.Equal(t, "application objects", db.Schemas[0].Comment)
		require.Len(t, db.Extensions, 1)
		assert.Equal(t, "trigram search", db.Extensions[0].Comment)
	})

	t.Run("type domain and sequence", func(t *testing.T) {
		t.Parallel()

		db := parseSQLWithSetup(t, setup, `
COMMENT ON TYPE status IS 'switch state';
COMMENT ON DOMAIN email IS 'validated address';
COMMENT ON SEQUENCE order_seq IS 'order numbering';`)

		require.Len(t, db.Types, 1)
		assert.Equal(t, "switch state", db.Types[0].Comment)

		domain := db.GetDomain("public", "email")
		require.NotNil(t, domain)
		assert.Equal(t, "validated address", domain.Comment)

		seq := db.GetSequence("public", "order_seq")
		require.NotNil(t, seq)
		assert.Equal(t, "order numbering", seq.Comment)
	})

	t.Run("view function index", func(t *testing.T) {
		t.Parallel()

		db := parseSQLWithSetup(t, setup, `
COMMENT ON VIEW active IS 'active accounts';
COMMENT ON FUNCTION noop() IS 'does nothing';
COMMENT ON INDEX idx_users_email IS 'login lookup';`)

		view := db.GetView("public", "active")
		require.NotNil(t, view)
		assert.Equal(t, "active accounts", view.Comment)

		fn := db.GetFunction("public", "noop", nil)
		require.NotNil(t, fn)
		assert.Equal(t, "does nothing", fn.Comment)

		table := requireSingleTable(t, db)
		idx := table.GetIndex("idx_users_email")
		require.NotNil(t, idx)
		assert.Equal(t, "login lookup", idx.Comment)
	})

	t.Run("policy and trigger", func(t *testing.T) {
		t.Parallel()

		db := parseSQLWithSetup(t, setup, `
COMMENT ON POLICY self_only ON users IS 'row ownership';
COMMENT ON TRIGGER touch ON users IS 'timestamp upkeep';`)

		table := requireSingleTable(t, db)

		policy := table.GetPolicy("self_only")
		require.NotNil(t, policy)
		assert.Equal(t, "row ownership", policy.Comment)

		require.Len(t, db.Triggers, 1)
		assert.Equal(t, "timestamp upkeep", db.Triggers[0].Comment)
	})

	t.Run("NULL clears a comment", func(t *testing.T) {
		t.Parallel()

		db := parseSQLWithSetup(t, setup, `
COMMENT ON TABLE users IS 'accounts';
COMMENT ON TABLE users IS NULL;`)

		table := requireSingleTable(t, db)
		assert.Empty(t, table.Comment)
	})
}
