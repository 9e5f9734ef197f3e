package canonical_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgschema/pgcanon/internal/canonical"
	"github.com/pgschema/pgcanon/internal/parser"
	"github.com/pgschema/pgcanon/internal/schema"
)

func renderSQL(t *testing.T, sql string) string {
	t.Helper()

	p := parser.New()
	db := &schema.Database{}
	require.NoError(t, p.ParseSQL(sql, db))
	require.Empty(t, p.GetErrors())

	out, err := canonical.Render(db)
	require.NoError(t, err)

	return out
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	sql := `CREATE TABLE users (id SERIAL PRIMARY KEY, email TEXT UNIQUE);
CREATE TABLE posts (id BIGSERIAL PRIMARY KEY, user_id INTEGER REFERENCES users(id));
CREATE INDEX idx_posts_user ON posts (user_id);`

	first := renderSQL(t, sql)
	second := renderSQL(t, sql)

	assert.Equal(t, first, second)
}

func TestRenderSequenceDropsParameters(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE SEQUENCE global_id_seq START WITH 1000;`)

	assert.Contains(t, out, "CREATE SEQUENCE IF NOT EXISTS global_id_seq;")
	assert.NotContains(t, out, "START")
	assert.NotContains(t, out, "1000")
}

func TestRenderSerialExpansion(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE TABLE users (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL
);`)

	assert.Contains(t, out, "CREATE SEQUENCE IF NOT EXISTS users_id_seq;")
	assert.Contains(t, out, "id integer DEFAULT nextval('users_id_seq'::regclass) NOT NULL")
	assert.Contains(t, out, "ALTER SEQUENCE users_id_seq OWNED BY users.id;")
	assert.Contains(t, out, "ADD CONSTRAINT users_pkey PRIMARY KEY (id)")
	assert.NotContains(t, out, "SERIAL", "serial shorthand must not survive canonicalization")
}

func TestRenderTableForeignKeyOrdering(t *testing.T) {
	t.Parallel()

	// authored with the dependent table first
	out := renderSQL(t, `CREATE TABLE posts (
	id BIGINT PRIMARY KEY,
	author_id BIGINT
);
CREATE TABLE authors (
	id BIGINT PRIMARY KEY
);
ALTER TABLE posts ADD CONSTRAINT posts_author_id_fkey FOREIGN KEY (author_id) REFERENCES authors(id);`)

	authorsAt := strings.Index(out, "CREATE TABLE IF NOT EXISTS authors")
	postsAt := strings.Index(out, "CREATE TABLE IF NOT EXISTS posts")

	require.Positive(t, authorsAt)
	require.Positive(t, postsAt)
	assert.Less(t, authorsAt, postsAt, "referenced table must render first")

	fkAt := strings.Index(out, "ADD CONSTRAINT posts_author_id_fkey")
	assert.Greater(t, fkAt, postsAt, "foreign keys render after all tables")
}

func TestRenderEnumOneValuePerLine(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE TYPE status AS ENUM ('pending', 'approved', 'rejected');`)

	assert.Contains(t, out, "CREATE TYPE status AS ENUM (\n  'pending',\n  'approved',\n  'rejected'\n);")
}

func TestRenderObjectHeaders(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE TABLE users (id BIGINT PRIMARY KEY);`)

	assert.Contains(t, out, "-- Name: users; Type: TABLE; Schema: public; Owner: -")
	assert.Contains(t, out, "-- Name: users users_pkey; Type: CONSTRAINT; Schema: public; Owner: -")
}

func TestRenderViewNormalizedBody(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE VIEW active AS
	select id,
	       name
	from   users
	where  active;`)

	assert.Contains(t, out, "CREATE OR REPLACE VIEW active AS")
	assert.Contains(t, out, "SELECT id, name FROM users WHERE active;")
}

func TestRenderViewCheckOption(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE VIEW positive AS SELECT * FROM t WHERE x > 0 WITH LOCAL CHECK OPTION;`)

	assert.Contains(t, out, "WITH LOCAL CHECK OPTION;")
}

func TestRenderFunctionAndProcedure(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE FUNCTION add_one(n INTEGER) RETURNS INTEGER LANGUAGE SQL IMMUTABLE AS $$ SELECT n + 1 $$;
CREATE PROCEDURE cleanup() LANGUAGE SQL AS $$ DELETE FROM logs $$;`)

	assert.Contains(t, out, "CREATE OR REPLACE FUNCTION add_one(n INTEGER)")
	assert.Contains(t, out, "RETURNS INTEGER")
	assert.Contains(t, out, "LANGUAGE sql IMMUTABLE")
	assert.Contains(t, out, "CREATE OR REPLACE PROCEDURE cleanup()")
	assert.NotContains(t, out, "cleanup()\n  RETURNS", "procedures have no RETURNS clause")
}

func TestRenderRowSecurityBeforePolicies(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE TABLE accounts (id UUID PRIMARY KEY, tenant_id UUID NOT NULL);
ALTER TABLE accounts ENABLE ROW LEVEL SECURITY;
CREATE POLICY tenant_only ON accounts USING (tenant_id = current_setting('app.tenant')::uuid);`)

	rlsAt := strings.Index(out, "ALTER TABLE accounts ENABLE ROW LEVEL SECURITY;")
	policyAt := strings.Index(out, "CREATE POLICY tenant_only ON accounts")

	require.Positive(t, rlsAt)
	require.Positive(t, policyAt)
	assert.Less(t, rlsAt, policyAt)
}

func TestRenderConstraintBackedIndexSkipped(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE TABLE users (id BIGINT PRIMARY KEY, email TEXT UNIQUE);`)

	assert.NotContains(t, out, "CREATE UNIQUE INDEX IF NOT EXISTS users_pkey")
	assert.NotContains(t, out, "CREATE UNIQUE INDEX IF NOT EXISTS users_email_key")
}

func TestRenderPlainIndexUsesBtree(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE TABLE t (a INT, b INT);
CREATE INDEX idx_t_a ON t (a);
CREATE INDEX idx_t_partial ON t (b) WHERE b > 0;`)

	assert.Contains(t, out, "CREATE INDEX IF NOT EXISTS idx_t_a ON t USING btree (a);")
	assert.Contains(t, out, "CREATE INDEX IF NOT EXISTS idx_t_partial ON t USING btree (b) WHERE (b > 0);")
}

func TestRenderGuardsDisabled(t *testing.T) {
	t.Parallel()

	p := parser.New()
	db := &schema.Database{}
	require.NoError(t, p.ParseSQL(`CREATE TABLE users (id BIGINT PRIMARY KEY);`, db))

	renderer := canonical.NewRenderer(canonical.Options{Guards: false})
	out, err := renderer.Render(db)
	require.NoError(t, err)

	assert.Contains(t, out, "CREATE TABLE users (")
	assert.NotContains(t, out, "IF NOT EXISTS")
}

func TestRenderSchemaFilter(t *testing.T) {
	t.Parallel()

	p := parser.New()
	db := &schema.Database{}
	require.NoError(t, p.ParseSQL(`CREATE SCHEMA app;
CREATE TABLE app.items (id BIGINT PRIMARY KEY);
CREATE TABLE public_stuff (id BIGINT PRIMARY KEY);`, db))

	renderer := canonical.NewRenderer(canonical.Options{Guards: true, Schemas: []string{"app"}})
	out, err := renderer.Render(db)
	require.NoError(t, err)

	assert.Contains(t, out, "app.items")
	assert.NotContains(t, out, "public_stuff")
}

func TestRenderCommentsFollowObjects(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE TABLE users (id BIGINT PRIMARY KEY, email TEXT);
COMMENT ON TABLE users IS 'accounts';
COMMENT ON COLUMN users.email IS 'login ''address''';`)

	assert.Contains(t, out, "COMMENT ON TABLE users IS 'accounts';")
	assert.Contains(t, out, "COMMENT ON COLUMN users.email IS 'login ''address''';")

	tableAt := strings.Index(out, "CREATE TABLE IF NOT EXISTS users")
	commentAt := strings.Index(out, "COMMENT ON TABLE users")
	assert.Greater(t, commentAt, tableAt)
}

func TestRenderDomainWithGeneratedConstraintName(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE DOMAIN email AS TEXT CHECK (VALUE LIKE '%@%');`)

	assert.Contains(t, out, "CREATE DOMAIN email AS text")
	assert.Contains(t, out, "CONSTRAINT email_check CHECK (VALUE LIKE '%@%')")
}

func TestRenderSchemaObjects(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE SCHEMA app;
CREATE EXTENSION IF NOT EXISTS pg_trgm WITH SCHEMA public;`)

	assert.Contains(t, out, "CREATE SCHEMA IF NOT EXISTS app;")
	assert.Contains(t, out, "CREATE EXTENSION IF NOT EXISTS pg_trgm WITH SCHEMA public;")
}

func TestRenderViewLiteralKeepsCommentMarker(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE TABLE t (id integer);
CREATE VIEW v AS SELECT 'a -- b' AS label, id FROM t;`)

	assert.Contains(t, out, "SELECT 'a -- b' AS label, id FROM t;")
}

func TestRenderTriggerFunctionArguments(t *testing.T) {
	t.Parallel()

	out := renderSQL(t, `CREATE TABLE users (id integer PRIMARY KEY);
CREATE TRIGGER log_insert
	AFTER INSERT ON users
	FOR EACH ROW
	EXECUTE FUNCTION log_change('audit', 'row');`)

	assert.Contains(t, out, "EXECUTE FUNCTION log_change('audit', 'row');")
}
