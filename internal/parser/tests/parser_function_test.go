package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgschema/pgcanon/internal/schema"
)

func TestParseCreateFunction(t *testing.T) {
	t.Parallel()

	sql := `CREATE OR REPLACE FUNCTION add_numbers(a INTEGER, b INTEGER)
RETURNS INTEGER
LANGUAGE SQL
IMMUTABLE
STRICT
AS $$
	SELECT a + b;
$$;`

	db := parseSQL(t, sql)

	require.Len(t, db.Functions, 1)
	fn := db.Functions[0]

	assert.Equal(t, "add_numbers", fn.Name)
	assert.Equal(t, "public", fn.Schema)
	assert.Equal(t, []string{"INTEGER", "INTEGER"}, fn.ArgumentTypes)
	assert.Equal(t, []string{"a", "b"}, fn.ArgumentNames)
	assert.Equal(t, "INTEGER", fn.ReturnType)
	assert.Equal(t, "sql", fn.Language)
	assert.Equal(t, schema.VolatilityImmutable, fn.Volatility)
	assert.True(t, fn.IsStrict)
	assert.False(t, fn.IsProcedure)
	assert.Contains(t, fn.Body, "SELECT a + b;")
}

func TestParseCreateFunctionDefaults(t *testing.T) {
	t.Parallel()

	sql := `CREATE FUNCTION touch_updated_at()
RETURNS TRIGGER
LANGUAGE plpgsql
AS $$
BEGIN
	NEW.updated_at = NOW();
	RETURN NEW;
END;
$$;`

	db := parseSQL(t, sql)

	require.Len(t, db.Functions, 1)
	fn := db.Functions[0]

	assert.Equal(t, "TRIGGER", fn.ReturnType)
	assert.Equal(t, schema.VolatilityVolatile, fn.Volatility)
	assert.Empty(t, fn.ArgumentTypes)
}

func TestParseCreateFunctionSecurityDefiner(t *testing.T) {
	t.Parallel()

	sql := `CREATE FUNCTION current_tenant()
RETURNS UUID
LANGUAGE SQL
STABLE
SECURITY DEFINER
AS $$
	SELECT current_setting('app.tenant')::uuid;
$$;`

	db := parseSQL(t, sql)

	require.Len(t, db.Functions, 1)
	fn := db.Functions[0]

	assert.Equal(t, schema.VolatilityStable, fn.Volatility)
	assert.True(t, fn.IsSecurityDefiner)
}

func TestParseCreateProcedure(t *testing.T) {
	t.Parallel()

	sql := `CREATE OR REPLACE PROCEDURE archive_events(before_date DATE)
LANGUAGE plpgsql
AS $$
BEGIN
	DELETE FROM events WHERE created_at < before_date;
END;
$$;`

	db := parseSQL(t, sql)

	require.Len(t, db.Functions, 1)
	proc := db.Functions[0]

	assert.Equal(t, "archive_events", proc.Name)
	assert.True(t, proc.IsProcedure)
	assert.Equal(t, "PROCEDURE", proc.ObjectKind())
	assert.Empty(t, proc.ReturnType, "procedures have no return type")
	assert.Empty(t, proc.Volatility, "volatility does not apply to procedures")
	assert.Equal(t, []string{"DATE"}, proc.ArgumentTypes)
}

func TestParseFunctionSingleQuoteBody(t *testing.T) {
	t.Parallel()

	sql := `CREATE FUNCTION one() RETURNS INTEGER LANGUAGE SQL AS 'SELECT 1';`

	db := parseSQL(t, sql)

	require.Len(t, db.Functions, 1)
	assert.Equal(t, "SELECT 1", db.Functions[0].Body)
}
