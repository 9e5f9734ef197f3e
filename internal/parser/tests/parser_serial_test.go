package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialTypeNullability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		sql            string
		columnName     string
		wantDataType   string
		wantIsNullable bool
	}{
		{
			name: "SERIAL is NOT NULL",
			sql: `CREATE TABLE counters (
				id SERIAL PRIMARY KEY,
				value INTEGER
			);`,
			columnName:   "id",
			wantDataType: "integer",
		},
		{
			name: "BIGSERIAL is NOT NULL",
			sql: `CREATE TABLE events (
				id BIGSERIAL,
				event_type TEXT NOT NULL
			);`,
			columnName:   "id",
			wantDataType: "bigint",
		},
		{
			name: "SMALLSERIAL is NOT NULL",
			sql: `CREATE TABLE lookup_codes (
				id SMALLSERIAL,
				code TEXT NOT NULL
			);`,
			columnName:   "id",
			wantDataType: "smallint",
		},
		{
			name: "SERIAL with explicit NOT NULL (redundant but valid)",
			sql: `CREATE TABLE items (
				id SERIAL NOT NULL,
				name TEXT
			);`,
			columnName:   "id",
			wantDataType: "integer",
		},
		{
			name: "lowercase serial",
			sql: `CREATE TABLE metrics (
				id serial,
				metric_name TEXT
			);`,
			columnName:   "id",
			wantDataType: "integer",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := parseSQL(t, tt.sql)
			table := requireSingleTable(t, db)

			col := table.GetColumn(tt.columnName)
			require.NotNil(t, col, "column %s not found", tt.columnName)

			assert.Equal(t, tt.wantDataType, col.DataType,
				"column %s DataType mismatch", tt.columnName)
			assert.Equal(t, tt.wantIsNullable, col.IsNullable,
				"column %s IsNullable mismatch", tt.columnName)
		})
	}
}

func TestSerialNextvalDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sql         string
		columnName  string
		wantDefault string
	}{
		{
			name: "SERIAL gets implicit sequence default",
			sql: `CREATE TABLE items (
				id SERIAL PRIMARY KEY
			);`,
			columnName:  "id",
			wantDefault: "nextval('items_id_seq'::regclass)",
		},
		{
			name: "BIGSERIAL gets implicit sequence default",
			sql: `CREATE TABLE events (
				event_id BIGSERIAL
			);`,
			columnName:  "event_id",
			wantDefault: "nextval('events_event_id_seq'::regclass)",
		},
		{
			name: "non-public schema prefixes the sequence",
			sql: `CREATE TABLE app.items (
				id SERIAL PRIMARY KEY
			);`,
			columnName:  "id",
			wantDefault: "nextval('app.items_id_seq'::regclass)",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := parseSQL(t, tt.sql)
			table := requireSingleTable(t, db)

			col := table.GetColumn(tt.columnName)
			require.NotNil(t, col, "column %s not found", tt.columnName)

			assert.Equal(t, tt.wantDefault, col.Default)
		})
	}
}

func TestSerialRegistersImplicitSequence(t *testing.T) {
	t.Parallel()

	sql := `CREATE TABLE orders (
		id BIGSERIAL PRIMARY KEY,
		total NUMERIC(12, 2)
	);`

	db := parseSQL(t, sql)

	require.Len(t, db.Sequences, 1)

	seq := db.Sequences[0]
	assert.Equal(t, "orders_id_seq", seq.Name)
	assert.Equal(t, "bigint", seq.DataType)
	assert.Equal(t, "orders", seq.OwnedByTable)
	assert.Equal(t, "id", seq.OwnedByColumn)
	assert.EqualValues(t, 1, seq.Increment)
}

func TestSerialDoesNotShadowExplicitSequence(t *testing.T) {
	t.Parallel()

	sql := `CREATE SEQUENCE users_id_seq START WITH 500;

CREATE TABLE users (
	id INTEGER DEFAULT nextval('users_id_seq'::regclass),
	name TEXT
);`

	db := parseSQL(t, sql)

	require.Len(t, db.Sequences, 1, "explicit sequence must not be duplicated")
	assert.EqualValues(t, 500, db.Sequences[0].StartValue)
}

func TestSerialVsRegularIntegerNullability(t *testing.T) {
	t.Parallel()

	sql := `CREATE TABLE comparison (
		serial_col SERIAL,
		bigserial_col BIGSERIAL,
		smallserial_col SMALLSERIAL,
		integer_col INTEGER,
		bigint_col BIGINT,
		integer_not_null INTEGER NOT NULL
	);`

	db := parseSQL(t, sql)
	table := requireSingleTable(t, db)

	tests := []struct {
		columnName     string
		wantDataType   string
		wantIsNullable bool
	}{
		{"serial_col", "integer", false},
		{"bigserial_col", "bigint", false},
		{"smallserial_col", "smallint", false},
		{"integer_col", "integer", true},
		{"bigint_col", "bigint", true},
		{"integer_not_null", "integer", false},
	}

	for _, tt := range tests {
		tt := tt
		col := table.GetColumn(tt.columnName)
		require.NotNil(t, col, "column %s not found", tt.columnName)

		assert.Equal(t, tt.wantDataType, col.DataType,
			"column %s DataType mismatch", tt.columnName)
		assert.Equal(t, tt.wantIsNullable, col.IsNullable,
			"column %s IsNullable mismatch", tt.columnName)
	}
}

func TestSerialWithSchemaQualification(t *testing.T) {
	t.Parallel()

	sql := `CREATE TABLE public.orders (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		total_amount NUMERIC(12, 2)
	);`

	db := parseSQL(t, sql)
	table := requireSingleTable(t, db)

	assert.Equal(t, "orders", table.Name)
	assert.Equal(t, "public", table.Schema)

	idCol := table.GetColumn("id")
	require.NotNil(t, idCol)
	assert.Equal(t, "bigint", idCol.DataType)
	assert.False(t, idCol.IsNullable, "BIGSERIAL column should be NOT NULL")
}
