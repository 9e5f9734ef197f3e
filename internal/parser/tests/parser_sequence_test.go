package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateSequence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		sql           string
		wantName      string
		wantDataType  string
		wantStart     int64
		wantIncrement int64
		wantMin       int64
		wantMax       int64
		wantCache     int64
		wantCyclic    bool
	}{
		{
			name:          "bare sequence",
			sql:           `CREATE SEQUENCE order_seq;`,
			wantName:      "order_seq",
			wantDataType:  "bigint",
			wantIncrement: 1,
		},
		{
			name:          "start with clause",
			sql:           `CREATE SEQUENCE global_id_seq START WITH 1000;`,
			wantName:      "global_id_seq",
			wantDataType:  "bigint",
			wantStart:     1000,
			wantIncrement: 1,
		},
		{
			name:          "start without WITH keyword",
			sql:           `CREATE SEQUENCE s START 42;`,
			wantName:      "s",
			wantDataType:  "bigint",
			wantStart:     42,
			wantIncrement: 1,
		},
		{
			name: "full parameter list",
			sql: `CREATE SEQUENCE IF NOT EXISTS counter_seq
				AS integer
				START WITH 10
				INCREMENT BY 5
				MINVALUE 1
				MAXVALUE 100000
				CACHE 20
				CYCLE;`,
			wantName:      "counter_seq",
			wantDataType:  "integer",
			wantStart:     10,
			wantIncrement: 5,
			wantMin:       1,
			wantMax:       100000,
			wantCache:     20,
			wantCyclic:    true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := parseSQL(t, tt.sql)

			require.Len(t, db.Sequences, 1)
			seq := db.Sequences[0]

			assert.Equal(t, tt.wantName, seq.Name)
			assert.Equal(t, tt.wantDataType, seq.DataType)
			assert.Equal(t, tt.wantStart, seq.StartValue)
			assert.Equal(t, tt.wantIncrement, seq.Increment)
			assert.Equal(t, tt.wantMin, seq.MinValue)
			assert.Equal(t, tt.wantMax, seq.MaxValue)
			assert.Equal(t, tt.wantCache, seq.CacheSize)
			assert.Equal(t, tt.wantCyclic, seq.IsCyclic)
		})
	}
}

func TestParseCreateSequenceOwnedBy(t *testing.T) {
	t.Parallel()

	sql := `CREATE SEQUENCE users_id_seq OWNED BY users.id;`

	db := parseSQL(t, sql)

	require.Len(t, db.Sequences, 1)
	seq := db.Sequences[0]
	assert.Equal(t, "users", seq.OwnedByTable)
	assert.Equal(t, "id", seq.OwnedByColumn)
}

func TestParseAlterSequenceOwnedBy(t *testing.T) {
	t.Parallel()

	sql := `CREATE SEQUENCE users_id_seq;
ALTER SEQUENCE users_id_seq OWNED BY users.id;`

	db := parseSQL(t, sql)

	require.Len(t, db.Sequences, 1)
	seq := db.Sequences[0]
	assert.Equal(t, "users", seq.OwnedByTable)
	assert.Equal(t, "id", seq.OwnedByColumn)
}

func TestParseCreateSequenceReplacesDuplicate(t *testing.T) {
	t.Parallel()

	sql := `CREATE SEQUENCE s START WITH 1;
CREATE SEQUENCE s START WITH 99;`

	db := parseSQL(t, sql)

	require.Len(t, db.Sequences, 1)
	assert.EqualValues(t, 99, db.Sequences[0].StartValue)
}
