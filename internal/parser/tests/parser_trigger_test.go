package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		sql            string
		wantName       string
		wantTable      string
		wantTiming     string
		wantEvents     []string
		wantForEachRow bool
		wantWhen       string
		wantFunction   string
	}{
		{
			name: "before update row trigger",
			sql: `CREATE TRIGGER set_updated_at
				BEFORE UPDATE ON users
				FOR EACH ROW
				EXECUTE FUNCTION touch_updated_at();`,
			wantName:       "set_updated_at",
			wantTable:      "users",
			wantTiming:     "BEFORE",
			wantEvents:     []string{"UPDATE"},
			wantForEachRow: true,
			wantFunction:   "touch_updated_at",
		},
		{
			name: "after insert or delete statement trigger",
			sql: `CREATE TRIGGER audit_changes
				AFTER INSERT OR DELETE ON accounts
				FOR EACH STATEMENT
				EXECUTE PROCEDURE record_audit();`,
			wantName:     "audit_changes",
			wantTable:    "accounts",
			wantTiming:   "AFTER",
			wantEvents:   []string{"INSERT", "DELETE"},
			wantFunction: "record_audit",
		},
		{
			name: "conditional trigger",
			sql: `CREATE TRIGGER notify_large
				AFTER INSERT ON orders
				FOR EACH ROW
				WHEN (NEW.total > 1000)
				EXECUTE FUNCTION notify_sales();`,
			wantName:       "notify_large",
			wantTable:      "orders",
			wantTiming:     "AFTER",
			wantEvents:     []string{"INSERT"},
			wantForEachRow: true,
			wantWhen:       "NEW.total > 1000",
			wantFunction:   "notify_sales",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := parseSQL(t, tt.sql)

			require.Len(t, db.Triggers, 1)
			trigger := db.Triggers[0]

			assert.Equal(t, tt.wantName, trigger.Name)
			assert.Equal(t, tt.wantTable, trigger.TableName)
			assert.Equal(t, tt.wantTiming, trigger.Timing)
			assert.Equal(t, tt.wantEvents, trigger.Events)
			assert.Equal(t, tt.wantForEachRow, trigger.ForEachRow)
			assert.Equal(t, tt.wantWhen, trigger.WhenCondition)
			assert.Equal(t, tt.wantFunction, trigger.FunctionName)
		})
	}
}

func TestParseTriggerFunctionArguments(t *testing.T) {
	t.Parallel()

	db := parseSQL(t, `CREATE TRIGGER log_insert
		AFTER INSERT ON users
		FOR EACH ROW
		EXECUTE FUNCTION log_change('audit', 'row');`)

	require.Len(t, db.Triggers, 1)
	trigger := db.Triggers[0]

	assert.Equal(t, "log_change", trigger.FunctionName)
	assert.Equal(t, []string{"'audit'", "'row'"}, trigger.Arguments)
}

func TestParseTriggerWithoutFunctionArguments(t *testing.T) {
	t.Parallel()

	db := parseSQL(t, `CREATE TRIGGER set_updated_at
		BEFORE UPDATE ON users
		FOR EACH ROW
		EXECUTE FUNCTION touch_updated_at();`)

	require.Len(t, db.Triggers, 1)
	assert.Empty(t, db.Triggers[0].Arguments)
}
