package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgschema/pgcanon/internal/parser"
	"github.com/pgschema/pgcanon/internal/schema"
)

const policyTableSetup = `CREATE TABLE accounts (
	id UUID PRIMARY KEY,
	tenant_id UUID NOT NULL,
	owner_name TEXT NOT NULL
);
ALTER TABLE accounts ENABLE ROW LEVEL SECURITY;`

func TestParseCreatePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		sql            string
		wantName       string
		wantCommand    string
		wantPermissive bool
		wantRoles      []string
		wantUsing      string
		wantWithCheck  string
	}{
		{
			name:           "minimal policy",
			sql:            `CREATE POLICY tenant_isolation ON accounts USING (tenant_id = current_setting('app.tenant')::uuid);`,
			wantName:       "tenant_isolation",
			wantCommand:    "ALL",
			wantPermissive: true,
			wantUsing:      "tenant_id = current_setting('app.tenant')::uuid",
		},
		{
			name: "restrictive policy with roles",
			sql: `CREATE POLICY admin_only ON accounts
				AS RESTRICTIVE
				FOR SELECT
				TO admin, auditor
				USING (true);`,
			wantName:       "admin_only",
			wantCommand:    "SELECT",
			wantPermissive: false,
			wantRoles:      []string{"admin", "auditor"},
			wantUsing:      "true",
		},
		{
			name: "insert policy with check",
			sql: `CREATE POLICY insert_own ON accounts
				FOR INSERT
				WITH CHECK (owner_name = current_user);`,
			wantName:       "insert_own",
			wantCommand:    "INSERT",
			wantPermissive: true,
			wantWithCheck:  "owner_name = current_user",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := parseSQLWithSetup(t, policyTableSetup, tt.sql)
			table := requireSingleTable(t, db)

			require.Len(t, table.Policies, 1)
			policy := table.Policies[0]

			assert.Equal(t, tt.wantName, policy.Name)
			assert.Equal(t, "accounts", policy.TableName)
			assert.Equal(t, tt.wantCommand, policy.Command)
			assert.Equal(t, tt.wantPermissive, policy.Permissive)
			assert.Equal(t, tt.wantRoles, policy.Roles)
			assert.Equal(t, tt.wantUsing, policy.Using)
			assert.Equal(t, tt.wantWithCheck, policy.WithCheck)
		})
	}
}

func TestParseCreatePolicyMissingTable(t *testing.T) {
	t.Parallel()

	p := parser.New()
	db := &schema.Database{}

	err := p.ParseSQL(`CREATE POLICY orphan ON missing USING (true);`, db)
	require.NoError(t, err, "policy errors are recorded, not returned")
	require.NotEmpty(t, p.GetErrors())
}
