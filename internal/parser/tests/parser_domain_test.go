package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		sql                string
		wantName           string
		wantBaseType       string
		wantNotNull        bool
		wantDefault        string
		wantConstraintName string
		wantCheckClause    string
	}{
		{
			name:         "plain domain",
			sql:          `CREATE DOMAIN money_amount AS NUMERIC(12, 2);`,
			wantName:     "money_amount",
			wantBaseType: "numeric(12, 2)",
		},
		{
			name:            "domain with unnamed check",
			sql:             `CREATE DOMAIN email AS TEXT CHECK (VALUE LIKE '%@%');`,
			wantName:        "email",
			wantBaseType:    "text",
			wantCheckClause: "VALUE LIKE '%@%'",
		},
		{
			name: "domain with named constraint",
			sql: `CREATE DOMAIN positive_int AS INTEGER
				CONSTRAINT positive_int_check CHECK (VALUE > 0);`,
			wantName:           "positive_int",
			wantBaseType:       "integer",
			wantConstraintName: "positive_int_check",
			wantCheckClause:    "VALUE > 0",
		},
		{
			name:         "domain with default and not null",
			sql:          `CREATE DOMAIN status AS TEXT DEFAULT 'active' NOT NULL;`,
			wantName:     "status",
			wantBaseType: "text",
			wantNotNull:  true,
			wantDefault:  "'active'",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := parseSQL(t, tt.sql)

			require.Len(t, db.Domains, 1)
			domain := db.Domains[0]

			assert.Equal(t, tt.wantName, domain.Name)
			assert.Equal(t, tt.wantBaseType, domain.BaseType)
			assert.Equal(t, tt.wantNotNull, domain.NotNull)
			assert.Equal(t, tt.wantDefault, domain.Default)
			assert.Equal(t, tt.wantCheckClause, domain.CheckClause)

			if tt.wantConstraintName != "" {
				assert.Equal(t, tt.wantConstraintName, domain.ConstraintName)
			}
		})
	}
}

func TestParseCreateDomainSchemaQualified(t *testing.T) {
	t.Parallel()

	db := parseSQL(t, `CREATE DOMAIN app.tenant_id AS UUID NOT NULL;`)

	require.Len(t, db.Domains, 1)
	assert.Equal(t, "app", db.Domains[0].Schema)
	assert.Equal(t, "tenant_id", db.Domains[0].Name)

	require.NotNil(t, db.GetDomain("app", "tenant_id"))
}
