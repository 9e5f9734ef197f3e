package schema

import (
	"fmt"
	"sort"
	"strings"
)

type Table struct {
	Schema      string       `json:"schema"`
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	Constraints []Constraint `json:"constraints,omitempty"`
	Indexes     []Index      `json:"indexes,omitempty"`
	Policies    []Policy     `json:"policies,omitempty"`
	RLSEnabled  bool         `json:"rls_enabled,omitempty"`
	Comment     string       `json:"comment,omitempty"`
	Owner       string       `json:"owner,omitempty"`
	Tablespace  string       `json:"tablespace,omitempty"`
}

type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Position int    `json:"position"`

	IsNullable bool   `json:"is_nullable"`
	Default    string `json:"default,omitempty"`
	Comment    string `json:"comment,omitempty"`

	MaxLength *int `json:"max_length,omitempty"`
	Precision *int `json:"precision,omitempty"`
	Scale     *int `json:"scale,omitempty"`

	IsArray              bool   `json:"is_array,omitempty"`
	IsIdentity           bool   `json:"is_identity,omitempty"`
	IdentityGeneration   string `json:"identity_generation,omitempty"`
	IsGenerated          bool   `json:"is_generated,omitempty"`
	GenerationExpression string `json:"generation_expression,omitempty"`
}

const (
	ConstraintPrimaryKey = "PRIMARY KEY"
	ConstraintForeignKey = "FOREIGN KEY"
	ConstraintUnique     = "UNIQUE"
	ConstraintCheck      = "CHECK"
	ConstraintExclude    = "EXCLUDE"
)

type Constraint struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Columns    []string `json:"columns"`
	Definition string   `json:"definition,omitempty"`

	ReferencedSchema  string   `json:"referenced_schema,omitempty"`
	ReferencedTable   string   `json:"referenced_table,omitempty"`
	ReferencedColumns []string `json:"referenced_columns,omitempty"`
	OnDelete          string   `json:"on_delete,omitempty"`
	OnUpdate          string   `json:"on_update,omitempty"`

	CheckExpression string `json:"check_expression,omitempty"`
	IndexName       string `json:"index_name,omitempty"`

	IsDeferrable      bool `json:"is_deferrable,omitempty"`
	InitiallyDeferred bool `json:"initially_deferred,omitempty"`

	// Inline records that the constraint was authored inside the column
	// definition. The canonical form re-emits it as a named
	// ALTER TABLE ... ADD CONSTRAINT either way.
	Inline bool `json:"inline,omitempty"`
}

// Policy is a row-level-security policy attached to a table.
type Policy struct {
	Name       string   `json:"name"`
	TableName  string   `json:"table_name"`
	Schema     string   `json:"schema"`
	Command    string   `json:"command,omitempty"`
	Permissive bool     `json:"permissive"`
	Roles      []string `json:"roles,omitempty"`
	Using      string   `json:"using,omitempty"`
	WithCheck  string   `json:"with_check,omitempty"`
	Comment    string   `json:"comment,omitempty"`
}

func (p *Policy) QualifiedTableName() string {
	return QualifiedName(p.Schema, p.TableName)
}

func (t *Table) QualifiedName() string {
	return QualifiedName(t.Schema, t.Name)
}

func (t *Table) GetColumn(name string) *Column {
	normalizedName := NormalizeIdentifier(name)
	for i := range t.Columns {
		if NormalizeIdentifier(t.Columns[i].Name) == normalizedName {
			return &t.Columns[i]
		}
	}

	return nil
}

func (t *Table) GetConstraint(name string) *Constraint {
	normalizedName := NormalizeIdentifier(name)
	for i := range t.Constraints {
		if NormalizeIdentifier(t.Constraints[i].Name) == normalizedName {
			return &t.Constraints[i]
		}
	}

	return nil
}

func (t *Table) GetPrimaryKey() *Constraint {
	for i := range t.Constraints {
		if t.Constraints[i].Type == ConstraintPrimaryKey {
			return &t.Constraints[i]
		}
	}

	return nil
}

func (t *Table) GetIndex(name string) *Index {
	normalizedName := NormalizeIdentifier(name)
	for i := range t.Indexes {
		if NormalizeIdentifier(t.Indexes[i].Name) == normalizedName {
			return &t.Indexes[i]
		}
	}

	return nil
}

func (t *Table) GetPolicy(name string) *Policy {
	normalizedName := NormalizeIdentifier(name)
	for i := range t.Policies {
		if NormalizeIdentifier(t.Policies[i].Name) == normalizedName {
			return &t.Policies[i]
		}
	}

	return nil
}

func (t *Table) Sort() {
	sort.Slice(t.Columns, func(i, j int) bool {
		return t.Columns[i].Position < t.Columns[j].Position
	})

	constraintOrder := map[string]int{
		ConstraintPrimaryKey: 0,
		ConstraintForeignKey: 1,
		ConstraintUnique:     2,
		ConstraintCheck:      3,
		ConstraintExclude:    4,
	}

	sort.Slice(t.Constraints, func(i, j int) bool {
		orderI := constraintOrder[t.Constraints[i].Type]

		orderJ := constraintOrder[t.Constraints[j].Type]
		if orderI != orderJ {
			return orderI < orderJ
		}

		return t.Constraints[i].Name < t.Constraints[j].Name
	})

	sort.Slice(t.Indexes, func(i, j int) bool {
		return t.Indexes[i].Name < t.Indexes[j].Name
	})

	sort.Slice(t.Policies, func(i, j int) bool {
		return t.Policies[i].Name < t.Policies[j].Name
	})
}

// FullDataType renders the column type in the canonical spelling, with
// length or precision modifiers applied.
func (c *Column) FullDataType() string {
	dt := CanonicalTypeName(c.DataType)

	if c.MaxLength != nil && isCharacterType(dt) {
		dt = fmt.Sprintf("%s(%d)", dt, *c.MaxLength)
	} else if c.Precision != nil {
		if c.Scale != nil && *c.Scale > 0 {
			dt = fmt.Sprintf("%s(%d,%d)", dt, *c.Precision, *c.Scale)
		} else {
			dt = fmt.Sprintf("%s(%d)", dt, *c.Precision)
		}
	}

	if c.IsArray && !strings.HasSuffix(strings.TrimSpace(dt), "[]") {
		dt += "[]"
	}

	return dt
}

// CanonicalTypeName maps authored type spellings and pg_catalog internal
// names to the spellings a dump uses.
func CanonicalTypeName(dt string) string {
	base := strings.ToLower(strings.TrimSpace(dt))
	base = strings.TrimPrefix(base, "pg_catalog.")

	switch base {
	case "int", "int4":
		return "integer"
	case "int8":
		return "bigint"
	case "int2":
		return "smallint"
	case "serial":
		return "integer"
	case "bigserial":
		return "bigint"
	case "smallserial":
		return "smallint"
	case "float4":
		return "real"
	case "float8":
		return "double precision"
	case "bool":
		return "boolean"
	case "varchar", "character varying":
		return "character varying"
	case "char", "bpchar", "character":
		return "character"
	case "decimal":
		return "numeric"
	case "timestamptz":
		return "timestamp with time zone"
	case "timestamp":
		return "timestamp without time zone"
	case "timetz":
		return "time with time zone"
	case "time":
		return "time without time zone"
	default:
		return base
	}
}

func isCharacterType(dt string) bool {
	dt = strings.ToLower(dt)

	return strings.HasPrefix(dt, "character varying") ||
		strings.HasPrefix(dt, "character") ||
		strings.HasPrefix(dt, "varchar") ||
		strings.HasPrefix(dt, "char")
}

func (c *Column) IsPrimaryKey(table *Table) bool {
	pk := table.GetPrimaryKey()
	if pk == nil {
		return false
	}

	normalizedName := NormalizeIdentifier(c.Name)
	for _, col := range pk.Columns {
		if NormalizeIdentifier(col) == normalizedName {
			return true
		}
	}

	return false
}

func (c *Constraint) QualifiedReferencedTable() string {
	return QualifiedName(c.ReferencedSchema, c.ReferencedTable)
}

func (c *Constraint) IsPrimaryKey() bool {
	return c.Type == ConstraintPrimaryKey
}

func (c *Constraint) IsForeignKey() bool {
	return c.Type == ConstraintForeignKey
}

func (c *Constraint) IsUnique() bool {
	return c.Type == ConstraintUnique
}

func (c *Constraint) IsCheck() bool {
	return c.Type == ConstraintCheck
}
