package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultSchema = "public"
	SchemaVersion = "1.0"

	ForeignKey = "FOREIGN KEY"
	NoAction   = "NO ACTION"
)

// Database is the parsed object model a schema document canonicalizes from.
// The same model is produced by the SQL parser and the live extractor.
type Database struct {
	Version      string `json:"version"`
	DatabaseName string `json:"database_name"`
	ExtractedAt  string `json:"extracted_at,omitempty"`

	Schemas    []Schema    `json:"schemas,omitempty"`
	Extensions []Extension `json:"extensions,omitempty"`
	Types      []Type      `json:"types,omitempty"`
	Domains    []Domain    `json:"domains,omitempty"`
	Sequences  []Sequence  `json:"sequences,omitempty"`
	Tables     []Table     `json:"tables"`
	Views      []View      `json:"views,omitempty"`
	Functions  []Function  `json:"functions,omitempty"`
	Triggers   []Trigger   `json:"triggers,omitempty"`
}

type Schema struct {
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
}

func (s *Schema) QualifiedName() string {
	return s.Name
}

type Extension struct {
	Name    string `json:"name"`
	Schema  string `json:"schema,omitempty"`
	Version string `json:"version,omitempty"`
	Comment string `json:"comment,omitempty"`
}

const (
	TypeKindEnum      = "enum"
	TypeKindComposite = "composite"
)

// Type is a user-defined type: an enum with an ordered value list or a
// composite with an ordered field list.
type Type struct {
	Schema  string      `json:"schema"`
	Name    string      `json:"name"`
	Kind    string      `json:"kind"`
	Values  []string    `json:"values,omitempty"`
	Fields  []TypeField `json:"fields,omitempty"`
	Comment string      `json:"comment,omitempty"`
}

type TypeField struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Position int    `json:"position"`
}

func (t *Type) QualifiedName() string {
	return QualifiedName(t.Schema, t.Name)
}

// Domain is a constrained scalar type. An unnamed CHECK gets a generated
// name during canonicalization.
type Domain struct {
	Schema         string `json:"schema"`
	Name           string `json:"name"`
	BaseType       string `json:"base_type"`
	NotNull        bool   `json:"not_null,omitempty"`
	Default        string `json:"default,omitempty"`
	ConstraintName string `json:"constraint_name,omitempty"`
	CheckClause    string `json:"check_clause,omitempty"`
	Comment        string `json:"comment,omitempty"`
}

func (d *Domain) QualifiedName() string {
	return QualifiedName(d.Schema, d.Name)
}

// Sequence keeps the authored parameters so callers can decide what the
// canonical form preserves. The canonical rendering drops start/increment
// clauses entirely and adds an IF NOT EXISTS guard.
type Sequence struct {
	Schema        string `json:"schema"`
	Name          string `json:"name"`
	DataType      string `json:"data_type"`
	StartValue    int64  `json:"start_value,omitempty"`
	MinValue      int64  `json:"min_value,omitempty"`
	MaxValue      int64  `json:"max_value,omitempty"`
	Increment     int64  `json:"increment,omitempty"`
	CacheSize     int64  `json:"cache_size,omitempty"`
	IsCyclic      bool   `json:"is_cyclic,omitempty"`
	OwnedByTable  string `json:"owned_by_table,omitempty"`
	OwnedByColumn string `json:"owned_by_column,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

func (s *Sequence) QualifiedName() string {
	return QualifiedName(s.Schema, s.Name)
}

func (db *Database) MarshalJSON() ([]byte, error) {
	type Alias Database
	return json.MarshalIndent((*Alias)(db), "", "  ") //nolint:wrapcheck
}

func (db *Database) UnmarshalJSON(data []byte) error {
	type Alias Database
	return json.Unmarshal(data, (*Alias)(db)) //nolint:wrapcheck
}

func (db *Database) GetTable(schema, name string) *Table {
	schema = NormalizeSchemaName(schema)
	name = NormalizeIdentifier(name)

	for i := range db.Tables {
		if NormalizeSchemaName(db.Tables[i].Schema) == schema &&
			NormalizeIdentifier(db.Tables[i].Name) == name {
			return &db.Tables[i]
		}
	}

	return nil
}

func (db *Database) GetView(schema, name string) *View {
	schema = NormalizeSchemaName(schema)
	name = NormalizeIdentifier(name)

	for i := range db.Views {
		if NormalizeSchemaName(db.Views[i].Schema) == schema &&
			NormalizeIdentifier(db.Views[i].Name) == name {
			return &db.Views[i]
		}
	}

	return nil
}

func (db *Database) GetType(schema, name string) *Type {
	schema = NormalizeSchemaName(schema)
	name = NormalizeIdentifier(name)

	for i := range db.Types {
		if NormalizeSchemaName(db.Types[i].Schema) == schema &&
			NormalizeIdentifier(db.Types[i].Name) == name {
			return &db.Types[i]
		}
	}

	return nil
}

func (db *Database) GetDomain(schema, name string) *Domain {
	schema = NormalizeSchemaName(schema)
	name = NormalizeIdentifier(name)

	for i := range db.Domains {
		if NormalizeSchemaName(db.Domains[i].Schema) == schema &&
			NormalizeIdentifier(db.Domains[i].Name) == name {
			return &db.Domains[i]
		}
	}

	return nil
}

func (db *Database) GetSequence(schema, name string) *Sequence {
	schema = NormalizeSchemaName(schema)
	name = NormalizeIdentifier(name)

	for i := range db.Sequences {
		if NormalizeSchemaName(db.Sequences[i].Schema) == schema &&
			NormalizeIdentifier(db.Sequences[i].Name) == name {
			return &db.Sequences[i]
		}
	}

	return nil
}

func (db *Database) GetFunction(schema, name string, argTypes []string) *Function {
	schema = NormalizeSchemaName(schema)
	name = NormalizeIdentifier(name)

	var fallback *Function

	for i := range db.Functions {
		if NormalizeSchemaName(db.Functions[i].Schema) != schema ||
			NormalizeIdentifier(db.Functions[i].Name) != name {
			continue
		}

		if equalStringSlices(db.Functions[i].ArgumentTypes, argTypes) {
			return &db.Functions[i]
		}

		if fallback == nil {
			fallback = &db.Functions[i]
		}
	}

	// COMMENT ON FUNCTION often omits the argument list when the name is
	// unambiguous.
	if argTypes == nil {
		return fallback
	}

	return nil
}

func (db *Database) GetSchemas() int    { return len(db.Schemas) }
func (db *Database) GetExtensions() int { return len(db.Extensions) }
func (db *Database) GetTypes() int      { return len(db.Types) }
func (db *Database) GetDomains() int    { return len(db.Domains) }
func (db *Database) GetSequences() int  { return len(db.Sequences) }
func (db *Database) GetTables() int     { return len(db.Tables) }
func (db *Database) GetViews() int      { return len(db.Views) }
func (db *Database) GetFunctions() int  { return len(db.Functions) }
func (db *Database) GetTriggers() int   { return len(db.Triggers) }

// Sort orders every object list so the canonical rendering is
// deterministic regardless of authoring order.
func (db *Database) Sort() {
	sort.Slice(db.Schemas, func(i, j int) bool {
		return db.Schemas[i].Name < db.Schemas[j].Name
	})

	sort.Slice(db.Extensions, func(i, j int) bool {
		return db.Extensions[i].Name < db.Extensions[j].Name
	})

	sort.Slice(db.Types, func(i, j int) bool {
		return db.Types[i].QualifiedName() < db.Types[j].QualifiedName()
	})

	sort.Slice(db.Domains, func(i, j int) bool {
		return db.Domains[i].QualifiedName() < db.Domains[j].QualifiedName()
	})

	sort.Slice(db.Sequences, func(i, j int) bool {
		return db.Sequences[i].QualifiedName() < db.Sequences[j].QualifiedName()
	})

	sort.Slice(db.Tables, func(i, j int) bool {
		return db.Tables[i].QualifiedName() < db.Tables[j].QualifiedName()
	})

	for i := range db.Tables {
		db.Tables[i].Sort()
	}

	sort.Slice(db.Views, func(i, j int) bool {
		return db.Views[i].QualifiedName() < db.Views[j].QualifiedName()
	})

	sort.Slice(db.Functions, func(i, j int) bool {
		return db.Functions[i].Signature() < db.Functions[j].Signature()
	})

	sort.Slice(db.Triggers, func(i, j int) bool {
		if db.Triggers[i].TableName != db.Triggers[j].TableName {
			return db.Triggers[i].TableName < db.Triggers[j].TableName
		}

		return db.Triggers[i].Name < db.Triggers[j].Name
	})
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func NormalizeIdentifier(identifier string) string {
	identifier = strings.Trim(identifier, `"`)
	return strings.ToLower(identifier)
}

func NormalizeSchemaName(schema string) string {
	if schema == "" {
		return DefaultSchema
	}

	return NormalizeIdentifier(schema)
}

func QualifiedName(schema, name string) string {
	if schema == "" {
		schema = DefaultSchema
	}

	if name == "" {
		return schema
	}

	return fmt.Sprintf("%s.%s", schema, name)
}
