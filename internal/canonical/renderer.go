// Package canonical renders a parsed schema as a deterministic,
// dump-style SQL document. The same database model always produces the
// same bytes, so rendered output can be compared directly against
// expected fixtures.
package canonical

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pgschema/pgcanon/internal/graph"
	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
)

type Options struct {
	// Guards controls the IF NOT EXISTS clause on creatable-once objects.
	Guards bool
	// ShowOwners annotates object headers with the recorded owner instead
	// of the placeholder dash.
	ShowOwners bool
	// Schemas restricts output to the named schemas. Empty means all.
	Schemas []string
}

func DefaultOptions() Options {
	return Options{Guards: true}
}

type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render produces the canonical document for db. Objects are grouped by
// kind and emitted in dependency-safe order; tables follow their foreign
// key topology with alphabetical tiebreaks.
func (r *Renderer) Render(db *schema.Database) (string, error) {
	var sb strings.Builder

	sb.WriteString("--\n-- Canonical schema dump\n--\n")

	r.renderSchemas(&sb, db)
	r.renderExtensions(&sb, db)
	r.renderTypes(&sb, db)
	r.renderDomains(&sb, db)
	r.renderSequences(&sb, db)

	tables, err := r.orderTables(db)
	if err != nil {
		return "", err
	}

	r.renderTables(&sb, tables)
	r.renderSequenceOwnership(&sb, db)
	r.renderConstraints(&sb, tables)
	r.renderIndexes(&sb, tables)

	if err := r.renderFunctions(&sb, db); err != nil {
		return "", err
	}

	r.renderViews(&sb, db)
	r.renderTriggers(&sb, db)
	r.renderRowSecurity(&sb, tables)

	return sb.String(), nil
}

// Render is the package-level convenience with default options.
func Render(db *schema.Database) (string, error) {
	return NewRenderer(DefaultOptions()).Render(db)
}

func (r *Renderer) includeSchema(schemaName string) bool {
	if len(r.opts.Schemas) == 0 {
		return true
	}

	if schemaName == "" {
		schemaName = schema.DefaultSchema
	}

	return slices.Contains(r.opts.Schemas, schemaName)
}

func (r *Renderer) ifNotExists() string {
	if r.opts.Guards {
		return "IF NOT EXISTS "
	}

	return ""
}

func (r *Renderer) owner(owner string) string {
	if r.opts.ShowOwners && owner != "" {
		return owner
	}

	return "-"
}

// header emits the dump-style object banner.
func (r *Renderer) header(sb *strings.Builder, name, objType, schemaName, owner string) {
	if schemaName == "" {
		schemaName = "-"
	}

	fmt.Fprintf(sb, "\n--\n-- Name: %s; Type: %s; Schema: %s; Owner: %s\n--\n\n",
		name, objType, schemaName, r.owner(owner))
}

// orderTables sorts tables so referenced tables precede referencing ones.
// Self-references are ignored; mutual references are reported, since the
// constraint pass cannot repair a creation-order cycle for NOT VALID-less
// output.
func (r *Renderer) orderTables(db *schema.Database) ([]*schema.Table, error) {
	g := graph.NewDirectedGraph[string]()
	byKey := make(map[string]*schema.Table)

	for i := range db.Tables {
		table := &db.Tables[i]
		if !r.includeSchema(table.Schema) {
			continue
		}

		key := table.QualifiedName()
		byKey[key] = table

		g.AddNode(key)
	}

	for key, table := range byKey {
		for i := range table.Constraints {
			constraint := &table.Constraints[i]
			if constraint.Type != schema.ConstraintForeignKey {
				continue
			}

			refKey := schema.QualifiedName(constraint.ReferencedSchema, constraint.ReferencedTable)
			if refKey == key || !g.HasNode(refKey) {
				continue
			}

			if err := g.AddEdge(refKey, key); err != nil {
				return nil, util.WrapError("ordering tables", err)
			}
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return nil, util.WrapError("ordering tables", err)
	}

	tables := make([]*schema.Table, 0, len(order))
	for _, key := range order {
		tables = append(tables, byKey[key])
	}

	return tables, nil
}

func sortedBySchemaName[T any](items []T, schemaOf func(T) string, nameOf func(T) string) []T {
	sorted := slices.Clone(items)

	slices.SortStableFunc(sorted, func(a, b T) int {
		if c := strings.Compare(schemaOf(a), schemaOf(b)); c != 0 {
			return c
		}

		return strings.Compare(nameOf(a), nameOf(b))
	})

	return sorted
}

func (r *Renderer) comment(sb *strings.Builder, target, comment string) {
	if comment == "" {
		return
	}

	fmt.Fprintf(sb, "\nCOMMENT ON %s IS %s;\n", target, formatSQLStringLiteral(comment))
}
