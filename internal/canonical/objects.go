package canonical

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pgschema/pgcanon/internal/parser"
	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
)

const sqlIndent = "  "

func (r *Renderer) renderSchemas(sb *strings.Builder, db *schema.Database) {
	for _, s := range sortedBySchemaName(db.Schemas,
		func(s schema.Schema) string { return "" },
		func(s schema.Schema) string { return s.Name },
	) {
		if s.Name == schema.DefaultSchema || !r.includeSchema(s.Name) {
			continue
		}

		r.header(sb, s.Name, "SCHEMA", "-", "")
		fmt.Fprintf(sb, "CREATE SCHEMA %s%s;\n", r.ifNotExists(), QuoteIdentifier(s.Name))
		r.comment(sb, "SCHEMA "+QuoteIdentifier(s.Name), s.Comment)
	}
}

func (r *Renderer) renderExtensions(sb *strings.Builder, db *schema.Database) {
	for _, ext := range sortedBySchemaName(db.Extensions,
		func(e schema.Extension) string { return e.Schema },
		func(e schema.Extension) string { return e.Name },
	) {
		r.header(sb, ext.Name, "EXTENSION", "-", "")

		fmt.Fprintf(sb, "CREATE EXTENSION %s%s", r.ifNotExists(), QuoteIdentifier(ext.Name))

		if ext.Schema != "" {
			fmt.Fprintf(sb, " WITH SCHEMA %s", QuoteIdentifier(ext.Schema))
		}

		sb.WriteString(";\n")
		r.comment(sb, "EXTENSION "+QuoteIdentifier(ext.Name), ext.Comment)
	}
}

func (r *Renderer) renderTypes(sb *strings.Builder, db *schema.Database) {
	for _, typ := range sortedBySchemaName(db.Types,
		func(t schema.Type) string { return t.Schema },
		func(t schema.Type) string { return t.Name },
	) {
		if !r.includeSchema(typ.Schema) {
			continue
		}

		r.header(sb, typ.Name, "TYPE", typ.Schema, "")

		name := RelName(typ.Schema, typ.Name)

		switch typ.Kind {
		case schema.TypeKindEnum:
			fmt.Fprintf(sb, "CREATE TYPE %s AS ENUM (\n", name)

			for i, value := range typ.Values {
				sb.WriteString(sqlIndent)
				sb.WriteString(formatSQLStringLiteral(value))

				if i < len(typ.Values)-1 {
					sb.WriteString(",")
				}

				sb.WriteString("\n")
			}

			sb.WriteString(");\n")

		case schema.TypeKindComposite:
			fmt.Fprintf(sb, "CREATE TYPE %s AS (\n", name)

			for i, field := range typ.Fields {
				fmt.Fprintf(sb, "%s%s %s", sqlIndent, QuoteIdentifier(field.Name),
					schema.CanonicalTypeName(field.DataType))

				if i < len(typ.Fields)-1 {
					sb.WriteString(",")
				}

				sb.WriteString("\n")
			}

			sb.WriteString(");\n")
		}

		r.comment(sb, "TYPE "+name, typ.Comment)
	}
}

func (r *Renderer) renderDomains(sb *strings.Builder, db *schema.Database) {
	for _, domain := range sortedBySchemaName(db.Domains,
		func(d schema.Domain) string { return d.Schema },
		func(d schema.Domain) string { return d.Name },
	) {
		if !r.includeSchema(domain.Schema) {
			continue
		}

		r.header(sb, domain.Name, "DOMAIN", domain.Schema, "")

		name := RelName(domain.Schema, domain.Name)

		fmt.Fprintf(sb, "CREATE DOMAIN %s AS %s", name,
			schema.CanonicalTypeName(domain.BaseType))

		if domain.Default != "" {
			fmt.Fprintf(sb, " DEFAULT %s", domain.Default)
		}

		if domain.NotNull {
			sb.WriteString(" NOT NULL")
		}

		if domain.CheckClause != "" {
			constraintName := domain.ConstraintName
			if constraintName == "" {
				constraintName = truncateIdentifier(domain.Name + "_check")
			}

			fmt.Fprintf(sb, "\n%sCONSTRAINT %s CHECK (%s)",
				sqlIndent, QuoteIdentifier(constraintName), domain.CheckClause)
		}

		sb.WriteString(";\n")
		r.comment(sb, "DOMAIN "+name, domain.Comment)
	}
}

// renderSequences declares every sequence without its numeric parameters.
// Start, increment and cache are runtime state rather than structure, so
// the canonical form keeps only the name and an optional data type.
func (r *Renderer) renderSequences(sb *strings.Builder, db *schema.Database) {
	for _, seq := range sortedBySchemaName(db.Sequences,
		func(s schema.Sequence) string { return s.Schema },
		func(s schema.Sequence) string { return s.Name },
	) {
		if !r.includeSchema(seq.Schema) {
			continue
		}

		r.header(sb, seq.Name, "SEQUENCE", seq.Schema, "")
		fmt.Fprintf(sb, "CREATE SEQUENCE %s%s;\n", r.ifNotExists(), RelName(seq.Schema, seq.Name))
		r.comment(sb, "SEQUENCE "+RelName(seq.Schema, seq.Name), seq.Comment)
	}
}

func (r *Renderer) renderSequenceOwnership(sb *strings.Builder, db *schema.Database) {
	for _, seq := range sortedBySchemaName(db.Sequences,
		func(s schema.Sequence) string { return s.Schema },
		func(s schema.Sequence) string { return s.Name },
	) {
		if !r.includeSchema(seq.Schema) || seq.OwnedByTable == "" || seq.OwnedByColumn == "" {
			continue
		}

		fmt.Fprintf(sb, "\nALTER SEQUENCE %s OWNED BY %s.%s;\n",
			RelName(seq.Schema, seq.Name),
			RelName(seq.Schema, seq.OwnedByTable),
			QuoteIdentifier(seq.OwnedByColumn))
	}
}

func (r *Renderer) renderTables(sb *strings.Builder, tables []*schema.Table) {
	for _, table := range tables {
		r.header(sb, table.Name, "TABLE", table.Schema, table.Owner)

		fmt.Fprintf(sb, "CREATE TABLE %s%s (\n", r.ifNotExists(), RelName(table.Schema, table.Name))

		for i, col := range table.Columns {
			sb.WriteString(sqlIndent)
			sb.WriteString(formatColumn(&col))

			if i < len(table.Columns)-1 {
				sb.WriteString(",")
			}

			sb.WriteString("\n")
		}

		sb.WriteString(");\n")

		r.comment(sb, "TABLE "+RelName(table.Schema, table.Name), table.Comment)

		for _, col := range table.Columns {
			r.comment(sb, fmt.Sprintf("COLUMN %s.%s",
				RelName(table.Schema, table.Name), QuoteIdentifier(col.Name)), col.Comment)
		}
	}
}

func formatColumn(col *schema.Column) string {
	parts := []string{QuoteIdentifier(col.Name), col.FullDataType()}

	if col.Default != "" {
		parts = append(parts, "DEFAULT", col.Default)
	}

	if !col.IsNullable {
		parts = append(parts, "NOT NULL")
	}

	return strings.Join(parts, " ")
}

// renderConstraints emits every table constraint as a separate ALTER so
// creation order never depends on constraint targets. Foreign keys come
// after all other constraints, matching the dump convention.
func (r *Renderer) renderConstraints(sb *strings.Builder, tables []*schema.Table) {
	for _, table := range tables {
		for i := range table.Constraints {
			constraint := &table.Constraints[i]
			if constraint.Type == schema.ConstraintForeignKey {
				continue
			}

			r.renderConstraint(sb, table, constraint)
		}
	}

	for _, table := range tables {
		for i := range table.Constraints {
			constraint := &table.Constraints[i]
			if constraint.Type != schema.ConstraintForeignKey {
				continue
			}

			r.renderConstraint(sb, table, constraint)
		}
	}
}

func (r *Renderer) renderConstraint(
	sb *strings.Builder,
	table *schema.Table,
	constraint *schema.Constraint,
) {
	def := formatConstraintBody(constraint)
	if def == "" {
		return
	}

	r.header(sb, fmt.Sprintf("%s %s", table.Name, constraint.Name),
		"CONSTRAINT", table.Schema, table.Owner)

	fmt.Fprintf(sb, "ALTER TABLE ONLY %s\n%sADD CONSTRAINT %s %s;\n",
		RelName(table.Schema, table.Name), sqlIndent,
		QuoteIdentifier(constraint.Name), def)
}

func formatConstraintBody(c *schema.Constraint) string { //nolint:cyclop
	var parts []string

	switch c.Type {
	case schema.ConstraintPrimaryKey:
		if len(c.Columns) == 0 {
			return ""
		}

		parts = append(parts, "PRIMARY KEY", "("+quoteColumns(c.Columns)+")")

	case schema.ConstraintUnique:
		if len(c.Columns) == 0 {
			return ""
		}

		parts = append(parts, "UNIQUE", "("+quoteColumns(c.Columns)+")")

	case schema.ConstraintCheck:
		def := strings.TrimSpace(c.Definition)
		if def == "" {
			return ""
		}

		if !strings.HasPrefix(strings.ToUpper(def), "CHECK") {
			def = "CHECK " + def
		}

		parts = append(parts, parser.NormalizeSQL(def))

	case schema.ConstraintForeignKey:
		if len(c.Columns) == 0 || c.ReferencedTable == "" {
			return ""
		}

		parts = append(parts, "FOREIGN KEY", "("+quoteColumns(c.Columns)+")",
			"REFERENCES", RelName(c.ReferencedSchema, c.ReferencedTable))

		if len(c.ReferencedColumns) > 0 {
			parts = append(parts, "("+quoteColumns(c.ReferencedColumns)+")")
		}

		if c.OnDelete != "" && c.OnDelete != schema.NoAction {
			parts = append(parts, "ON DELETE", c.OnDelete)
		}

		if c.OnUpdate != "" && c.OnUpdate != schema.NoAction {
			parts = append(parts, "ON UPDATE", c.OnUpdate)
		}

	case schema.ConstraintExclude:
		if strings.TrimSpace(c.Definition) == "" {
			return ""
		}

		parts = append(parts, "EXCLUDE", c.Definition)

	default:
		return strings.TrimSpace(c.Definition)
	}

	if c.IsDeferrable {
		parts = append(parts, "DEFERRABLE")

		if c.InitiallyDeferred {
			parts = append(parts, "INITIALLY DEFERRED")
		}
	}

	return strings.Join(parts, " ")
}

// renderIndexes skips constraint-backed indexes; those already exist via
// the ADD CONSTRAINT statements.
func (r *Renderer) renderIndexes(sb *strings.Builder, tables []*schema.Table) {
	for _, table := range tables {
		backed := make(map[string]bool, len(table.Constraints))
		for _, constraint := range table.Constraints {
			backed[constraint.Name] = true
		}

		for i := range table.Indexes {
			idx := &table.Indexes[i]
			if backed[idx.Name] || idx.IsPrimary {
				continue
			}

			r.header(sb, idx.Name, "INDEX", table.Schema, table.Owner)
			sb.WriteString(formatIndex(idx, r.opts.Guards))
			sb.WriteString(";\n")
			r.comment(sb, "INDEX "+RelName(idx.Schema, idx.Name), idx.Comment)
		}
	}
}

func formatIndex(idx *schema.Index, guard bool) string {
	var parts []string

	if idx.IsUnique {
		parts = append(parts, "CREATE UNIQUE INDEX")
	} else {
		parts = append(parts, "CREATE INDEX")
	}

	if guard {
		parts = append(parts, "IF NOT EXISTS")
	}

	indexType := idx.Type
	if indexType == "" {
		indexType = schema.IndexTypeBTree
	}

	parts = append(parts, QuoteIdentifier(idx.Name),
		"ON", RelName(idx.Schema, idx.TableName),
		"USING", indexType,
		"("+quoteColumns(idx.Columns)+")")

	if len(idx.IncludeColumns) > 0 {
		parts = append(parts, "INCLUDE", "("+quoteColumns(idx.IncludeColumns)+")")
	}

	if idx.Where != "" {
		parts = append(parts, "WHERE", "("+idx.Where+")")
	}

	return strings.Join(parts, " ")
}

func (r *Renderer) renderFunctions(sb *strings.Builder, db *schema.Database) error {
	for _, fn := range sortedBySchemaName(db.Functions,
		func(f schema.Function) string { return f.Schema },
		func(f schema.Function) string { return f.Name },
	) {
		if !r.includeSchema(fn.Schema) {
			continue
		}

		sql, err := formatRoutine(&fn)
		if err != nil {
			return util.WrapError("rendering function "+fn.QualifiedName(), err)
		}

		r.header(sb, fn.Signature(), fn.ObjectKind(), fn.Schema, fn.Owner)
		sb.WriteString(sql)

		target := fmt.Sprintf("%s %s(%s)", fn.ObjectKind(),
			RelName(fn.Schema, fn.Name), strings.Join(fn.ArgumentTypes, ", "))
		r.comment(sb, target, fn.Comment)
	}

	return nil
}

func formatRoutine(f *schema.Function) (string, error) {
	if f.Name == "" {
		return "", errors.New("routine name cannot be empty")
	}

	if strings.TrimSpace(f.Language) == "" {
		return "", fmt.Errorf("routine %s has no language", f.Name)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "CREATE OR REPLACE %s %s(%s)\n",
		f.ObjectKind(), RelName(f.Schema, f.Name), f.ArgumentList())

	if !f.IsProcedure {
		returnType := f.ReturnType
		if returnType == "" {
			returnType = "void"
		}

		fmt.Fprintf(&sb, "%sRETURNS %s\n", sqlIndent, returnType)
	}

	fmt.Fprintf(&sb, "%sLANGUAGE %s", sqlIndent, f.Language)

	if !f.IsProcedure {
		if f.Volatility != "" && f.Volatility != schema.VolatilityVolatile {
			sb.WriteString(" " + f.Volatility)
		}

		if f.IsStrict {
			sb.WriteString(" STRICT")
		}
	}

	if f.IsSecurityDefiner {
		sb.WriteString(" SECURITY DEFINER")
	}

	sb.WriteString("\nAS $$\n")

	body := strings.TrimSpace(f.Body)
	if body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}

	sb.WriteString("$$;\n")

	return sb.String(), nil
}

// renderViews re-renders each body from its normalized form so authoring
// whitespace and comments never reach the canonical document.
func (r *Renderer) renderViews(sb *strings.Builder, db *schema.Database) {
	for _, view := range sortedBySchemaName(db.Views,
		func(v schema.View) string { return v.Schema },
		func(v schema.View) string { return v.Name },
	) {
		if !r.includeSchema(view.Schema) {
			continue
		}

		r.header(sb, view.Name, "VIEW", view.Schema, view.Owner)

		body := parser.NormalizeSQL(view.Definition)

		fmt.Fprintf(sb, "CREATE OR REPLACE VIEW %s AS\n%s%s",
			RelName(view.Schema, view.Name), sqlIndent, body)

		if view.CheckOption != "" {
			fmt.Fprintf(sb, "\n%sWITH %s CHECK OPTION", sqlIndent, view.CheckOption)
		}

		sb.WriteString(";\n")
		r.comment(sb, "VIEW "+RelName(view.Schema, view.Name), view.Comment)
	}
}

func (r *Renderer) renderTriggers(sb *strings.Builder, db *schema.Database) {
	for _, trigger := range sortedBySchemaName(db.Triggers,
		func(t schema.Trigger) string { return t.Schema },
		func(t schema.Trigger) string { return t.Name },
	) {
		if !r.includeSchema(trigger.Schema) {
			continue
		}

		r.header(sb, fmt.Sprintf("%s %s", trigger.TableName, trigger.Name),
			"TRIGGER", trigger.Schema, "")

		fmt.Fprintf(sb, "CREATE TRIGGER %s\n%s%s %s ON %s\n%s",
			QuoteIdentifier(trigger.Name),
			sqlIndent, trigger.Timing, strings.Join(trigger.Events, " OR "),
			RelName(trigger.Schema, trigger.TableName),
			sqlIndent)

		if trigger.ForEachRow {
			sb.WriteString("FOR EACH ROW")
		} else {
			sb.WriteString("FOR EACH STATEMENT")
		}

		if trigger.WhenCondition != "" {
			fmt.Fprintf(sb, "\n%sWHEN (%s)", sqlIndent, trigger.WhenCondition)
		}

		fmt.Fprintf(sb, "\n%sEXECUTE FUNCTION %s(%s);\n",
			sqlIndent,
			RelName(trigger.FunctionSchema, trigger.FunctionName),
			strings.Join(trigger.Arguments, ", "))

		r.comment(sb, fmt.Sprintf("TRIGGER %s ON %s",
			QuoteIdentifier(trigger.Name),
			RelName(trigger.Schema, trigger.TableName)), trigger.Comment)
	}
}

func (r *Renderer) renderRowSecurity(sb *strings.Builder, tables []*schema.Table) {
	for _, table := range tables {
		if !table.RLSEnabled {
			continue
		}

		r.header(sb, table.Name, "ROW SECURITY", table.Schema, table.Owner)
		fmt.Fprintf(sb, "ALTER TABLE %s ENABLE ROW LEVEL SECURITY;\n",
			RelName(table.Schema, table.Name))
	}

	for _, table := range tables {
		for i := range table.Policies {
			policy := &table.Policies[i]

			r.header(sb, fmt.Sprintf("%s %s", table.Name, policy.Name),
				"POLICY", table.Schema, table.Owner)

			sb.WriteString(formatPolicy(policy))
			sb.WriteString(";\n")

			r.comment(sb, fmt.Sprintf("POLICY %s ON %s",
				QuoteIdentifier(policy.Name),
				RelName(policy.Schema, policy.TableName)), policy.Comment)
		}
	}
}

func formatPolicy(policy *schema.Policy) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "CREATE POLICY %s ON %s",
		QuoteIdentifier(policy.Name), RelName(policy.Schema, policy.TableName))

	if !policy.Permissive {
		sb.WriteString(" AS RESTRICTIVE")
	}

	if policy.Command != "" && policy.Command != "ALL" {
		sb.WriteString(" FOR " + policy.Command)
	}

	if len(policy.Roles) > 0 {
		sb.WriteString(" TO " + strings.Join(policy.Roles, ", "))
	}

	if policy.Using != "" {
		fmt.Fprintf(&sb, " USING (%s)", policy.Using)
	}

	if policy.WithCheck != "" {
		fmt.Fprintf(&sb, " WITH CHECK (%s)", policy.WithCheck)
	}

	return sb.String()
}

// truncateIdentifier applies the server's 63-byte identifier limit.
func truncateIdentifier(name string) string {
	if len(name) > 63 {
		return name[:63]
	}

	return name
}
