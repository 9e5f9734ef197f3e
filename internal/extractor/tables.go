package extractor

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
)

func (e *Extractor) extractTables(ctx context.Context) ([]schema.Table, error) {
	query := e.queries.tablesQuery()

	var tables []schema.Table

	err := e.queryHelper.FetchAll(ctx, query, func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var table schema.Table

		if err := rows.Scan(
			&table.Schema,
			&table.Name,
			scanner.String("comment"),
			scanner.String("owner"),
			scanner.String("tablespace"),
			&table.RLSEnabled,
		); err != nil {
			return util.WrapError("scan table", err)
		}

		table.Comment = scanner.GetString("comment")
		table.Owner = scanner.GetString("owner")
		table.Tablespace = scanner.GetString("tablespace")

		tables = append(tables, table)

		return nil
	})
	if err != nil {
		return nil, util.WrapError("fetch tables", err)
	}

	for i := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck
		}

		if err := e.enrichTable(ctx, &tables[i]); err != nil {
			return nil, err
		}
	}

	return tables, nil
}

func (e *Extractor) enrichTable(ctx context.Context, table *schema.Table) error {
	enrichers := []func(context.Context, *schema.Table) error{
		e.extractColumns,
		e.extractConstraints,
		e.extractIndexes,
		e.extractPolicies,
	}

	for _, enrich := range enrichers {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck
		}

		if err := enrich(ctx, table); err != nil {
			return util.WrapError("enrich table "+table.QualifiedName(), err)
		}
	}

	table.Sort()

	return nil
}

func (e *Extractor) extractColumns(ctx context.Context, table *schema.Table) error {
	var columns []schema.Column

	err := e.queryHelper.FetchAll(ctx, queryColumns, func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var col schema.Column

		if err := rows.Scan(
			&col.Name,
			&col.DataType,
			&col.IsNullable,
			scanner.String("default"),
			scanner.String("comment"),
			&col.Position,
			scanner.Int32("charMaxLength"),
			scanner.Int32("numericPrecision"),
			scanner.Int32("numericScale"),
			scanner.String("udtName"),
			&col.IsIdentity,
			scanner.String("identityGen"),
			&col.IsGenerated,
			scanner.String("generationExpr"),
		); err != nil {
			return util.WrapError("scan column", err)
		}

		col.Default = scanner.GetString("default")
		col.Comment = scanner.GetString("comment")
		col.IdentityGeneration = scanner.GetString("identityGen")
		col.GenerationExpression = scanner.GetString("generationExpr")

		if maxLength := scanner.GetInt("charMaxLength"); maxLength != nil {
			col.MaxLength = maxLength
		}

		if precision := scanner.GetInt("numericPrecision"); precision != nil &&
			isNumericType(col.DataType) {
			col.Precision = precision
		}

		if scale := scanner.GetInt("numericScale"); scale != nil && isNumericType(col.DataType) {
			col.Scale = scale
		}

		udtName := scanner.GetString("udtName")

		switch {
		case col.DataType == "ARRAY" || strings.HasPrefix(udtName, "_"):
			col.IsArray = true

			if elementType := strings.TrimPrefix(udtName, "_"); elementType != "" {
				col.DataType = schema.CanonicalTypeName(elementType)
			}
		case col.DataType == "USER-DEFINED" && udtName != "":
			// enum, domain, or composite column: keep the declared name
			col.DataType = udtName
		}

		col.DataType = strings.ToLower(col.DataType)

		columns = append(columns, col)

		return nil
	}, table.Schema, table.Name)
	if err != nil {
		return util.WrapError("fetch columns", err)
	}

	table.Columns = columns

	return nil
}

func (e *Extractor) extractConstraints(ctx context.Context, table *schema.Table) error {
	var constraints []schema.Constraint

	err := e.queryHelper.FetchAll(ctx, queryConstraints, func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var (
			c              schema.Constraint
			constraintType *string
			refColumns     []string
		)

		if err := rows.Scan(
			&c.Name,
			&constraintType,
			&c.Columns,
			&c.Definition,
			scanner.String("refSchema"),
			scanner.String("refTable"),
			&refColumns,
			scanner.String("onUpdate"),
			scanner.String("onDelete"),
			&c.IsDeferrable,
			&c.InitiallyDeferred,
		); err != nil {
			return util.WrapError("scan constraint", err)
		}

		if constraintType == nil {
			return nil
		}

		c.Type = *constraintType

		if c.Type == schema.ConstraintForeignKey {
			c.ReferencedSchema = scanner.GetString("refSchema")
			c.ReferencedTable = scanner.GetString("refTable")
			c.OnUpdate = scanner.GetString("onUpdate")
			c.OnDelete = scanner.GetString("onDelete")
			c.ReferencedColumns = refColumns
		}

		if c.Type == schema.ConstraintCheck {
			c.CheckExpression = stripCheckKeyword(c.Definition)
		}

		constraints = append(constraints, c)

		return nil
	}, table.Schema, table.Name)
	if err != nil {
		return util.WrapError("fetch constraints", err)
	}

	table.Constraints = constraints

	return nil
}

func isNumericType(dataType string) bool {
	dt := strings.ToLower(dataType)
	return dt == "numeric" || dt == "decimal"
}
