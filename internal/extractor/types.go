package extractor

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
)

func (e *Extractor) extractSchemas(ctx context.Context) ([]schema.Schema, error) {
	var schemas []schema.Schema

	err := e.queryHelper.FetchAll(ctx, e.queries.schemasQuery(), func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var s schema.Schema

		if err := rows.Scan(&s.Name, scanner.String("comment")); err != nil {
			return util.WrapError("scan schema", err)
		}

		s.Comment = scanner.GetString("comment")

		schemas = append(schemas, s)

		return nil
	})
	if err != nil {
		return nil, util.WrapError("fetch schemas", err)
	}

	return schemas, nil
}

func (e *Extractor) extractExtensions(ctx context.Context) ([]schema.Extension, error) {
	var extensions []schema.Extension

	err := e.queryHelper.FetchAll(ctx, e.queries.extensionsQuery(), func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var ext schema.Extension

		if err := rows.Scan(
			&ext.Name,
			&ext.Schema,
			&ext.Version,
			scanner.String("comment"),
		); err != nil {
			return util.WrapError("scan extension", err)
		}

		ext.Comment = scanner.GetString("comment")

		extensions = append(extensions, ext)

		return nil
	})
	if err != nil {
		return nil, util.WrapError("fetch extensions", err)
	}

	return extensions, nil
}

func (e *Extractor) extractTypes(ctx context.Context) ([]schema.Type, error) {
	var types []schema.Type

	err := e.queryHelper.FetchAll(ctx, e.queries.typesQuery(), func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var typ schema.Type

		if err := rows.Scan(
			&typ.Schema,
			&typ.Name,
			&typ.Kind,
			scanner.String("comment"),
		); err != nil {
			return util.WrapError("scan type", err)
		}

		typ.Comment = scanner.GetString("comment")

		types = append(types, typ)

		return nil
	})
	if err != nil {
		return nil, util.WrapError("fetch types", err)
	}

	for i := range types {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck
		}

		switch types[i].Kind {
		case schema.TypeKindEnum:
			err = e.enrichEnumValues(ctx, &types[i])
		case schema.TypeKindComposite:
			err = e.enrichCompositeFields(ctx, &types[i])
		}

		if err != nil {
			return nil, util.WrapError("enrich type "+types[i].QualifiedName(), err)
		}
	}

	return types, nil
}

func (e *Extractor) enrichEnumValues(ctx context.Context, typ *schema.Type) error {
	var values []string

	err := e.queryHelper.FetchAll(ctx, queryEnumValues, func(rows pgx.Rows) error {
		var value string
		if err := rows.Scan(&value); err != nil {
			return util.WrapError("scan enum value", err)
		}

		values = append(values, value)

		return nil
	}, typ.Schema, typ.Name)
	if err != nil {
		return util.WrapError("fetch enum values", err)
	}

	typ.Values = values

	return nil
}

func (e *Extractor) enrichCompositeFields(ctx context.Context, typ *schema.Type) error {
	var fields []schema.TypeField

	err := e.queryHelper.FetchAll(ctx, queryCompositeFields, func(rows pgx.Rows) error {
		var field schema.TypeField

		if err := rows.Scan(&field.Name, &field.DataType, &field.Position); err != nil {
			return util.WrapError("scan composite field", err)
		}

		fields = append(fields, field)

		return nil
	}, typ.Schema, typ.Name)
	if err != nil {
		return util.WrapError("fetch composite fields", err)
	}

	typ.Fields = fields

	return nil
}

func (e *Extractor) extractDomains(ctx context.Context) ([]schema.Domain, error) {
	var domains []schema.Domain

	err := e.queryHelper.FetchAll(ctx, e.queries.domainsQuery(), func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var d schema.Domain

		if err := rows.Scan(
			&d.Schema,
			&d.Name,
			&d.BaseType,
			&d.NotNull,
			scanner.String("default"),
			scanner.String("conname"),
			scanner.String("condef"),
			scanner.String("comment"),
		); err != nil {
			return util.WrapError("scan domain", err)
		}

		d.Default = scanner.GetString("default")
		d.ConstraintName = scanner.GetString("conname")
		d.CheckClause = stripCheckKeyword(scanner.GetString("condef"))
		d.Comment = scanner.GetString("comment")

		domains = append(domains, d)

		return nil
	})
	if err != nil {
		return nil, util.WrapError("fetch domains", err)
	}

	return domains, nil
}

// stripCheckKeyword reduces pg_get_constraintdef output like
// "CHECK ((VALUE > 0))" to the bare expression.
func stripCheckKeyword(definition string) string {
	trimmed := strings.TrimSpace(definition)

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "CHECK") {
		return trimmed
	}

	expr := strings.TrimSpace(trimmed[len("CHECK"):])
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}

	return expr
}

func (e *Extractor) extractSequences(ctx context.Context) ([]schema.Sequence, error) {
	var sequences []schema.Sequence

	err := e.queryHelper.FetchAll(ctx, e.queries.sequencesQuery(), func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var seq schema.Sequence

		if err := rows.Scan(
			&seq.Schema,
			&seq.Name,
			&seq.DataType,
			&seq.StartValue,
			&seq.MinValue,
			&seq.MaxValue,
			&seq.Increment,
			&seq.CacheSize,
			&seq.IsCyclic,
			scanner.String("ownedTable"),
			scanner.String("ownedColumn"),
			scanner.String("comment"),
		); err != nil {
			return util.WrapError("scan sequence", err)
		}

		seq.OwnedByTable = stripSchemaPrefix(scanner.GetString("ownedTable"))
		seq.OwnedByColumn = scanner.GetString("ownedColumn")
		seq.Comment = scanner.GetString("comment")

		sequences = append(sequences, seq)

		return nil
	})
	if err != nil {
		return nil, util.WrapError("fetch sequences", err)
	}

	return sequences, nil
}

// stripSchemaPrefix drops the schema part of a regclass rendering; the
// owning table always shares the sequence's schema.
func stripSchemaPrefix(name string) string {
	if idx := strings.LastIndex(name, "."); idx != -1 {
		return name[idx+1:]
	}

	return name
}
