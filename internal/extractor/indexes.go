package extractor

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
)

func (e *Extractor) extractIndexes(ctx context.Context, table *schema.Table) error {
	var indexes []schema.Index

	err := e.queryHelper.FetchAll(ctx, queryIndexes, func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var idx schema.Index

		if err := rows.Scan(
			&idx.Schema,
			&idx.Name,
			&idx.TableName,
			&idx.IsUnique,
			&idx.IsPrimary,
			&idx.Type,
			scanner.String("where"),
			&idx.Definition,
			scanner.String("tablespace"),
			scanner.String("comment"),
		); err != nil {
			return util.WrapError("scan index", err)
		}

		idx.Where = scanner.GetString("where")
		idx.Tablespace = scanner.GetString("tablespace")
		idx.Comment = scanner.GetString("comment")

		columns, includeColumns := parseIndexDefinition(idx.Definition)
		idx.Columns = columns
		idx.IncludeColumns = includeColumns

		indexes = append(indexes, idx)

		return nil
	}, table.Schema, table.Name)
	if err != nil {
		return util.WrapError("fetch indexes", err)
	}

	table.Indexes = indexes

	return nil
}

func (e *Extractor) extractPolicies(ctx context.Context, table *schema.Table) error {
	var policies []schema.Policy

	err := e.queryHelper.FetchAll(ctx, queryPolicies, func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var (
			policy schema.Policy
			roles  []string
		)

		if err := rows.Scan(
			&policy.Name,
			&policy.Permissive,
			&roles,
			scanner.String("cmd"),
			scanner.String("using"),
			scanner.String("withCheck"),
		); err != nil {
			return util.WrapError("scan policy", err)
		}

		policy.Schema = table.Schema
		policy.TableName = table.Name
		policy.Command = scanner.GetString("cmd")
		policy.Using = scanner.GetString("using")
		policy.WithCheck = scanner.GetString("withCheck")

		// pg_policies lists {public} for policies without TO
		if !(len(roles) == 1 && roles[0] == "public") {
			policy.Roles = roles
		}

		policies = append(policies, policy)

		return nil
	}, table.Schema, table.Name)
	if err != nil {
		return util.WrapError("fetch policies", err)
	}

	table.Policies = policies

	return nil
}

func parseIndexDefinition(definition string) ([]string, []string) {
	var columns, includeColumns []string

	start := strings.Index(definition, "(")
	if start == -1 {
		return columns, includeColumns
	}

	depth := 0

	end := start
	for i := start; i < len(definition); i++ {
		switch definition[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
			}
		}

		if depth == 0 && definition[i] == ')' {
			break
		}
	}

	if end <= start {
		return columns, includeColumns
	}

	columnList := definition[start+1 : end]

	if includeIdx := strings.Index(definition[end:], "INCLUDE"); includeIdx != -1 {
		includeStart := end + includeIdx
		if parenStart := strings.Index(definition[includeStart:], "("); parenStart != -1 {
			parenStart += includeStart
			if parenEnd := strings.Index(definition[parenStart:], ")"); parenEnd != -1 {
				parenEnd += parenStart
				includeList := definition[parenStart+1 : parenEnd]
				includeColumns = parseColumnList(includeList)
			}
		}
	}

	columns = parseColumnList(columnList)

	return columns, includeColumns
}

func parseColumnList(columnList string) []string {
	var (
		columns []string
		current strings.Builder
	)

	depth := 0
	inString := false

	for _, ch := range columnList {
		switch ch {
		case '\'':
			inString = !inString

			current.WriteRune(ch)
		case '(':
			if !inString {
				depth++
			}

			current.WriteRune(ch)
		case ')':
			if !inString {
				depth--
			}

			current.WriteRune(ch)
		case ',':
			if !inString && depth == 0 {
				if col := strings.TrimSpace(current.String()); col != "" {
					columns = append(columns, col)
				}

				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if col := strings.TrimSpace(current.String()); col != "" {
		columns = append(columns, col)
	}

	return columns
}
