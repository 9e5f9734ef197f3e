package canonical

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgcanon/internal/schema"
)

// QuoteIdentifier wraps name in double quotes when it cannot stand as a
// bare lowercase identifier.
func QuoteIdentifier(name string) string {
	if len(name) == 0 {
		return `""`
	}

	if name[0] >= '0' && name[0] <= '9' {
		return fmt.Sprintf(`"%s"`, name)
	}

	for _, char := range name {
		if (char < 'a' || char > 'z') && (char < '0' || char > '9') && char != '_' {
			return fmt.Sprintf(`"%s"`, name)
		}
	}

	return name
}

// RelName renders an object name the way the dump format does: bare for
// objects in the default schema, schema-qualified otherwise.
func RelName(schemaName, name string) string {
	if schemaName == "" || schemaName == schema.DefaultSchema {
		return QuoteIdentifier(name)
	}

	return QuoteIdentifier(schemaName) + "." + QuoteIdentifier(name)
}

func quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))

	for i, col := range columns {
		if isExpression(col) {
			quoted[i] = col
		} else {
			quoted[i] = QuoteIdentifier(col)
		}
	}

	return strings.Join(quoted, ", ")
}

func isExpression(s string) bool {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "(") {
		return true
	}

	return strings.ContainsAny(trimmed, "() +-*/=<>")
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func formatSQLStringLiteral(s string) string {
	return "'" + escapeSQLString(s) + "'"
}
