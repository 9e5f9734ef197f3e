// Package compare checks a rendered schema document against an expected
// fixture. Both documents are split into statements with the SQL lexer, each
// statement is normalized (whitespace collapsed, keywords uppercased outside
// string literals, comments and trailing semicolons stripped), and the
// normalized sequences are compared. Mismatches are reported as a unified
// diff of the normalized documents.
package compare

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/pgschema/pgcanon/internal/parser"
	"github.com/pgschema/pgcanon/internal/util"
)

// Result holds the outcome of comparing two schema documents.
type Result struct {
	Equal bool
	// Diff is a unified diff of the normalized statement sequences,
	// empty when Equal.
	Diff string
	// ActualCount and ExpectedCount are the statement totals after
	// normalization.
	ActualCount   int
	ExpectedCount int
}

// Documents compares actual against expected statement by statement.
func Documents(actual, expected string) (*Result, error) {
	actualStmts, err := normalizedStatements(actual)
	if err != nil {
		return nil, util.WrapError("split actual document", err)
	}

	expectedStmts, err := normalizedStatements(expected)
	if err != nil {
		return nil, util.WrapError("split expected document", err)
	}

	result := &Result{
		ActualCount:   len(actualStmts),
		ExpectedCount: len(expectedStmts),
	}

	if equalStatements(actualStmts, expectedStmts) {
		result.Equal = true

		return result, nil
	}

	diff, err := unifiedDiff(expectedStmts, actualStmts)
	if err != nil {
		return nil, util.WrapError("compute diff", err)
	}

	result.Diff = diff

	return result, nil
}

func normalizedStatements(doc string) ([]string, error) {
	stmts, err := parser.SplitStatements(doc)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(stmts))

	for _, stmt := range stmts {
		normalized := parser.NormalizeSQL(stripMetaCommands(stmt.SQL))
		if normalized == "" {
			continue
		}

		result = append(result, normalized)
	}

	return result, nil
}

// stripMetaCommands removes psql backslash lines that survive statement
// splitting when they sit between the statement start and its first token.
func stripMetaCommands(sql string) string {
	lines := strings.Split(sql, "\n")
	kept := lines[:0]

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "\\") {
			continue
		}

		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

func equalStatements(a, b []string) bool {
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

func unifiedDiff(expected, actual []string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        statementLines(expected),
		B:        statementLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	}

	return difflib.GetUnifiedDiffString(diff)
}

// statementLines terminates every statement with ";\n" so difflib treats
// each normalized statement as one line.
func statementLines(stmts []string) []string {
	lines := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		lines = append(lines, stmt+";\n")
	}

	return lines
}

// Statements reports whether two single statements are equivalent after
// normalization.
func Statements(a, b string) bool {
	return parser.CompareSQL(a, b)
}

// FirstMismatch returns the index of the first differing statement pair, or
// -1 when the shorter prefix matches. Useful for pointing at the exact
// statement in error messages.
func FirstMismatch(actual, expected []string) int {
	limit := min(len(actual), len(expected))

	for i := 0; i < limit; i++ {
		if actual[i] != expected[i] {
			return i
		}
	}

	if len(actual) != len(expected) {
		return limit
	}

	return -1
}

// NormalizeDocument returns the normalized statement list for a document,
// exposed for callers that want to report counts or per-statement context.
func NormalizeDocument(doc string) ([]string, error) {
	return normalizedStatements(doc)
}
