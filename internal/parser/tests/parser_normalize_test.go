package parser_test

import (
	"testing"

	"github.com/pgschema/pgcanon/internal/parser"
)

func TestNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		sql1  string
		sql2  string
		equal bool
	}{
		{
			name:  "whitespace difference",
			sql1:  "SELECT * FROM users WHERE id = 1",
			sql2:  "SELECT   *   FROM   users   WHERE   id=1",
			equal: true,
		},
		{
			name:  "case difference in keywords",
			sql1:  "select * from users",
			sql2:  "SELECT * FROM users",
			equal: true,
		},
		{
			name:  "trailing semicolon",
			sql1:  "SELECT * FROM users;",
			sql2:  "SELECT * FROM users",
			equal: true,
		},
		{
			name:  "line comment stripped",
			sql1:  "SELECT 1 -- trailing note\nFROM t",
			sql2:  "SELECT 1 FROM t",
			equal: true,
		},
		{
			name:  "block comment stripped",
			sql1:  "SELECT /* note */ 1 FROM t",
			sql2:  "SELECT 1 FROM t",
			equal: true,
		},
		{
			name:  "line comment marker inside literal",
			sql1:  "SELECT 'a -- b' AS label FROM t",
			sql2:  "SELECT 'a -- c' AS label FROM t",
			equal: false,
		},
		{
			name:  "block comment marker inside literal",
			sql1:  "SELECT 'a /* b */ c' FROM t",
			sql2:  "SELECT 'a c' FROM t",
			equal: false,
		},
		{
			name:  "comment marker inside dollar quoting",
			sql1:  "SELECT $tag$v -- w$tag$",
			sql2:  "SELECT $tag$v$tag$",
			equal: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := parser.CompareSQL(tt.sql1, tt.sql2)
			if result != tt.equal {
				t.Errorf("CompareSQL() = %v, want %v", result, tt.equal)
			}
		})
	}
}

func TestNormalizeSQLKeepsLiteralsIntact(t *testing.T) {
	t.Parallel()

	got := parser.NormalizeSQL("SELECT 'a -- b' AS label, id FROM t; -- trailing")
	want := "SELECT 'a -- b' AS label, id FROM t"

	if got != want {
		t.Errorf("NormalizeSQL() = %q, want %q", got, want)
	}
}
