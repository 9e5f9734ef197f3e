package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIndexDefinition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		definition  string
		wantColumns []string
		wantInclude []string
	}{
		{
			name:        "single column",
			definition:  "CREATE INDEX idx_a ON public.t USING btree (a)",
			wantColumns: []string{"a"},
		},
		{
			name:        "multiple columns with direction",
			definition:  "CREATE INDEX idx_ab ON public.t USING btree (a, b DESC)",
			wantColumns: []string{"a", "b DESC"},
		},
		{
			name:        "expression column",
			definition:  "CREATE INDEX idx_lower ON public.t USING btree (lower(name), id)",
			wantColumns: []string{"lower(name)", "id"},
		},
		{
			name:        "include columns",
			definition:  "CREATE UNIQUE INDEX idx_u ON public.t USING btree (a) INCLUDE (b, c)",
			wantColumns: []string{"a"},
			wantInclude: []string{"b", "c"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			columns, include := parseIndexDefinition(tt.definition)
			assert.Equal(t, tt.wantColumns, columns)
			assert.Equal(t, tt.wantInclude, include)
		})
	}
}

func TestSplitArguments(t *testing.T) {
	t.Parallel()

	assert.Nil(t, splitArguments(""))
	assert.Equal(t, []string{"integer"}, splitArguments("integer"))
	assert.Equal(t,
		[]string{"integer", "numeric(10,2)", "text[]"},
		splitArguments("integer, numeric(10,2), text[]"))
}

func TestParseTriggerWhen(t *testing.T) {
	t.Parallel()

	def := "CREATE TRIGGER trg BEFORE UPDATE ON t FOR EACH ROW" +
		" WHEN ((old.status IS DISTINCT FROM new.status)) EXECUTE FUNCTION log_change()"
	assert.Equal(t, "(old.status IS DISTINCT FROM new.status)", parseTriggerWhen(def))

	assert.Empty(t, parseTriggerWhen("CREATE TRIGGER trg AFTER INSERT ON t EXECUTE FUNCTION f()"))
}

func TestStripCheckKeyword(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(VALUE > 0)", stripCheckKeyword("CHECK ((VALUE > 0))"))
	assert.Equal(t, "VALUE > 0", stripCheckKeyword("CHECK (VALUE > 0)"))
	assert.Equal(t, "already bare", stripCheckKeyword("already bare"))
}

func TestParseTriggerArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		definition string
		want       []string
	}{
		{
			name: "quoted arguments",
			definition: "CREATE TRIGGER log_insert AFTER INSERT ON public.users " +
				"FOR EACH ROW EXECUTE FUNCTION log_change('audit', 'row')",
			want: []string{"'audit'", "'row'"},
		},
		{
			name: "comma inside literal",
			definition: "CREATE TRIGGER t AFTER INSERT ON public.users " +
				"FOR EACH ROW EXECUTE FUNCTION f('a,b', 'c')",
			want: []string{"'a,b'", "'c'"},
		},
		{
			name: "no arguments",
			definition: "CREATE TRIGGER t BEFORE UPDATE ON public.users " +
				"FOR EACH ROW EXECUTE FUNCTION touch()",
			want: nil,
		},
		{
			name: "execute procedure spelling",
			definition: "CREATE TRIGGER t AFTER DELETE ON public.users " +
				"FOR EACH STATEMENT EXECUTE PROCEDURE record_audit('1')",
			want: []string{"'1'"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, parseTriggerArguments(tt.definition))
		})
	}
}
