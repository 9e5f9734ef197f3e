package include_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgschema/pgcanon/internal/include"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestExpandSimpleInclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "types.sql", "CREATE TYPE status AS ENUM ('on');\n")
	root := writeFile(t, dir, "schema.sql", "\\i types.sql\nCREATE TABLE t (s status);\n")

	out, err := include.ExpandFile(root)
	require.NoError(t, err)

	assert.Equal(t, "CREATE TYPE status AS ENUM ('on');\nCREATE TABLE t (s status);\n", out)
}

func TestExpandNestedAndRelative(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "sub/inner.sql", "SELECT 'inner';\n")
	writeFile(t, dir, "sub/mid.sql", "\\ir inner.sql\nSELECT 'mid';\n")
	root := writeFile(t, dir, "schema.sql", "\\ir sub/mid.sql\nSELECT 'root';\n")

	out, err := include.ExpandFile(root)
	require.NoError(t, err)

	assert.Equal(t, "SELECT 'inner';\nSELECT 'mid';\nSELECT 'root';\n", out)
}

func TestExpandQuotedPathWithSpaces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "common parts/base.sql", "SELECT 1;\n")
	root := writeFile(t, dir, "schema.sql", "\\i 'common parts/base.sql' -- shared\n")

	out, err := include.ExpandFile(root)
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1;\n", out)
}

func TestExpandCRLFInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "part.sql", "SELECT 2;\r\n")
	root := writeFile(t, dir, "schema.sql", "\\i part.sql\r\nSELECT 3;\r\n")

	out, err := include.ExpandFile(root)
	require.NoError(t, err)

	assert.Equal(t, "SELECT 2;\nSELECT 3;\n", out)
}

func TestExpandEmptyInclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "empty.sql", "")
	root := writeFile(t, dir, "schema.sql", "\\i empty.sql\nSELECT 4;\n")

	out, err := include.ExpandFile(root)
	require.NoError(t, err)

	assert.Equal(t, "SELECT 4;\n", out)
}

func TestExpandDirectiveNotAtLineStart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := writeFile(t, dir, "schema.sql", "SELECT 1; \\i nope.sql\n")

	out, err := include.ExpandFile(root)
	require.NoError(t, err, "mid-line backslash is not a directive")
	assert.Equal(t, "SELECT 1; \\i nope.sql\n", out)
}

func TestExpandMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := writeFile(t, dir, "schema.sql", "\\i gone.sql\n")

	_, err := include.ExpandFile(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.sql")
}

func TestExpandCycleDetection(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.sql", "\\i b.sql\n")
	writeFile(t, dir, "b.sql", "\\i a.sql\n")
	root := filepath.Join(dir, "a.sql")

	_, err := include.ExpandFile(root)
	require.Error(t, err)

	var cycleErr *include.CycleError
	require.ErrorAs(t, err, &cycleErr)

	require.Len(t, cycleErr.Chain, 3)
	assert.Contains(t, cycleErr.Chain[0], "a.sql")
	assert.Contains(t, cycleErr.Chain[1], "b.sql")
	assert.Contains(t, cycleErr.Chain[2], "a.sql")
	assert.Contains(t, err.Error(), " -> ")
}

func TestExpandSelfInclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := writeFile(t, dir, "self.sql", "\\i self.sql\n")

	_, err := include.ExpandFile(root)

	var cycleErr *include.CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestExpandDepthLimit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// A linear chain longer than the cap, no cycles involved.
	last := fmt.Sprintf("f%03d.sql", include.MaxDepth+2)
	writeFile(t, dir, last, "SELECT 'deep';\n")

	for i := include.MaxDepth + 1; i >= 0; i-- {
		writeFile(t, dir, fmt.Sprintf("f%03d.sql", i),
			fmt.Sprintf("\\i f%03d.sql\n", i+1))
	}

	_, err := include.ExpandFile(filepath.Join(dir, "f000.sql"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, include.ErrMaxDepthExceeded))
}

func TestExpandSharedIncludeIsNotACycle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "common.sql", "SELECT 'common';\n")
	writeFile(t, dir, "a.sql", "\\i common.sql\n")
	writeFile(t, dir, "b.sql", "\\i common.sql\n")
	root := writeFile(t, dir, "schema.sql", "\\i a.sql\n\\i b.sql\n")

	out, err := include.ExpandFile(root)
	require.NoError(t, err)

	assert.Equal(t, "SELECT 'common';\nSELECT 'common';\n", out)
}
