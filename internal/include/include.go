// Package include resolves psql \i and \ir meta-commands into a single
// schema document. Only the two include directives are interpreted; every
// other meta-command line passes through untouched and is left for the
// SQL layer to ignore.
package include

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pgschema/pgcanon/internal/util"
)

// MaxDepth bounds include nesting. Deeper chains are almost certainly a
// cycle the path normalization failed to catch.
const MaxDepth = 64

var ErrMaxDepthExceeded = errors.New("include depth limit exceeded")

// CycleError reports an include file that is already being expanded. Chain
// holds the path from the root file to the repeated include.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "include cycle: " + strings.Join(e.Chain, " -> ")
}

type Resolver struct {
	maxDepth int
}

func NewResolver() *Resolver {
	return &Resolver{maxDepth: MaxDepth}
}

// ExpandFile reads path and substitutes every \i / \ir directive with the
// contents of the referenced file, recursively. Relative include paths
// resolve against the directory of the file containing the directive.
func (r *Resolver) ExpandFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", util.WrapError("resolving include root", err)
	}

	var builder strings.Builder

	state := &expandState{
		visiting: map[string]bool{},
	}

	if err := r.expand(abs, state, &builder, 0); err != nil {
		return "", err
	}

	return builder.String(), nil
}

// ExpandFile is the package-level convenience around a default Resolver.
func ExpandFile(path string) (string, error) {
	return NewResolver().ExpandFile(path)
}

type expandState struct {
	visiting map[string]bool
	chain    []string
}

func (r *Resolver) expand(path string, state *expandState, out *strings.Builder, depth int) error {
	if depth > r.maxDepth {
		return fmt.Errorf("%w: %s is nested more than %d levels deep",
			ErrMaxDepthExceeded, path, r.maxDepth)
	}

	if state.visiting[path] {
		return &CycleError{Chain: append(append([]string{}, state.chain...), path)}
	}

	content, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return util.WrapError("reading include file", err)
	}

	state.visiting[path] = true
	state.chain = append(state.chain, path)

	defer func() {
		delete(state.visiting, path)
		state.chain = state.chain[:len(state.chain)-1]
	}()

	baseDir := filepath.Dir(path)

	for _, line := range splitLines(string(content)) {
		target, ok := parseDirective(line)
		if !ok {
			out.WriteString(line)
			out.WriteString("\n")

			continue
		}

		if !filepath.IsAbs(target) {
			target = filepath.Join(baseDir, target)
		}

		target = filepath.Clean(target)

		if err := r.expand(target, state, out, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// splitLines tolerates CRLF input and a missing trailing newline.
func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

// parseDirective recognizes whole-line \i and \ir meta-commands. The path
// may be single- or double-quoted; an unquoted path may be followed by a
// -- comment. Directives are line-anchored, so a backslash anywhere but
// column one never counts.
func parseDirective(line string) (string, bool) {
	trimmed := strings.TrimRight(line, " \t")
	if !strings.HasPrefix(trimmed, `\i`) {
		return "", false
	}

	rest := ""

	switch {
	case strings.HasPrefix(trimmed, `\ir`):
		rest = trimmed[3:]
	case strings.HasPrefix(trimmed, `\i`):
		rest = trimmed[2:]
	}

	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}

	rest = strings.TrimLeft(rest, " \t")
	if rest == "" {
		return "", false
	}

	if rest[0] == '\'' || rest[0] == '"' {
		quote := rest[0]

		end := strings.IndexByte(rest[1:], quote)
		if end < 0 {
			return "", false
		}

		path := rest[1 : 1+end]
		tail := strings.TrimSpace(rest[2+end:])

		if tail != "" && !strings.HasPrefix(tail, "--") {
			return "", false
		}

		return path, path != ""
	}

	path := rest
	if idx := strings.IndexAny(rest, " \t"); idx >= 0 {
		tail := strings.TrimSpace(rest[idx:])
		if tail != "" && !strings.HasPrefix(tail, "--") {
			return "", false
		}

		path = rest[:idx]
	}

	return path, path != ""
}
