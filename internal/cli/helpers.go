package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pgschema/pgcanon/internal/include"
	"github.com/pgschema/pgcanon/internal/parser"
	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
)

// expandAndParse resolves includes starting at path and parses the result
// into the object model.
func expandAndParse(path string) (*schema.Database, error) {
	expanded, err := include.ExpandFile(path)
	if err != nil {
		return nil, util.WrapError("expand includes", err)
	}

	p := parser.New()
	db := &schema.Database{
		Version:      schema.SchemaVersion,
		DatabaseName: filepath.Base(path),
		Tables:       []schema.Table{},
	}

	if err := p.ParseSQL(expanded, db); err != nil {
		return nil, util.WrapError("parse schema", err)
	}

	db.Sort()

	if err := checkParserErrors(p); err != nil {
		return nil, err
	}

	displayParserWarnings(p)

	return db, nil
}

func checkParserErrors(p *parser.Parser) error {
	errors := p.GetErrors()
	if len(errors) == 0 {
		return nil
	}

	fmt.Fprintf(os.Stderr, "\nParser errors:\n")

	for _, err := range errors {
		fmt.Fprintf(os.Stderr, "  - %s\n", err.Error())
	}

	return fmt.Errorf("encountered %d parsing errors", len(errors))
}

func displayParserWarnings(p *parser.Parser) {
	warnings := p.GetWarnings()
	if len(warnings) == 0 {
		return
	}

	fmt.Fprintf(os.Stderr, "\nParser warnings:\n")

	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "  - %s:%d: %s\n", w.File, w.Line, w.Message)
	}
}

// writeOutput writes data to path, or to stdout when path is "-" or empty.
// The color flag only applies to the stdout case.
func writeOutput(path string, data []byte, color bool) error {
	if path == "" || path == "-" {
		return printSQL(string(data), color)
	}

	outputDir := filepath.Dir(path)
	if outputDir != "." && outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return util.WrapError("create output directory", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return util.WrapError("write output file", err)
	}

	return nil
}
