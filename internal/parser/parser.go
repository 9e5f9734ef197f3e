package parser

import (
	"errors"
	"io"
	"os"

	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
)

type Config struct {
	CaseSensitive bool
}

type parseContext struct {
	currentFile string
	errors      []ParseError
	warnings    []Warning
}

type Parser struct {
	config     Config
	errors     []ParseError
	warnings   []Warning
	normalizer *IdentifierNormalizer
	registry   *ParserRegistry
	ctx        *parseContext
}

type Warning struct {
	File    string
	Line    int
	Message string
}

type Result struct {
	Database *schema.Database
	Errors   []ParseError
	Warnings []Warning
}

func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

type Option func(*Parser)

func WithCaseSensitiveIdentifiers() Option {
	return func(p *Parser) {
		p.config.CaseSensitive = true
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{
		config: Config{},
	}
	for _, opt := range opts {
		opt(p)
	}

	p.normalizer = NewIdentifierNormalizer(p.config.CaseSensitive)
	p.registry = NewParserRegistry()

	return p
}

func (p *Parser) runWithContext(file string, fn func() error) (*parseContext, error) {
	if p.ctx != nil {
		prevFile := p.ctx.currentFile
		p.ctx.currentFile = file
		err := fn()
		p.ctx.currentFile = prevFile
		p.errors = p.ctx.errors
		p.warnings = p.ctx.warnings

		return p.ctx, err
	}

	ctx := &parseContext{
		currentFile: file,
	}
	p.ctx = ctx
	err := fn()
	p.errors = ctx.errors
	p.warnings = ctx.warnings
	p.ctx = nil

	return ctx, err
}

func (p *Parser) ensureContext() *parseContext {
	if p.ctx == nil {
		p.ctx = &parseContext{
			errors:   append([]ParseError(nil), p.errors...),
			warnings: append([]Warning(nil), p.warnings...),
		}
	}

	return p.ctx
}

func (p *Parser) setCurrentFile(file string) {
	ctx := p.ensureContext()
	ctx.currentFile = file
}

func (p *Parser) getCurrentFile() string {
	if p.ctx != nil {
		return p.ctx.currentFile
	}

	return ""
}

func (p *Parser) GetErrors() []ParseError {
	return p.errors
}

func (p *Parser) GetWarnings() []Warning {
	return p.warnings
}

// Parse splits sql into statements and dispatches each to its registered
// statement parser. A statement that fails to parse is recorded as an
// error on the Result; the rest of the document still parses.
func (p *Parser) Parse(sql string) (*Result, error) {
	db := &schema.Database{
		Version: schema.SchemaVersion,
	}

	ctx, err := p.runWithContext(p.getCurrentFile(), func() error {
		return p.parseSQLInternal(sql, db)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Database: db,
		Errors:   ctx.errors,
		Warnings: ctx.warnings,
	}, nil
}

// ParseNamed is Parse with a file name attached to reported errors and
// warnings.
func (p *Parser) ParseNamed(name, sql string) (*Result, error) {
	db := &schema.Database{
		Version: schema.SchemaVersion,
	}

	ctx, err := p.runWithContext(name, func() error {
		return p.parseSQLInternal(sql, db)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Database: db,
		Errors:   ctx.errors,
		Warnings: ctx.warnings,
	}, nil
}

func (p *Parser) ParseFile(filePath string, db *schema.Database) error {
	_, err := p.runWithContext(filePath, func() error {
		file, err := os.Open(filePath)
		if err != nil {
			return util.WrapError("opening file", err)
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			return util.WrapError("reading file", err)
		}

		return p.parseSQLInternal(string(content), db)
	})

	return err
}

func (p *Parser) ParseSQL(sql string, db *schema.Database) error {
	if p.ctx == nil {
		_, err := p.runWithContext(p.getCurrentFile(), func() error {
			return p.parseSQLInternal(sql, db)
		})

		return err
	}

	return p.parseSQLInternal(sql, db)
}

func (p *Parser) parseSQLInternal(sql string, db *schema.Database) error {
	statements, err := splitStatements(sql)
	if err != nil {
		return err
	}

	for _, stmt := range statements {
		p.recordParseError(stmt, p.parseStatement(stmt, db))
	}

	p.registerSerialSequences(db)

	return nil
}

func (p *Parser) parseStatement(stmt Statement, db *schema.Database) error {
	sql := stmt.NormalizedSQL()
	if sql == "" {
		return nil
	}

	stmtType := stmt.Type
	if stmtType == StmtUnknown {
		stmtType = determineStatementType(stmt.Tokens, sql)
	}

	if handler := p.registry.Get(stmtType); handler != nil {
		return handler.Parse(p, stmt, db) //nolint:wrapcheck
	}

	p.addWarning(stmt.Line, "unsupported statement: "+truncate(sql, 50))

	return nil
}

func (p *Parser) addError(line int, message, sql string) {
	ctx := p.ensureContext()

	ctx.errors = append(ctx.errors, ParseError{
		File:    ctx.currentFile,
		Line:    line,
		Message: message,
		SQL:     sql,
	})

	p.errors = ctx.errors
}

func (p *Parser) recordParseError(stmt Statement, err error) {
	if err == nil {
		return
	}

	ctx := p.ensureContext()

	var parseErr ParseError
	if errors.As(err, &parseErr) {
		if parseErr.File == "" {
			parseErr.File = ctx.currentFile
		}

		if parseErr.Line == 0 {
			parseErr.Line = stmt.Line
		}

		if parseErr.SQL == "" {
			parseErr.SQL = stmt.SQL
		}

		ctx.errors = append(ctx.errors, parseErr)
		p.errors = ctx.errors

		return
	}

	ctx.errors = append(ctx.errors, ParseError{
		File:    ctx.currentFile,
		Line:    stmt.Line,
		Message: err.Error(),
		SQL:     stmt.SQL,
		Cause:   err,
	})

	p.errors = ctx.errors
}

func (p *Parser) addWarning(line int, message string) {
	ctx := p.ensureContext()

	ctx.warnings = append(ctx.warnings, Warning{
		File:    ctx.currentFile,
		Line:    line,
		Message: message,
	})

	p.warnings = ctx.warnings
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
