package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/pgschema/pgcanon/internal/schema"
)

type StatementParser interface {
	StatementTypes() []StatementType
	Parse(root *Parser, stmt Statement, db *schema.Database) error
}

type ParserRegistry struct {
	parsers map[StatementType]StatementParser
}

func NewParserRegistry() *ParserRegistry {
	r := &ParserRegistry{
		parsers: make(map[StatementType]StatementParser),
	}

	r.Register(NewTableParser())
	r.Register(NewIndexParser())
	r.Register(NewViewParser())
	r.Register(NewFunctionParser())
	r.Register(NewTriggerParser())
	r.Register(NewExtensionParser())
	r.Register(NewSchemaParser())
	r.Register(NewTypeParser())
	r.Register(NewDomainParser())
	r.Register(NewSequenceParser())
	r.Register(NewAlterTableParser())
	r.Register(NewAlterSequenceParser())
	r.Register(NewPolicyParser())
	r.Register(NewCommentParser())
	r.Register(NewDoBlockParser())

	return r
}

func (r *ParserRegistry) Register(parser StatementParser) {
	for _, stmtType := range parser.StatementTypes() {
		r.parsers[stmtType] = parser
	}
}

func (r *ParserRegistry) Get(stmtType StatementType) StatementParser {
	return r.parsers[stmtType]
}

type ExtensionParser struct {
	namePattern    *regexp.Regexp
	schemaPattern  *regexp.Regexp
	versionPattern *regexp.Regexp
}

func NewExtensionParser() *ExtensionParser {
	return &ExtensionParser{
		namePattern: regexp.MustCompile(
			`(?i)CREATE\s+EXTENSION\s+(?:IF\s+NOT\s+EXISTS\s+)?([a-zA-Z_][a-zA-Z0-9_]*|"[^"]*")`,
		),
		schemaPattern: regexp.MustCompile(
			`(?i)(?:WITH\s+)?SCHEMA\s*(?:=\s*)?([a-zA-Z_][a-zA-Z0-9_]*|"[^"]*")`,
		),
		versionPattern: regexp.MustCompile(
			`(?i)VERSION\s+'?([^'\s]+)'?`,
		),
	}
}

func (p *ExtensionParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreateExtension}
}

func (p *ExtensionParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	sql := stmt.NormalizedSQL()

	matches := p.namePattern.FindStringSubmatch(sql)
	if len(matches) < 2 {
		return errors.New("cannot extract extension name")
	}

	name := unquote(matches[1])
	ext := schema.Extension{Name: name}

	if schemaMatch := p.schemaPattern.FindStringSubmatch(sql); len(schemaMatch) > 1 {
		ext.Schema = schema.NormalizeIdentifier(unquote(schemaMatch[1]))
	}

	if versionMatch := p.versionPattern.FindStringSubmatch(sql); len(versionMatch) > 1 {
		ext.Version = versionMatch[1]
	}

	db.Extensions = append(db.Extensions, ext)

	return nil
}

type SchemaParser struct {
	namePattern *regexp.Regexp
}

func NewSchemaParser() *SchemaParser {
	return &SchemaParser{
		namePattern: regexp.MustCompile(
			`(?i)CREATE\s+SCHEMA\s+(?:IF\s+NOT\s+EXISTS\s+)?([a-zA-Z_][a-zA-Z0-9_]*|"[^"]*")`,
		),
	}
}

func (p *SchemaParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreateSchema}
}

func (p *SchemaParser) Parse(_ *Parser, stmt Statement, db *schema.Database) error {
	sql := stmt.NormalizedSQL()

	matches := p.namePattern.FindStringSubmatch(sql)
	if len(matches) < 2 {
		return errors.New("cannot extract schema name")
	}

	name := schema.NormalizeIdentifier(unquote(matches[1]))
	newSchema := schema.Schema{Name: name}

	for i := range db.Schemas {
		if db.Schemas[i].Name == name {
			db.Schemas[i] = newSchema
			return nil
		}
	}

	db.Schemas = append(db.Schemas, newSchema)

	return nil
}

type TypeParser struct {
	enumPattern      *regexp.Regexp
	compositePattern *regexp.Regexp
}

func NewTypeParser() *TypeParser {
	return &TypeParser{
		enumPattern: regexp.MustCompile(
			`(?i)CREATE\s+TYPE\s+([a-zA-Z_][a-zA-Z0-9_.]*|"[^"]*"(?:\."[^"]*")?)\s+AS\s+ENUM`,
		),
		compositePattern: regexp.MustCompile(
			`(?i)CREATE\s+TYPE\s+([a-zA-Z_][a-zA-Z0-9_.]*|"[^"]*"(?:\."[^"]*")?)\s+AS\s*\(`,
		),
	}
}

func (p *TypeParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreateType}
}

func (p *TypeParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	sql := stmt.NormalizedSQL()

	if matches := p.enumPattern.FindStringSubmatch(sql); len(matches) > 1 {
		return p.parseEnum(root, sql, matches[1], db)
	}

	if matches := p.compositePattern.FindStringSubmatch(sql); len(matches) > 1 {
		return p.parseComposite(root, sql, matches[1], db)
	}

	return errors.New("cannot extract type definition")
}

func (p *TypeParser) parseEnum(root *Parser, sql, rawName string, db *schema.Database) error {
	schemaName, typeName := root.splitSchemaTable(rawName)

	enumType := schema.Type{
		Schema: schemaName,
		Name:   typeName,
		Kind:   schema.TypeKindEnum,
	}

	if values := extractParens(sql); values != "" {
		for _, val := range splitByComma(values) {
			enumType.Values = append(enumType.Values, unquote(val))
		}
	}

	db.Types = append(db.Types, enumType)

	return nil
}

func (p *TypeParser) parseComposite(root *Parser, sql, rawName string, db *schema.Database) error {
	schemaName, typeName := root.splitSchemaTable(rawName)

	compositeType := schema.Type{
		Schema: schemaName,
		Name:   typeName,
		Kind:   schema.TypeKindComposite,
	}

	fields := extractParens(sql)
	if fields == "" {
		return errors.New("composite type has no field list")
	}

	for i, fieldDef := range splitByComma(fields) {
		parts := strings.Fields(fieldDef)
		if len(parts) < 2 {
			return errors.New("invalid composite type field: " + fieldDef)
		}

		compositeType.Fields = append(compositeType.Fields, schema.TypeField{
			Name:     root.normalizeIdent(parts[0]),
			DataType: strings.Join(parts[1:], " "),
			Position: i + 1,
		})
	}

	db.Types = append(db.Types, compositeType)

	return nil
}

type DomainParser struct {
	headPattern       *regexp.Regexp
	constraintPattern *regexp.Regexp
	defaultPattern    *regexp.Regexp
	checkStartPattern *regexp.Regexp
	notNullPattern    *regexp.Regexp
}

func NewDomainParser() *DomainParser {
	return &DomainParser{
		headPattern: regexp.MustCompile(
			`(?i)CREATE\s+DOMAIN\s+([a-zA-Z_][a-zA-Z0-9_.]*|"[^"]*"(?:\."[^"]*")?)\s+AS\s+` +
				`(.+?)(?:\s+(?:DEFAULT|NOT\s+NULL|NULL|CONSTRAINT|CHECK|COLLATE)\b|\s*;?\s*$)`,
		),
		constraintPattern: regexp.MustCompile(
			`(?i)CONSTRAINT\s+([a-zA-Z_][a-zA-Z0-9_]*|"[^"]*")\s+CHECK`,
		),
		defaultPattern: regexp.MustCompile(
			`(?i)\bDEFAULT\s+(.+?)(?:\s+(?:NOT\s+NULL|NULL|CONSTRAINT|CHECK)\b|\s*;?\s*$)`,
		),
		checkStartPattern: regexp.MustCompile(`(?i)\bCHECK\s*\(`),
		notNullPattern:    regexp.MustCompile(`(?i)\bNOT\s+NULL\b`),
	}
}

func (p *DomainParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreateDomain}
}

func (p *DomainParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	sql := stmt.NormalizedSQL()

	matches := p.headPattern.FindStringSubmatch(sql)
	if len(matches) < 3 {
		return errors.New("cannot extract domain definition")
	}

	schemaName, domainName := root.splitSchemaTable(matches[1])

	domain := schema.Domain{
		Schema:   schemaName,
		Name:     domainName,
		BaseType: strings.ToLower(strings.TrimSpace(matches[2])),
		NotNull:  p.notNullPattern.MatchString(sql),
	}

	if defMatch := p.defaultPattern.FindStringSubmatch(sql); len(defMatch) > 1 {
		domain.Default = strings.TrimSpace(defMatch[1])
	}

	if nameMatch := p.constraintPattern.FindStringSubmatch(sql); len(nameMatch) > 1 {
		domain.ConstraintName = root.normalizeIdent(nameMatch[1])
	}

	if loc := p.checkStartPattern.FindStringIndex(sql); loc != nil {
		domain.CheckClause = strings.TrimSpace(extractParens(sql[loc[0]:]))
	}

	db.Domains = append(db.Domains, domain)

	return nil
}

type SequenceParser struct {
	namePattern      *regexp.Regexp
	dataTypePattern  *regexp.Regexp
	startPattern     *regexp.Regexp
	incrementPattern *regexp.Regexp
	minValuePattern  *regexp.Regexp
	maxValuePattern  *regexp.Regexp
	cachePattern     *regexp.Regexp
	cyclePattern     *regexp.Regexp
	ownedByPattern   *regexp.Regexp
}

func NewSequenceParser() *SequenceParser {
	return &SequenceParser{
		namePattern: regexp.MustCompile(
			`(?i)CREATE\s+SEQUENCE\s+(?:IF\s+NOT\s+EXISTS\s+)?` +
				`([a-zA-Z_][a-zA-Z0-9_.]*|"[^"]*"(?:\."[^"]*")?)`,
		),
		dataTypePattern:  regexp.MustCompile(`(?i)\bAS\s+(smallint|integer|bigint|int2|int4|int8)\b`),
		startPattern:     regexp.MustCompile(`(?i)\bSTART\s+(?:WITH\s+)?(-?\d+)`),
		incrementPattern: regexp.MustCompile(`(?i)\bINCREMENT\s+(?:BY\s+)?(-?\d+)`),
		minValuePattern:  regexp.MustCompile(`(?i)\bMINVALUE\s+(-?\d+)`),
		maxValuePattern:  regexp.MustCompile(`(?i)\bMAXVALUE\s+(-?\d+)`),
		cachePattern:     regexp.MustCompile(`(?i)\bCACHE\s+(\d+)`),
		cyclePattern:     regexp.MustCompile(`(?i)(\bNO\s+)?\bCYCLE\b`),
		ownedByPattern: regexp.MustCompile(
			`(?i)\bOWNED\s+BY\s+([a-zA-Z_][a-zA-Z0-9_.]*)\.([a-zA-Z_][a-zA-Z0-9_]*)`,
		),
	}
}

func (p *SequenceParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreateSequence}
}

// Parse keeps the authored sequence parameters. The canonical rendering
// drops them again, but extract output and the JSON model preserve what
// was written.
func (p *SequenceParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	sql := stmt.NormalizedSQL()

	matches := p.namePattern.FindStringSubmatch(sql)
	if len(matches) < 2 {
		return errors.New("cannot extract sequence name")
	}

	schemaName, sequenceName := root.splitSchemaTable(matches[1])

	sequence := schema.Sequence{
		Schema:    schemaName,
		Name:      sequenceName,
		DataType:  "bigint",
		Increment: 1,
	}

	if m := p.dataTypePattern.FindStringSubmatch(sql); len(m) > 1 {
		sequence.DataType = schema.CanonicalTypeName(m[1])
	}

	if m := p.startPattern.FindStringSubmatch(sql); len(m) > 1 {
		sequence.StartValue, _ = strconv.ParseInt(m[1], 10, 64)
	}

	if m := p.incrementPattern.FindStringSubmatch(sql); len(m) > 1 {
		sequence.Increment, _ = strconv.ParseInt(m[1], 10, 64)
	}

	if m := p.minValuePattern.FindStringSubmatch(sql); len(m) > 1 {
		sequence.MinValue, _ = strconv.ParseInt(m[1], 10, 64)
	}

	if m := p.maxValuePattern.FindStringSubmatch(sql); len(m) > 1 {
		sequence.MaxValue, _ = strconv.ParseInt(m[1], 10, 64)
	}

	if m := p.cachePattern.FindStringSubmatch(sql); len(m) > 1 {
		sequence.CacheSize, _ = strconv.ParseInt(m[1], 10, 64)
	}

	if m := p.cyclePattern.FindStringSubmatch(sql); len(m) > 1 && m[1] == "" {
		sequence.IsCyclic = true
	}

	if m := p.ownedByPattern.FindStringSubmatch(sql); len(m) > 2 {
		_, table := root.splitSchemaTable(m[1])
		sequence.OwnedByTable = table
		sequence.OwnedByColumn = root.normalizeIdent(m[2])
	}

	if existing := db.GetSequence(schemaName, sequenceName); existing != nil {
		*existing = sequence
		return nil
	}

	db.Sequences = append(db.Sequences, sequence)

	return nil
}

type AlterSequenceParser struct {
	namePattern    *regexp.Regexp
	ownedByPattern *regexp.Regexp
}

func NewAlterSequenceParser() *AlterSequenceParser {
	return &AlterSequenceParser{
		namePattern: regexp.MustCompile(
			`(?i)ALTER\s+SEQUENCE\s+(?:IF\s+EXISTS\s+)?` +
				`([a-zA-Z_][a-zA-Z0-9_.]*|"[^"]*"(?:\."[^"]*")?)`,
		),
		ownedByPattern: regexp.MustCompile(
			`(?i)\bOWNED\s+BY\s+([a-zA-Z_][a-zA-Z0-9_.]*)\.([a-zA-Z_][a-zA-Z0-9_]*)`,
		),
	}
}

func (p *AlterSequenceParser) StatementTypes() []StatementType {
	return []StatementType{StmtAlterSequence}
}

func (p *AlterSequenceParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	sql := stmt.NormalizedSQL()

	matches := p.namePattern.FindStringSubmatch(sql)
	if len(matches) < 2 {
		return errors.New("cannot extract sequence name")
	}

	schemaName, sequenceName := root.splitSchemaTable(matches[1])

	sequence := db.GetSequence(schemaName, sequenceName)
	if sequence == nil {
		return errors.New("sequence not found: " + schema.QualifiedName(schemaName, sequenceName))
	}

	if m := p.ownedByPattern.FindStringSubmatch(sql); len(m) > 2 {
		_, table := root.splitSchemaTable(m[1])
		sequence.OwnedByTable = table
		sequence.OwnedByColumn = root.normalizeIdent(m[2])
	} else {
		root.addWarning(stmt.Line, "unsupported ALTER SEQUENCE clause: "+truncate(sql, 50))
	}

	return nil
}

type PolicyParser struct {
	headPattern       *regexp.Regexp
	permissivePattern *regexp.Regexp
	commandPattern    *regexp.Regexp
	rolesPattern      *regexp.Regexp
	usingPattern      *regexp.Regexp
	withCheckPattern  *regexp.Regexp
}

func NewPolicyParser() *PolicyParser {
	return &PolicyParser{
		headPattern: regexp.MustCompile(
			`(?i)CREATE\s+POLICY\s+([a-zA-Z_][a-zA-Z0-9_]*|"[^"]*")\s+ON\s+` +
				`([a-zA-Z_][a-zA-Z0-9_.]*|"[^"]*"(?:\."[^"]*")?)`,
		),
		permissivePattern: regexp.MustCompile(`(?i)\bAS\s+(PERMISSIVE|RESTRICTIVE)\b`),
		commandPattern:    regexp.MustCompile(`(?i)\bFOR\s+(ALL|SELECT|INSERT|UPDATE|DELETE)\b`),
		rolesPattern: regexp.MustCompile(
			`(?i)\bTO\s+([a-zA-Z_][a-zA-Z0-9_]*(?:\s*,\s*[a-zA-Z_][a-zA-Z0-9_]*)*)`,
		),
		usingPattern:     regexp.MustCompile(`(?i)\bUSING\s*\(`),
		withCheckPattern: regexp.MustCompile(`(?i)\bWITH\s+CHECK\s*\(`),
	}
}

func (p *PolicyParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreatePolicy}
}

func (p *PolicyParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	sql := stmt.NormalizedSQL()

	matches := p.headPattern.FindStringSubmatch(sql)
	if len(matches) < 3 {
		return errors.New("cannot extract policy definition")
	}

	schemaName, tableName := root.splitSchemaTable(matches[2])

	table := db.GetTable(schemaName, tableName)
	if table == nil {
		return errors.New("table not found for policy: " +
			schema.QualifiedName(schemaName, tableName))
	}

	policy := schema.Policy{
		Name:       root.normalizeIdent(matches[1]),
		TableName:  tableName,
		Schema:     schemaName,
		Command:    "ALL",
		Permissive: true,
	}

	if m := p.permissivePattern.FindStringSubmatch(sql); len(m) > 1 {
		policy.Permissive = strings.EqualFold(m[1], "PERMISSIVE")
	}

	if m := p.commandPattern.FindStringSubmatch(sql); len(m) > 1 {
		policy.Command = strings.ToUpper(m[1])
	}

	if m := p.rolesPattern.FindStringSubmatch(sql); len(m) > 1 {
		for _, role := range splitByComma(m[1]) {
			policy.Roles = append(policy.Roles, strings.TrimSpace(role))
		}
	}

	if loc := p.usingPattern.FindStringIndex(sql); loc != nil {
		policy.Using = strings.TrimSpace(extractParens(sql[loc[0]:]))
	}

	if loc := p.withCheckPattern.FindStringIndex(sql); loc != nil {
		policy.WithCheck = strings.TrimSpace(extractParens(sql[loc[0]:]))
	}

	if existing := table.GetPolicy(policy.Name); existing != nil {
		*existing = policy
		return nil
	}

	table.Policies = append(table.Policies, policy)

	return nil
}

type TableParser struct{}

func NewTableParser() *TableParser {
	return &TableParser{}
}

func (p *TableParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreateTable}
}

func (p *TableParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	return root.parseCreateTable(stmt.NormalizedSQL(), db)
}

type IndexParser struct{}

func NewIndexParser() *IndexParser {
	return &IndexParser{}
}

func (p *IndexParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreateIndex}
}

func (p *IndexParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	return root.parseCreateIndex(stmt.NormalizedSQL(), db)
}

type ViewParser struct{}

func NewViewParser() *ViewParser {
	return &ViewParser{}
}

func (p *ViewParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreateView}
}

func (p *ViewParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	return root.parseCreateView(stmt.NormalizedSQL(), db)
}

type FunctionParser struct{}

func NewFunctionParser() *FunctionParser {
	return &FunctionParser{}
}

func (p *FunctionParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreateFunction, StmtCreateProcedure}
}

func (p *FunctionParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	return root.parseCreateFunction(stmt.NormalizedSQL(), db)
}

type TriggerParser struct{}

func NewTriggerParser() *TriggerParser {
	return &TriggerParser{}
}

func (p *TriggerParser) StatementTypes() []StatementType {
	return []StatementType{StmtCreateTrigger}
}

func (p *TriggerParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	return root.parseCreateTrigger(stmt.NormalizedSQL(), db)
}

type AlterTableParser struct{}

func NewAlterTableParser() *AlterTableParser {
	return &AlterTableParser{}
}

func (p *AlterTableParser) StatementTypes() []StatementType {
	return []StatementType{StmtAlterTable}
}

func (p *AlterTableParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	return root.parseAlterTable(stmt, db)
}

type CommentParser struct{}

func NewCommentParser() *CommentParser {
	return &CommentParser{}
}

func (p *CommentParser) StatementTypes() []StatementType {
	return []StatementType{StmtComment}
}

func (p *CommentParser) Parse(root *Parser, stmt Statement, db *schema.Database) error {
	return root.parseComment(stmt.NormalizedSQL(), db)
}

// DoBlockParser records DO blocks as warnings; procedural bodies are not
// executed and cannot contribute objects to the model.
type DoBlockParser struct{}

func NewDoBlockParser() *DoBlockParser {
	return &DoBlockParser{}
}

func (p *DoBlockParser) StatementTypes() []StatementType {
	return []StatementType{StmtDoBlock}
}

func (p *DoBlockParser) Parse(root *Parser, stmt Statement, _ *schema.Database) error {
	root.addWarning(stmt.Line, "DO block skipped: "+truncate(stmt.NormalizedSQL(), 50))

	return nil
}
