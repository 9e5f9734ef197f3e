package parser

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgcanon/internal/schema"
)

type commentObjectType int

const (
	commentObjectUnknown commentObjectType = iota
	commentObjectTable
	commentObjectColumn
	commentObjectView
	commentObjectFunction
	commentObjectExtension
	commentObjectTypeAlias
	commentObjectDomain
	commentObjectSequence
	commentObjectSchema
	commentObjectIndex
	commentObjectPolicy
	commentObjectTrigger
)

type commentStatement struct {
	objectType   commentObjectType
	schemaName   string
	objectName   string
	columnName   string
	tableName    string
	functionArgs []string
	commentText  string
	isNull       bool
}

func (p *Parser) parseComment(stmt string, db *schema.Database) error { //nolint:cyclop,gocyclo
	parsed, err := p.parseCommentStatement(stmt)
	if err != nil {
		return err
	}

	if parsed == nil {
		return nil
	}

	commentValue := ""
	if !parsed.isNull {
		commentValue = parsed.commentText
	}

	switch parsed.objectType {
	case commentObjectTable:
		if table := db.GetTable(parsed.schemaName, parsed.objectName); table != nil {
			table.Comment = commentValue
			return nil
		}

		p.addWarning(
			0,
			fmt.Sprintf("table %s.%s not found for comment", parsed.schemaName, parsed.objectName),
		)

	case commentObjectColumn:
		p.applyColumnComment(parsed, commentValue, db)

	case commentObjectView:
		if view := db.GetView(parsed.schemaName, parsed.objectName); view != nil {
			view.Comment = commentValue
			return nil
		}

		p.addWarning(
			0,
			fmt.Sprintf("view %s.%s not found for comment", parsed.schemaName, parsed.objectName),
		)

	case commentObjectFunction:
		if fn := db.GetFunction(parsed.schemaName, parsed.objectName, parsed.functionArgs); fn != nil {
			fn.Comment = commentValue
			return nil
		}

		p.addWarning(
			0,
			fmt.Sprintf(
				"function %s.%s not found for comment",
				parsed.schemaName,
				parsed.objectName,
			),
		)

	case commentObjectExtension:
		for i := range db.Extensions {
			if strings.EqualFold(db.Extensions[i].Name, parsed.objectName) {
				db.Extensions[i].Comment = commentValue
				return nil
			}
		}

		p.addWarning(0, fmt.Sprintf("extension %s not found for comment", parsed.objectName))

	case commentObjectTypeAlias:
		if typ := db.GetType(parsed.schemaName, parsed.objectName); typ != nil {
			typ.Comment = commentValue
			return nil
		}

		p.addWarning(
			0,
			fmt.Sprintf("type %s.%s not found for comment", parsed.schemaName, parsed.objectName),
		)

	case commentObjectDomain:
		if domain := db.GetDomain(parsed.schemaName, parsed.objectName); domain != nil {
			domain.Comment = commentValue
			return nil
		}

		p.addWarning(
			0,
			fmt.Sprintf("domain %s.%s not found for comment", parsed.schemaName, parsed.objectName),
		)

	case commentObjectSequence:
		if seq := db.GetSequence(parsed.schemaName, parsed.objectName); seq != nil {
			seq.Comment = commentValue
			return nil
		}

		p.addWarning(
			0,
			fmt.Sprintf(
				"sequence %s.%s not found for comment",
				parsed.schemaName,
				parsed.objectName,
			),
		)

	case commentObjectSchema:
		for i := range db.Schemas {
			if db.Schemas[i].Name == parsed.objectName {
				db.Schemas[i].Comment = commentValue
				return nil
			}
		}

		p.addWarning(0, fmt.Sprintf("schema %s not found for comment", parsed.objectName))

	case commentObjectIndex:
		for ti := range db.Tables {
			if idx := db.Tables[ti].GetIndex(parsed.objectName); idx != nil {
				idx.Comment = commentValue
				return nil
			}
		}

		p.addWarning(0, fmt.Sprintf("index %s not found for comment", parsed.objectName))

	case commentObjectPolicy:
		if table := db.GetTable(parsed.schemaName, parsed.tableName); table != nil {
			if policy := table.GetPolicy(parsed.objectName); policy != nil {
				policy.Comment = commentValue
				return nil
			}
		}

		p.addWarning(
			0,
			fmt.Sprintf(
				"policy %s on %s.%s not found for comment",
				parsed.objectName,
				parsed.schemaName,
				parsed.tableName,
			),
		)

	case commentObjectTrigger:
		for i := range db.Triggers {
			trigger := &db.Triggers[i]
			if trigger.Schema == parsed.schemaName &&
				trigger.TableName == parsed.tableName &&
				trigger.Name == parsed.objectName {
				trigger.Comment = commentValue
				return nil
			}
		}

		p.addWarning(
			0,
			fmt.Sprintf(
				"trigger %s on %s.%s not found for comment",
				parsed.objectName,
				parsed.schemaName,
				parsed.tableName,
			),
		)

	default:
		p.addWarning(0, "unsupported COMMENT ON statement")
	}

	return nil
}

func (p *Parser) applyColumnComment(
	parsed *commentStatement,
	commentValue string,
	db *schema.Database,
) {
	table := db.GetTable(parsed.schemaName, parsed.objectName)
	if table == nil {
		p.addWarning(
			0,
			fmt.Sprintf(
				"table %s.%s not found for column comment",
				parsed.schemaName,
				parsed.objectName,
			),
		)

		return
	}

	if col := table.GetColumn(parsed.columnName); col != nil {
		col.Comment = commentValue
		return
	}

	p.addWarning(
		0,
		fmt.Sprintf(
			"column %s not found in table %s.%s",
			parsed.columnName,
			parsed.schemaName,
			parsed.objectName,
		),
	)
}

func (p *Parser) parseCommentStatement( //nolint:cyclop
	stmt string,
) (*commentStatement, error) {
	tokens, err := NewLexer(stmt).Tokenize()
	if err != nil {
		return nil, WrapParseError(err, "tokenizing comment statement")
	}

	idx := nextNonCommentIndex(tokens, 0)
	if idx >= len(tokens) || upperLiteral(tokens, idx) != "COMMENT" {
		return nil, NewParseError("expected COMMENT keyword")
	}

	idx = nextNonCommentIndex(tokens, idx+1)
	if idx >= len(tokens) || upperLiteral(tokens, idx) != "ON" {
		return nil, NewParseError("expected ON keyword")
	}

	objIdx := nextNonCommentIndex(tokens, idx+1)
	if objIdx >= len(tokens) {
		return nil, NewParseError("missing comment target")
	}

	statement := &commentStatement{}
	nameStart := nextNonCommentIndex(tokens, objIdx+1)

	switch upperLiteral(tokens, objIdx) {
	case "TABLE":
		statement.objectType = commentObjectTable
		return p.populateNamedComment(statement, stmt, tokens, nameStart)

	case "COLUMN":
		statement.objectType = commentObjectColumn
		return p.populateColumnComment(statement, stmt, tokens, nameStart)

	case "VIEW":
		statement.objectType = commentObjectView
		return p.populateNamedComment(statement, stmt, tokens, nameStart)

	case "FUNCTION", "PROCEDURE", "ROUTINE":
		statement.objectType = commentObjectFunction
		return p.populateFunctionComment(statement, stmt, tokens, nameStart)

	case "EXTENSION":
		statement.objectType = commentObjectExtension
		return p.populateBareNameComment(statement, stmt, tokens, nameStart)

	case "TYPE":
		statement.objectType = commentObjectTypeAlias
		return p.populateNamedComment(statement, stmt, tokens, nameStart)

	case "DOMAIN":
		statement.objectType = commentObjectDomain
		return p.populateNamedComment(statement, stmt, tokens, nameStart)

	case "SEQUENCE":
		statement.objectType = commentObjectSequence
		return p.populateNamedComment(statement, stmt, tokens, nameStart)

	case "SCHEMA":
		statement.objectType = commentObjectSchema
		return p.populateBareNameComment(statement, stmt, tokens, nameStart)

	case "INDEX":
		statement.objectType = commentObjectIndex
		return p.populateNamedComment(statement, stmt, tokens, nameStart)

	case "POLICY":
		statement.objectType = commentObjectPolicy
		return p.populateOnTableComment(statement, stmt, tokens, nameStart)

	case "TRIGGER":
		statement.objectType = commentObjectTrigger
		return p.populateOnTableComment(statement, stmt, tokens, nameStart)

	default:
		return nil, NewParseError("unsupported COMMENT ON target")
	}
}

func (p *Parser) populateNamedComment(
	statement *commentStatement,
	stmt string,
	tokens []Token,
	startIdx int,
) (*commentStatement, error) {
	isIdx := findKeyword(tokens, "IS", startIdx)
	if isIdx == -1 {
		return nil, NewParseError("missing IS keyword")
	}

	startIdx = nextNonCommentIndex(tokens, startIdx)
	if startIdx >= isIdx {
		return nil, NewParseError("missing comment target name")
	}

	literal := strings.TrimSpace(stmt[tokens[startIdx].Start:tokens[isIdx].Start])
	if literal == "" {
		return nil, NewParseError("empty comment target")
	}

	schemaName, objectName := p.splitSchemaTable(literal)
	statement.schemaName = schemaName
	statement.objectName = objectName

	commentText, isNull, err := parseCommentText(tokens, isIdx)
	if err != nil {
		return nil, err
	}

	statement.commentText = commentText
	statement.isNull = isNull

	return statement, nil
}

// populateOnTableComment handles COMMENT ON POLICY/TRIGGER name ON table.
func (p *Parser) populateOnTableComment(
	statement *commentStatement,
	stmt string,
	tokens []Token,
	startIdx int,
) (*commentStatement, error) {
	isIdx := findKeyword(tokens, "IS", startIdx)
	if isIdx == -1 {
		return nil, NewParseError("missing IS keyword")
	}

	onIdx := findKeyword(tokens, "ON", startIdx)
	if onIdx == -1 || onIdx >= isIdx {
		return nil, NewParseError("missing ON clause")
	}

	startIdx = nextNonCommentIndex(tokens, startIdx)
	if startIdx >= onIdx {
		return nil, NewParseError("missing comment target name")
	}

	nameLiteral := strings.TrimSpace(stmt[tokens[startIdx].Start:tokens[onIdx].Start])
	if nameLiteral == "" {
		return nil, NewParseError("empty comment target")
	}

	tableIdx := nextNonCommentIndex(tokens, onIdx+1)
	if tableIdx >= isIdx {
		return nil, NewParseError("missing table reference")
	}

	tableLiteral := strings.TrimSpace(stmt[tokens[tableIdx].Start:tokens[isIdx].Start])
	if tableLiteral == "" {
		return nil, NewParseError("empty table reference")
	}

	schemaName, tableName := p.splitSchemaTable(tableLiteral)
	statement.objectName = p.normalizeIdent(nameLiteral)
	statement.schemaName = schemaName
	statement.tableName = tableName

	commentText, isNull, err := parseCommentText(tokens, isIdx)
	if err != nil {
		return nil, err
	}

	statement.commentText = commentText
	statement.isNull = isNull

	return statement, nil
}

func (p *Parser) populateColumnComment(
	statement *commentStatement,
	stmt string,
	tokens []Token,
	startIdx int,
) (*commentStatement, error) {
	isIdx := findKeyword(tokens, "IS", startIdx)
	if isIdx == -1 {
		return nil, NewParseError("missing IS keyword")
	}

	startIdx = nextNonCommentIndex(tokens, startIdx)
	if startIdx >= isIdx {
		return nil, NewParseError("missing column reference")
	}

	literal := strings.TrimSpace(stmt[tokens[startIdx].Start:tokens[isIdx].Start])
	if literal == "" {
		return nil, NewParseError("empty column reference")
	}

	schemaName, tableName, columnName, err := parseColumnReferenceLiteral(p, literal)
	if err != nil {
		return nil, WrapParseError(err, "parsing column reference")
	}

	statement.schemaName = schemaName
	statement.objectName = tableName
	statement.columnName = columnName

	commentText, isNull, err := parseCommentText(tokens, isIdx)
	if err != nil {
		return nil, err
	}

	statement.commentText = commentText
	statement.isNull = isNull

	return statement, nil
}

func (p *Parser) populateFunctionComment(
	statement *commentStatement,
	stmt string,
	tokens []Token,
	startIdx int,
) (*commentStatement, error) {
	isIdx := findKeyword(tokens, "IS", startIdx)
	if isIdx == -1 {
		return nil, NewParseError("missing IS keyword")
	}

	startIdx = nextNonCommentIndex(tokens, startIdx)
	if startIdx >= isIdx {
		return nil, NewParseError("missing function reference")
	}

	literal := strings.TrimSpace(stmt[tokens[startIdx].Start:tokens[isIdx].Start])
	if literal == "" {
		return nil, NewParseError("empty function reference")
	}

	schemaName, funcName, args, err := parseFunctionSignatureLiteral(p, literal)
	if err != nil {
		return nil, WrapParseError(err, "parsing function signature")
	}

	statement.schemaName = schemaName
	statement.objectName = funcName
	statement.functionArgs = args

	commentText, isNull, err := parseCommentText(tokens, isIdx)
	if err != nil {
		return nil, err
	}

	statement.commentText = commentText
	statement.isNull = isNull

	return statement, nil
}

func (p *Parser) populateBareNameComment(
	statement *commentStatement,
	stmt string,
	tokens []Token,
	startIdx int,
) (*commentStatement, error) {
	isIdx := findKeyword(tokens, "IS", startIdx)
	if isIdx == -1 {
		return nil, NewParseError("missing IS keyword")
	}

	startIdx = nextNonCommentIndex(tokens, startIdx)
	if startIdx >= isIdx {
		return nil, NewParseError("missing comment target name")
	}

	literal := strings.TrimSpace(stmt[tokens[startIdx].Start:tokens[isIdx].Start])
	if literal == "" {
		return nil, NewParseError("empty comment target")
	}

	statement.objectName = strings.ToLower(p.normalizeIdent(literal))

	commentText, isNull, err := parseCommentText(tokens, isIdx)
	if err != nil {
		return nil, err
	}

	statement.commentText = commentText
	statement.isNull = isNull

	return statement, nil
}

func parseCommentText(tokens []Token, isIdx int) (string, bool, error) {
	commentIdx := nextNonCommentIndex(tokens, isIdx+1)
	if commentIdx >= len(tokens) {
		return "", false, NewParseError("missing comment text")
	}

	if upperLiteral(tokens, commentIdx) == "NULL" {
		return "", true, nil
	}

	var builder strings.Builder

	for i := commentIdx; i < len(tokens); i++ {
		token := tokens[i]
		if token.Type == TokenComment {
			continue
		}

		if token.Type == TokenString {
			part, err := decodeStringLiteral(token.Literal)
			if err != nil {
				return "", false, err
			}

			builder.WriteString(part)

			continue
		}

		if token.Type == TokenSemicolon || token.Type == TokenEOF {
			break
		}

		break
	}

	if builder.Len() == 0 {
		return "", false, NewParseError("cannot extract comment text")
	}

	return builder.String(), false, nil
}

func parseColumnReferenceLiteral(p *Parser, literal string) (string, string, string, error) {
	refTokens, err := NewLexer(literal).Tokenize()
	if err != nil {
		return "", "", "", err
	}

	var segments []string

	for _, token := range refTokens {
		switch token.Type {
		case TokenIdentifier, TokenQuotedIdentifier:
			segments = append(segments, strings.TrimSpace(token.Literal))
		case TokenEOF, TokenComment:
			continue
		case TokenDot:
			continue
		default:
			return "", "", "", NewParseError("invalid column reference")
		}
	}

	if len(segments) < 2 {
		return "", "", "", NewParseError("invalid column reference")
	}

	columnName := p.normalizeIdent(segments[len(segments)-1])
	tableLiteral := strings.Join(segments[:len(segments)-1], ".")
	schemaName, tableName := p.splitSchemaTable(tableLiteral)

	return schemaName, tableName, columnName, nil
}

func parseFunctionSignatureLiteral(
	p *Parser,
	literal string,
) (string, string, []string, error) {
	literal = strings.TrimSpace(literal)
	if literal == "" {
		return "", "", nil, NewParseError("empty function reference")
	}

	openIdx := strings.Index(literal, "(")
	if openIdx == -1 {
		// COMMENT ON FUNCTION without an argument list is legal when the
		// name is unambiguous.
		schemaName, funcName := p.splitSchemaTable(literal)
		return schemaName, funcName, nil, nil
	}

	closeIdx := strings.LastIndex(literal, ")")
	if closeIdx == -1 || closeIdx < openIdx {
		return "", "", nil, NewParseError("missing function argument list")
	}

	namePart := strings.TrimSpace(literal[:openIdx])
	argsPart := strings.TrimSpace(literal[openIdx+1 : closeIdx])

	schemaName, funcName := p.splitSchemaTable(namePart)

	var args []string

	if argsPart != "" {
		for _, arg := range splitByComma(argsPart) {
			args = append(args, strings.TrimSpace(arg))
		}
	}

	return schemaName, funcName, args, nil
}

func decodeStringLiteral(literal string) (string, error) {
	literal = strings.TrimSpace(literal)
	if len(literal) < 2 {
		return "", NewParseError("invalid string literal")
	}

	if literal[0] == '\'' && literal[len(literal)-1] == '\'' {
		content := literal[1 : len(literal)-1]
		content = strings.ReplaceAll(content, "''", "'")

		return content, nil
	}

	if literal[0] == '$' {
		tagEnd := strings.Index(literal[1:], "$")
		if tagEnd == -1 {
			return "", NewParseError("invalid dollar-quoted string")
		}

		tagLen := tagEnd + 2
		if len(literal) < 2*tagLen {
			return "", NewParseError("invalid dollar-quoted string")
		}

		return literal[tagLen : len(literal)-tagLen], nil
	}

	return "", NewParseError("unsupported string literal format")
}
