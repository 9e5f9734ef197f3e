package parser

import (
	"strings"

	"github.com/pgschema/pgcanon/internal/schema"
)

type viewStatement struct {
	schemaName  string
	viewName    string
	definition  string
	checkOption string
}

func (p *Parser) parseCreateView(stmt string, db *schema.Database) error {
	parsed, err := p.parseViewStatement(stmt)
	if err != nil || parsed == nil {
		return err
	}

	view := schema.View{
		Schema:      parsed.schemaName,
		Name:        parsed.viewName,
		Definition:  parsed.definition,
		CheckOption: parsed.checkOption,
	}

	for i, existing := range db.Views {
		if existing.Schema == parsed.schemaName && existing.Name == parsed.viewName {
			db.Views[i] = view
			return nil
		}
	}

	db.Views = append(db.Views, view)

	return nil
}

func (p *Parser) parseViewStatement( //nolint:cyclop,gocognit,gocyclo
	stmt string,
) (*viewStatement, error) {
	tokens, err := NewLexer(stmt).Tokenize()
	if err != nil {
		return nil, WrapParseError(err, "tokenizing view statement")
	}

	if len(tokens) == 0 {
		return nil, NewParseError("empty view statement")
	}

	idx := nextNonCommentIndex(tokens, 0)
	if idx >= len(tokens) || upperLiteral(tokens, idx) != "CREATE" {
		return nil, NewParseError("expected CREATE keyword")
	}

	idx = nextNonCommentIndex(tokens, idx+1)

	if idx < len(tokens) && upperLiteral(tokens, idx) == "OR" {
		replaceIdx := nextNonCommentIndex(tokens, idx+1)
		if replaceIdx >= len(tokens) || upperLiteral(tokens, replaceIdx) != "REPLACE" {
			return nil, NewParseError("expected REPLACE keyword")
		}

		idx = nextNonCommentIndex(tokens, replaceIdx+1)
	}

	if idx >= len(tokens) || upperLiteral(tokens, idx) != "VIEW" {
		return nil, NewParseError("expected VIEW keyword")
	}

	idx = nextNonCommentIndex(tokens, idx+1)

	if idx < len(tokens) && upperLiteral(tokens, idx) == "IF" {
		notIdx := nextNonCommentIndex(tokens, idx+1)

		existsIdx := nextNonCommentIndex(tokens, notIdx+1)
		if notIdx >= len(tokens) || upperLiteral(tokens, notIdx) != "NOT" ||
			existsIdx >= len(tokens) || upperLiteral(tokens, existsIdx) != "EXISTS" {
			return nil, NewParseError("malformed IF NOT EXISTS clause")
		}

		idx = nextNonCommentIndex(tokens, existsIdx+1)
	}

	if idx >= len(tokens) {
		return nil, NewParseError("missing view name")
	}

	nameStartIdx := idx
	nameStart := tokens[nameStartIdx].Start
	cur := nameStartIdx
	expectIdentifier := true
	nameEnd := nameStart

	for cur < len(tokens) {
		tok := tokens[cur]
		if tok.Type == TokenComment {
			cur++
			continue
		}

		if expectIdentifier {
			if tok.Type != TokenIdentifier && tok.Type != TokenQuotedIdentifier {
				break
			}

			nameEnd = tok.End
			cur++
			expectIdentifier = false

			continue
		}

		if tok.Type != TokenDot {
			break
		}

		nameEnd = tok.End
		cur++
		expectIdentifier = true
	}

	if expectIdentifier {
		return nil, NewParseError("invalid view name")
	}

	nameLiteral := strings.TrimSpace(stmt[nameStart:nameEnd])
	if nameLiteral == "" {
		return nil, NewParseError("empty view name")
	}

	idx = cur

	idx = nextNonCommentIndex(tokens, idx)
	if idx < len(tokens) && tokens[idx].Type == TokenLParen {
		_, afterColsIdx, err := extractParenthesizedLiteral(stmt, tokens, idx)
		if err != nil {
			return nil, err
		}

		idx = afterColsIdx
	}

	idx = nextNonCommentIndex(tokens, idx)

	if idx < len(tokens) && upperLiteral(tokens, idx) == "WITH" {
		nextIdx := nextNonCommentIndex(tokens, idx+1)
		if nextIdx < len(tokens) && tokens[nextIdx].Type == TokenLParen {
			_, afterWithIdx, err := extractParenthesizedLiteral(stmt, tokens, nextIdx)
			if err != nil {
				return nil, err
			}

			idx = nextNonCommentIndex(tokens, afterWithIdx)
		}
	}

	asIdx := findKeyword(tokens, "AS", idx)
	if asIdx == -1 {
		return nil, NewParseError("missing AS clause")
	}

	defStartIdx := nextNonCommentIndex(tokens, asIdx+1)
	if defStartIdx >= len(tokens) {
		return nil, NewParseError("missing view definition")
	}

	defStart := tokens[defStartIdx].Start
	defEnd := len(stmt)

	if semiIdx := findToken(tokens, TokenSemicolon, defStartIdx); semiIdx != -1 {
		defEnd = tokens[semiIdx].Start
	}

	checkOption := ""
	upperStmt := strings.ToUpper(stmt)

	// WITH [CASCADED|LOCAL] CHECK OPTION trails the query.
	if tailIdx := strings.LastIndex(upperStmt, "CHECK OPTION"); tailIdx != -1 && tailIdx >= defStart {
		withIdx := strings.LastIndex(upperStmt[:tailIdx], "WITH")
		if withIdx != -1 && withIdx >= defStart {
			option := strings.TrimSpace(upperStmt[withIdx+len("WITH") : tailIdx])
			if option != "CASCADED" && option != "LOCAL" && option != "" {
				option = ""
			}

			if option == "" {
				option = "CASCADED"
			}

			checkOption = option
			defEnd = withIdx
		}
	}

	definition := strings.TrimSpace(stmt[defStart:defEnd])
	definition = strings.TrimSuffix(definition, ";")
	definition = strings.TrimSpace(definition)
	definition = stripInlineComments(definition)

	schemaName, viewName := p.splitSchemaTable(nameLiteral)

	return &viewStatement{
		schemaName:  schemaName,
		viewName:    viewName,
		definition:  definition,
		checkOption: checkOption,
	}, nil
}

func stripInlineComments(sql string) string {
	lines := strings.Split(sql, "\n")

	var result []string

	for _, line := range lines {
		if idx := strings.Index(line, "--"); idx >= 0 {
			inString := false

			for i := 0; i < idx; i++ {
				if line[i] == '\'' {
					inString = !inString
				}
			}

			if !inString {
				line = line[:idx]
			}
		}

		if trimmed := strings.TrimSpace(line); trimmed != "" {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
