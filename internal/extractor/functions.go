package extractor

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
)

func (e *Extractor) extractFunctions(ctx context.Context) ([]schema.Function, error) {
	var functions []schema.Function

	err := e.queryHelper.FetchAll(ctx, e.queries.functionsQuery(), func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var fn schema.Function

		if err := rows.Scan(
			&fn.Schema,
			&fn.Name,
			scanner.String("identityArgs"),
			scanner.String("namedArgs"),
			scanner.String("returnType"),
			&fn.Language,
			scanner.String("body"),
			&fn.IsProcedure,
			&fn.IsStrict,
			&fn.IsSecurityDefiner,
			scanner.String("volatility"),
			scanner.String("comment"),
			scanner.String("owner"),
			scanner.String("definition"),
		); err != nil {
			return util.WrapError("scan function", err)
		}

		fn.ArgumentTypes = splitArguments(scanner.GetString("identityArgs"))
		fn.ReturnType = scanner.GetString("returnType")
		fn.Body = strings.TrimSpace(scanner.GetString("body"))
		fn.Comment = scanner.GetString("comment")
		fn.Owner = scanner.GetString("owner")
		fn.Definition = scanner.GetString("definition")

		if !fn.IsProcedure {
			fn.Volatility = scanner.GetString("volatility")
		}

		populateArgumentNames(&fn, scanner.GetString("namedArgs"))

		functions = append(functions, fn)

		return nil
	})
	if err != nil {
		return nil, util.WrapError("fetch functions", err)
	}

	return functions, nil
}

// splitArguments splits a pg_get_function_identity_arguments rendering on
// top-level commas.
func splitArguments(args string) []string {
	args = strings.TrimSpace(args)
	if args == "" {
		return nil
	}

	var (
		result  []string
		current strings.Builder
	)

	depth := 0

	for _, ch := range args {
		switch ch {
		case '(', '[':
			depth++

			current.WriteRune(ch)
		case ')', ']':
			depth--

			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				result = append(result, strings.TrimSpace(current.String()))
				current.Reset()

				continue
			}

			current.WriteRune(ch)
		default:
			current.WriteRune(ch)
		}
	}

	if arg := strings.TrimSpace(current.String()); arg != "" {
		result = append(result, arg)
	}

	return result
}

// populateArgumentNames fills names and modes from the full argument
// rendering ("IN n integer, OUT total numeric"). Entries without a name
// leave an empty slot so positions stay aligned with ArgumentTypes.
func populateArgumentNames(fn *schema.Function, namedArgs string) {
	args := splitArguments(namedArgs)
	if len(args) != len(fn.ArgumentTypes) {
		return
	}

	names := make([]string, len(args))
	modes := make([]string, len(args))

	named := false

	for i, arg := range args {
		mode := "IN"

		for _, m := range []string{"INOUT ", "OUT ", "IN ", "VARIADIC "} {
			if strings.HasPrefix(arg, m) {
				mode = strings.TrimSpace(m)
				arg = strings.TrimPrefix(arg, m)

				break
			}
		}

		modes[i] = mode

		if rest := strings.TrimPrefix(arg, fn.ArgumentTypes[i]); rest == arg {
			// the text before the type spelling is the argument name
			if idx := strings.LastIndex(arg, " "+fn.ArgumentTypes[i]); idx > 0 {
				names[i] = arg[:idx]
				named = true
			}
		}
	}

	if named {
		fn.ArgumentNames = names
		fn.ArgumentModes = modes
	}
}

func (e *Extractor) extractTriggers(ctx context.Context) ([]schema.Trigger, error) {
	var triggers []schema.Trigger

	err := e.queryHelper.FetchAll(ctx, e.queries.triggersQuery(), func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var trigger schema.Trigger

		if err := rows.Scan(
			&trigger.Schema,
			&trigger.Name,
			&trigger.TableName,
			&trigger.Timing,
			&trigger.Events,
			&trigger.ForEachRow,
			&trigger.Definition,
			&trigger.FunctionSchema,
			&trigger.FunctionName,
			scanner.String("comment"),
		); err != nil {
			return util.WrapError("scan trigger", err)
		}

		trigger.Comment = scanner.GetString("comment")
		trigger.WhenCondition = parseTriggerWhen(trigger.Definition)
		trigger.Arguments = parseTriggerArguments(trigger.Definition)

		triggers = append(triggers, trigger)

		return nil
	})
	if err != nil {
		return nil, util.WrapError("fetch triggers", err)
	}

	return triggers, nil
}

// parseTriggerArguments pulls the function call arguments out of the
// trailing EXECUTE FUNCTION clause of pg_get_triggerdef output.
func parseTriggerArguments(definition string) []string {
	idx := strings.LastIndex(definition, "EXECUTE FUNCTION ")
	if idx == -1 {
		idx = strings.LastIndex(definition, "EXECUTE PROCEDURE ")
	}

	if idx == -1 {
		return nil
	}

	open := strings.Index(definition[idx:], "(")
	closing := strings.LastIndex(definition, ")")

	if open == -1 || idx+open >= closing {
		return nil
	}

	inner := strings.TrimSpace(definition[idx+open+1 : closing])
	if inner == "" {
		return nil
	}

	return splitTriggerArguments(inner)
}

// splitTriggerArguments splits on commas outside single-quoted literals.
func splitTriggerArguments(args string) []string {
	var (
		result  []string
		current strings.Builder
		inStr   bool
	)

	for i := 0; i < len(args); i++ {
		ch := args[i]

		switch {
		case ch == '\'':
			if inStr && i+1 < len(args) && args[i+1] == '\'' {
				current.WriteString("''")
				i++

				continue
			}

			inStr = !inStr

			current.WriteByte(ch)

		case ch == ',' && !inStr:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()

		default:
			current.WriteByte(ch)
		}
	}

	if arg := strings.TrimSpace(current.String()); arg != "" {
		result = append(result, arg)
	}

	return result
}

// parseTriggerWhen pulls the WHEN expression out of pg_get_triggerdef
// output; pg_catalog has no separate column for it.
func parseTriggerWhen(definition string) string {
	idx := strings.Index(definition, " WHEN (")
	if idx == -1 {
		return ""
	}

	rest := definition[idx+len(" WHEN ("):]

	depth := 1
	for i, ch := range rest {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return rest[:i]
			}
		}
	}

	return ""
}
