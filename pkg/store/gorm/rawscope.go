package gorm

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/store"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// QueryWithTenant executes a raw parameterized SELECT after injecting the
// ownership predicate against the statement's registered target table. The
// predicate value is bound as a parameter, never concatenated. Statements
// whose target cannot be resolved unambiguously fail with ErrUnscopableQuery
// before anything reaches the database.
func (s *Store) QueryWithTenant(ctx context.Context, tc tenant.Context, query string, params ...any) ([]store.Record, error) {
	if !tc.Valid() {
		return nil, store.ErrAuthenticationRequired
	}

	scoped, args, err := scopeQuery(s.registry, tc.TenantID, query, params)
	if err != nil {
		return nil, err
	}

	return s.scan(ctx, "query", scoped, args)
}

// sqlToken is a lexical unit of a statement: a bare word, a quoted
// identifier, a placeholder or a single punctuation rune. String literal
// contents are skipped entirely so they can never influence scoping.
type sqlToken struct {
	text   string
	upper  string
	depth  int
	quoted bool
	start  int
	end    int
}

// unscopable wraps ErrUnscopableQuery with a reason for logs.
func unscopable(reason string) error {
	return fmt.Errorf("%w: %s", store.ErrUnscopableQuery, reason)
}

// lexQuery tokenizes a statement. It fails closed on anything that would
// make scoping unreliable: comments, multiple statements, unterminated
// literals.
func lexQuery(query string) ([]sqlToken, error) {
	var tokens []sqlToken
	depth := 0
	i := 0
	n := len(query)

	for i < n {
		c := query[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'':
			// Single-quoted literal, '' escapes a quote.
			j := i + 1
			for {
				if j >= n {
					return nil, unscopable("unterminated string literal")
				}
				if query[j] == '\'' {
					if j+1 < n && query[j+1] == '\'' {
						j += 2
						continue
					}
					break
				}
				j++
			}
			i = j + 1
		case c == '"':
			j := i + 1
			for j < n && query[j] != '"' {
				j++
			}
			if j >= n {
				return nil, unscopable("unterminated quoted identifier")
			}
			tokens = append(tokens, sqlToken{
				text:   query[i+1 : j],
				upper:  strings.ToUpper(query[i+1 : j]),
				depth:  depth,
				quoted: true,
				start:  i,
				end:    j + 1,
			})
			i = j + 1
		case c == '-' && i+1 < n && query[i+1] == '-':
			return nil, unscopable("comments are not allowed")
		case c == '/' && i+1 < n && query[i+1] == '*':
			return nil, unscopable("comments are not allowed")
		case c == ';':
			return nil, unscopable("multiple statements are not allowed")
		case c == '(':
			tokens = append(tokens, sqlToken{text: "(", upper: "(", depth: depth, start: i, end: i + 1})
			depth++
			i++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, unscopable("unbalanced parentheses")
			}
			tokens = append(tokens, sqlToken{text: ")", upper: ")", depth: depth, start: i, end: i + 1})
			i++
		case c == '?':
			tokens = append(tokens, sqlToken{text: "?", upper: "?", depth: depth, start: i, end: i + 1})
			i++
		case isWordByte(c):
			j := i + 1
			for j < n && isWordByte(query[j]) {
				j++
			}
			word := query[i:j]
			tokens = append(tokens, sqlToken{
				text:  word,
				upper: strings.ToUpper(word),
				depth: depth,
				start: i,
				end:   j,
			})
			i = j
		default:
			tokens = append(tokens, sqlToken{text: string(c), upper: string(c), depth: depth, start: i, end: i + 1})
			i++
		}
	}

	if depth != 0 {
		return nil, unscopable("unbalanced parentheses")
	}
	return tokens, nil
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Words that cannot serve as a table alias.
var reservedWords = map[string]struct{}{
	"WHERE": {}, "JOIN": {}, "INNER": {}, "LEFT": {}, "RIGHT": {}, "FULL": {},
	"CROSS": {}, "OUTER": {}, "NATURAL": {}, "ON": {}, "USING": {}, "GROUP": {},
	"ORDER": {}, "LIMIT": {}, "OFFSET": {}, "HAVING": {}, "AS": {}, "UNION": {},
	"FOR": {}, "WINDOW": {}, "FETCH": {}, "INTERSECT": {}, "EXCEPT": {},
}

// Depth-zero words that start the clause tail after WHERE.
var tailWords = map[string]struct{}{
	"GROUP": {}, "HAVING": {}, "ORDER": {}, "LIMIT": {}, "OFFSET": {},
	"FETCH": {}, "WINDOW": {}, "FOR": {},
}

// scopeQuery resolves the statement's FROM target against the registry and
// rewrites the statement so the ownership predicate is the first condition
// of the WHERE clause. Any pre-existing WHERE expression is parenthesized
// and ANDed after it, so crafted OR conditions cannot widen the scope.
func scopeQuery(reg *registry.Registry, tenantID, query string, params []any) (string, []any, error) {
	tokens, err := lexQuery(query)
	if err != nil {
		return "", nil, err
	}
	if len(tokens) == 0 || tokens[0].upper != "SELECT" || tokens[0].depth != 0 {
		return "", nil, unscopable("only SELECT statements can be tenant-bound")
	}

	placeholders := 0
	for _, tok := range tokens {
		if tok.text == "?" {
			placeholders++
		}
	}
	if placeholders != len(params) {
		return "", nil, store.NewValidationError("params",
			fmt.Sprintf("statement has %d placeholders, got %d params", placeholders, len(params)))
	}

	var desc *registry.Descriptor
	alias := ""
	fromSeen := false
	inFromClause := false

	for idx := 0; idx < len(tokens); idx++ {
		tok := tokens[idx]
		if tok.depth != 0 {
			// A registered table inside a subquery would be scanned without
			// the owner predicate. Fail closed, same as a second table in a
			// join.
			if _, registered := reg.LookupTable(strings.ToLower(tok.text)); registered {
				return "", nil, unscopable(fmt.Sprintf("registered table %q inside a subquery cannot be tenant-bound", tok.text))
			}
			continue
		}
		if tok.quoted {
			continue
		}
		if _, isTail := tailWords[tok.upper]; isTail || tok.upper == "WHERE" {
			inFromClause = false
		}
		switch tok.upper {
		case "UNION", "INTERSECT", "EXCEPT":
			return "", nil, unscopable("set operations cannot be tenant-bound")
		case "FROM", "JOIN":
			if idx+1 >= len(tokens) {
				return "", nil, unscopable("statement ends at " + tok.upper)
			}
			next := tokens[idx+1]
			if next.text == "(" {
				return "", nil, unscopable("subquery targets cannot be tenant-bound")
			}
			target, ok := reg.LookupTable(strings.ToLower(next.text))
			if tok.upper == "JOIN" {
				if ok {
					// Two registered tables means the owner binding is
					// ambiguous. Fail closed.
					return "", nil, unscopable("statement references more than one registered table")
				}
				continue
			}
			if tok.upper == "FROM" && fromSeen {
				return "", nil, unscopable("statement has more than one FROM clause")
			}
			fromSeen = true
			inFromClause = true
			if !ok {
				return "", nil, unscopable(fmt.Sprintf("table %q is not registered", next.text))
			}
			desc = target
			alias = next.text

			// Optional alias: "AS name" or a bare non-reserved word.
			aliasIdx := idx + 2
			if aliasIdx < len(tokens) && tokens[aliasIdx].depth == 0 && tokens[aliasIdx].upper == "AS" {
				aliasIdx++
			}
			if aliasIdx < len(tokens) && tokens[aliasIdx].depth == 0 {
				if _, reserved := reservedWords[tokens[aliasIdx].upper]; !reserved && isWordToken(tokens[aliasIdx]) {
					alias = tokens[aliasIdx].text
				}
			}
		case ",":
			// A bare comma in the FROM clause is an implicit cross join.
			if inFromClause {
				return "", nil, unscopable("implicit joins cannot be tenant-bound")
			}
		}
	}

	if desc == nil {
		return "", nil, unscopable("statement has no resolvable FROM clause")
	}

	predicate := fmt.Sprintf("%s.%s = ?", alias, desc.OwnerColumn)

	wIdx := whereIndex(tokens)
	if wIdx >= 0 {
		whereTok := tokens[wIdx]
		tailStart := len(query)
		argPos := 0
		for _, tok := range tokens {
			if tok.text == "?" && tok.start < whereTok.start {
				argPos++
			}
		}
		for _, tok := range tokens[wIdx+1:] {
			if tok.depth == 0 && !tok.quoted {
				if _, isTail := tailWords[tok.upper]; isTail {
					tailStart = tok.start
					break
				}
			}
		}

		condition := strings.TrimSpace(query[whereTok.end:tailStart])
		if condition == "" {
			return "", nil, unscopable("empty WHERE clause")
		}
		tail := ""
		if tailStart < len(query) {
			tail = " " + query[tailStart:]
		}
		scoped := query[:whereTok.end] + " " + predicate + " AND (" + condition + ")" + tail

		args := make([]any, 0, len(params)+1)
		args = append(args, params[:argPos]...)
		args = append(args, tenantID)
		args = append(args, params[argPos:]...)
		return scoped, args, nil
	}

	// No WHERE clause: insert one ahead of the tail, if any.
	insertAt := len(query)
	for _, tok := range tokens {
		if tok.depth == 0 && !tok.quoted {
			if _, isTail := tailWords[tok.upper]; isTail {
				insertAt = tok.start
				break
			}
		}
	}
	argPos := 0
	for _, tok := range tokens {
		if tok.text == "?" && tok.start < insertAt {
			argPos++
		}
	}

	tail := ""
	if insertAt < len(query) {
		tail = " " + query[insertAt:]
	}
	scoped := strings.TrimRight(query[:insertAt], " \t\n\r") + " WHERE " + predicate + tail
	args := make([]any, 0, len(params)+1)
	args = append(args, params[:argPos]...)
	args = append(args, tenantID)
	args = append(args, params[argPos:]...)
	return scoped, args, nil
}

func whereIndex(tokens []sqlToken) int {
	for idx, tok := range tokens {
		if tok.depth == 0 && !tok.quoted && tok.upper == "WHERE" {
			return idx
		}
	}
	return -1
}

func isWordToken(tok sqlToken) bool {
	if tok.text == "" {
		return false
	}
	return isWordByte(tok.text[0]) && tok.text[0] != '.' && !(tok.text[0] >= '0' && tok.text[0] <= '9')
}
