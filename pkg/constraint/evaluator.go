// Package constraint implements the small boolean expression language used
// to gate template nodes: comparisons between record properties, literals,
// and the @id token, composed with !, && and ||. The grammar is fixed and
// evaluated by a dedicated parser; expressions are never handed to a host
// language runtime.
package constraint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-databind/pkg/record"
)

// Context carries everything an expression can observe: the record whose
// properties bare identifiers resolve against, the identifier the @id token
// substitutes (the enclosing record's for scope-filter sugar, the current
// record's otherwise), and the full batch for reference resolution.
type Context struct {
	Record  record.Record
	ScopeID string
	All     []record.Record
}

// Result is the outcome of evaluating an expression. Replacement is set
// when the expression was a reference-resolution request (@id compared
// against a reference-valued property) that resolved: the caller should
// continue rendering with the resolved record.
type Result struct {
	OK          bool
	Replacement record.Record
	// Unresolved flags a reference-resolution request whose reference had
	// no matching record in the batch. The expression is false; callers
	// may report it separately from an ordinary failed constraint.
	Unresolved bool
}

// Evaluate parses and evaluates an expression. A malformed expression
// returns an error and a false result; it never panics.
func Evaluate(expr string, ctx Context) (Result, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Result{OK: true}, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return Result{}, err
	}
	node, err := parseExpression(tokens)
	if err != nil {
		return Result{}, err
	}

	// The exact shape `@id == <property>` (either side order) doubles as a
	// reference-resolution request.
	if cmp, ok := node.(exprCompare); ok && cmp.op == tokenEq {
		if prop, isRequest := referenceRequest(cmp); isRequest {
			return evaluateReferenceRequest(prop, ctx), nil
		}
	}

	ok, err := node.eval(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{OK: ok}, nil
}

// MatchesFilter implements the scope-filter shorthand: true when the
// candidate's named property is a reference to (or literal equal of) the
// enclosing scope identifier. Defined as sugar for `property == @id`
// evaluated with the enclosing record's identifier.
func MatchesFilter(candidate record.Record, property, scopeID string) bool {
	if scopeID == "" {
		return false
	}
	value, ok := candidate.Get(property)
	if !ok {
		return false
	}
	return record.RefID(coerceString(value)) == scopeID
}

// referenceRequest reports whether a comparison pairs the @id token with a
// bare property identifier, returning the property name.
func referenceRequest(cmp exprCompare) (string, bool) {
	if cmp.left.kind == operandID && cmp.right.kind == operandIdentifier {
		return cmp.right.raw, true
	}
	if cmp.right.kind == operandID && cmp.left.kind == operandIdentifier {
		return cmp.left.raw, true
	}
	return "", false
}

// evaluateReferenceRequest gates on the named property and, when its value
// is an identifier reference, resolves it against the batch. Resolution
// failure means false with no substitution.
func evaluateReferenceRequest(property string, ctx Context) Result {
	value, ok := ctx.Record.Get(property)
	if !ok {
		return Result{}
	}
	raw := coerceString(value)
	if !record.IsReference(raw) {
		return Result{OK: raw != "" && raw == ctx.ScopeID}
	}
	resolved, found := record.Resolve(raw, ctx.All)
	if !found {
		return Result{Unresolved: true}
	}
	return Result{OK: true, Replacement: resolved}
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenEq
	tokenNeq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	peek := func() byte {
		if i >= len(input) {
			return 0
		}
		return input[i]
	}

	for i < len(input) {
		ch := peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			i++
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
		case ch == ')':
			i++
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
		case ch == '!':
			i++
			if peek() == '=' {
				i++
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
			} else {
				tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			}
		case ch == '=':
			i++
			if peek() != '=' {
				return nil, errors.New("constraint: unexpected '='; use '=='")
			}
			i++
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
		case ch == '<':
			i++
			if peek() == '=' {
				i++
				tokens = append(tokens, token{kind: tokenLte, raw: "<="})
			} else {
				tokens = append(tokens, token{kind: tokenLt, raw: "<"})
			}
		case ch == '>':
			i++
			if peek() == '=' {
				i++
				tokens = append(tokens, token{kind: tokenGte, raw: ">="})
			} else {
				tokens = append(tokens, token{kind: tokenGt, raw: ">"})
			}
		case ch == '&':
			i++
			if peek() != '&' {
				return nil, errors.New("constraint: unexpected '&'; use '&&'")
			}
			i++
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
		case ch == '|':
			i++
			if peek() != '|' {
				return nil, errors.New("constraint: unexpected '|'; use '||'")
			}
			i++
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
		case ch == '"' || ch == '\'':
			quote := ch
			i++
			start := i
			escaped := false
			closed := false
			for i < len(input) {
				c := input[i]
				i++
				if escaped {
					escaped = false
					continue
				}
				if c == '\\' {
					escaped = true
					continue
				}
				if c == quote {
					raw := string(quote) + input[start:i-1] + string(quote)
					value, err := strconv.Unquote(raw)
					if err != nil {
						// Single-quoted strings with no escapes fall back
						// to the raw slice; Unquote only handles doubles.
						if quote == '\'' && !strings.ContainsRune(input[start:i-1], '\\') {
							value = input[start : i-1]
						} else {
							return nil, fmt.Errorf("constraint: invalid string literal: %w", err)
						}
					}
					tokens = append(tokens, token{kind: tokenString, raw: value})
					closed = true
					break
				}
			}
			if !closed {
				return nil, errors.New("constraint: unterminated string literal")
			}
		default:
			start := i
			for i < len(input) && !strings.ContainsRune(" \t\n\r()!=&|<>", rune(input[i])) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
			default:
				if looksLikeNumber(raw) {
					tokens = append(tokens, token{kind: tokenNumber, raw: raw})
				} else {
					tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
				}
			}
		}
	}
	return tokens, nil
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return false
	}
	return true
}
