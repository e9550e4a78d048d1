package constraint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-databind/pkg/record"
)

// idToken is the operand substituted with the scope identifier.
const idToken = "@id"

type exprNode interface {
	eval(ctx Context) (bool, error)
}

type exprOr struct{ left, right exprNode }

func (n exprOr) eval(ctx Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return n.right.eval(ctx)
}

type exprAnd struct{ left, right exprNode }

func (n exprAnd) eval(ctx Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return n.right.eval(ctx)
}

type exprNot struct{ inner exprNode }

func (n exprNot) eval(ctx Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type operandKind int

const (
	operandIdentifier operandKind = iota
	operandID
	operandString
	operandNumber
	operandBool
)

type operand struct {
	kind operandKind
	raw  string
}

// value materialises an operand against the context. Absent properties
// substitute the empty string.
func (o operand) value(ctx Context) any {
	switch o.kind {
	case operandID:
		return ctx.ScopeID
	case operandIdentifier:
		v, ok := ctx.Record.Get(o.raw)
		if !ok {
			return ""
		}
		return v
	case operandBool:
		return o.raw == "true"
	case operandNumber:
		f, _ := strconv.ParseFloat(o.raw, 64)
		return f
	default:
		return o.raw
	}
}

type exprCompare struct {
	left  operand
	op    tokenKind
	right operand
}

func (n exprCompare) eval(ctx Context) (bool, error) {
	left := coerceString(n.left.value(ctx))
	right := coerceString(n.right.value(ctx))

	// Identifier-reference equality: comparing against @id strips the
	// reference marker from the other side.
	if n.op == tokenEq || n.op == tokenNeq {
		if n.left.kind == operandID {
			right = record.RefID(right)
		}
		if n.right.kind == operandID {
			left = record.RefID(left)
		}
	}

	cmp := compareValues(left, right)
	switch n.op {
	case tokenEq:
		return cmp == 0, nil
	case tokenNeq:
		return cmp != 0, nil
	case tokenLt:
		return cmp < 0, nil
	case tokenLte:
		return cmp <= 0, nil
	case tokenGt:
		return cmp > 0, nil
	case tokenGte:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("constraint: unsupported comparison operator")
	}
}

// compareValues orders two stringified operands, numerically when both
// parse as numbers and lexically otherwise.
func compareValues(left, right string) int {
	lf, lerr := strconv.ParseFloat(strings.TrimSpace(left), 64)
	rf, rerr := strconv.ParseFloat(strings.TrimSpace(right), 64)
	if lerr == nil && rerr == nil {
		switch {
		case lf < rf:
			return -1
		case lf > rf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(left, right)
}

// exprTruthy is a bare identifier used as a boolean: present and non-empty.
type exprTruthy struct{ operand operand }

func (n exprTruthy) eval(ctx Context) (bool, error) {
	return truthy(n.operand.value(ctx)), nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseExpression(tokens []token) (exprNode, error) {
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("constraint: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

func parseOr(stream *tokenStream) (exprNode, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = exprOr{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (exprNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = exprAnd{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return exprNot{inner: inner}, nil
	}
	return parseComparison(stream)
}

func parseComparison(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("constraint: missing closing ')'")
		}
		return inner, nil
	}

	left, err := stream.consumeOperand()
	if err != nil {
		return nil, err
	}

	op, ok := stream.matchComparison()
	if !ok {
		if left.kind == operandIdentifier || left.kind == operandID || left.kind == operandBool {
			return exprTruthy{operand: left}, nil
		}
		return nil, fmt.Errorf("constraint: literal %q is not a boolean expression", left.raw)
	}

	right, err := stream.consumeOperand()
	if err != nil {
		return nil, err
	}
	return exprCompare{left: left, op: op, right: right}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) matchComparison() (tokenKind, bool) {
	if s.pos >= len(s.tokens) {
		return 0, false
	}
	switch kind := s.tokens[s.pos].kind; kind {
	case tokenEq, tokenNeq, tokenLt, tokenLte, tokenGt, tokenGte:
		s.pos++
		return kind, true
	default:
		return 0, false
	}
}

func (s *tokenStream) consumeOperand() (operand, error) {
	if s.pos >= len(s.tokens) {
		return operand{}, errors.New("constraint: missing operand")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenIdentifier:
		if tok.raw == idToken {
			return operand{kind: operandID, raw: tok.raw}, nil
		}
		return operand{kind: operandIdentifier, raw: tok.raw}, nil
	case tokenString:
		return operand{kind: operandString, raw: tok.raw}, nil
	case tokenNumber:
		return operand{kind: operandNumber, raw: tok.raw}, nil
	case tokenBool:
		return operand{kind: operandBool, raw: tok.raw}, nil
	default:
		return operand{}, fmt.Errorf("constraint: expected operand, got %q", tok.raw)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		s := strings.TrimSpace(v)
		return s != "" && s != "false" && s != "0"
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []any:
		return len(v) > 0
	case record.Record:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(value)
	}
}
