// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirements

import (
	"errors"
	"fmt"
	"strings"

	version "github.com/aquasecurity/go-pep440-version"
)

// ErrBadMarker is returned for an environment marker that cannot be parsed
// or evaluated.
var ErrBadMarker = errors.New("malformed environment marker")

// Env holds marker variable values for one target environment, keyed by the
// PEP 508 variable name (e.g. "sys_platform").
type Env map[string]string

// markerVars lists the PEP 508 variables.
var markerVars = map[string]struct{}{
	"python_version":                 {},
	"python_full_version":            {},
	"implementation_version":         {},
	"os_name":                        {},
	"sys_platform":                   {},
	"platform_release":               {},
	"platform_system":                {},
	"platform_version":               {},
	"platform_machine":               {},
	"platform_python_implementation": {},
	"implementation_name":            {},
	"extra":                          {},
}

// legacyVars maps pre-PEP 508 dotted names onto their modern spelling.
var legacyVars = map[string]string{
	"os.name":                        "os_name",
	"sys.platform":                   "sys_platform",
	"platform.version":               "platform_version",
	"platform.machine":               "platform_machine",
	"platform.python_implementation": "platform_python_implementation",
	"python_implementation":          "platform_python_implementation",
}

// Marker is a parsed environment marker expression.
type Marker struct {
	root node
	src  string
}

// String returns the marker source text.
func (m *Marker) String() string {
	return m.src
}

// Evaluate reports whether the marker holds in env. Variables missing from
// env evaluate as the empty string.
func (m *Marker) Evaluate(env Env) (bool, error) {
	return m.root.eval(env)
}

type node interface {
	eval(env Env) (bool, error)
}

type boolNode struct {
	and         bool
	left, right node
}

func (n boolNode) eval(env Env) (bool, error) {
	l, err := n.left.eval(env)
	if err != nil {
		return false, err
	}
	if n.and && !l {
		return false, nil
	}
	if !n.and && l {
		return true, nil
	}
	return n.right.eval(env)
}

type operand struct {
	variable string
	literal  string
}

func (o operand) value(env Env) string {
	if o.variable != "" {
		return env[o.variable]
	}
	return o.literal
}

type compareNode struct {
	left, right operand
	op          string
}

func (n compareNode) eval(env Env) (bool, error) {
	lhs, rhs := n.left.value(env), n.right.value(env)

	switch n.op {
	case "in":
		return strings.Contains(rhs, lhs), nil
	case "not in":
		return !strings.Contains(rhs, lhs), nil
	case "===":
		return lhs == rhs, nil
	}

	if ok, handled := compareVersions(lhs, n.op, rhs); handled {
		return ok, nil
	}

	switch n.op {
	case "==":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	case "<":
		return lhs < rhs, nil
	case "<=":
		return lhs <= rhs, nil
	case ">":
		return lhs > rhs, nil
	case ">=":
		return lhs >= rhs, nil
	}
	return false, fmt.Errorf("%w: operator %s needs version operands, got %q and %q", ErrBadMarker, n.op, lhs, rhs)
}

// compareVersions applies op with PEP 440 semantics. handled is false when
// either side is not a valid version.
func compareVersions(lhs, op, rhs string) (ok, handled bool) {
	v, err := version.Parse(lhs)
	if err != nil {
		return false, false
	}
	spec, err := version.NewSpecifiers(op + rhs)
	if err != nil {
		return false, false
	}
	return spec.Check(v), true
}

// ParseMarker parses a PEP 508 marker expression.
func ParseMarker(src string) (*Marker, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &markerParser{toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("%w: unexpected %q in %q", ErrBadMarker, p.toks[p.pos].text, src)
	}
	return &Marker{root: root, src: strings.TrimSpace(src)}, nil
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string in %q", ErrBadMarker, src)
			}
			toks = append(toks, token{tokString, src[i+1 : i+1+end]})
			i += end + 2
		case strings.ContainsRune("=!<>~", rune(c)):
			op := ""
			for _, candidate := range specOps {
				if strings.HasPrefix(src[i:], candidate) {
					op = candidate
					break
				}
			}
			if op == "" {
				return nil, fmt.Errorf("%w: bad operator at %q", ErrBadMarker, src[i:])
			}
			toks = append(toks, token{tokOp, op})
			i += len(op)
		case isIdentByte(c):
			j := i
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected character %q in %q", ErrBadMarker, c, src)
		}
	}
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

type markerParser struct {
	toks []token
	pos  int
}

func (p *markerParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *markerParser) acceptIdent(word string) bool {
	if t, ok := p.peek(); ok && t.kind == tokIdent && t.text == word {
		p.pos++
		return true
	}
	return false
}

func (p *markerParser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.acceptIdent("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = boolNode{and: false, left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseAnd() (node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.acceptIdent("and") {
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = boolNode{and: true, left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseAtom() (node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrBadMarker)
	}
	if t.kind == tokLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t, ok := p.peek(); !ok || t.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrBadMarker)
		}
		p.pos++
		return inner, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, err := p.parseCompareOp()
	if err != nil {
		return nil, err
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return compareNode{left: left, op: op, right: right}, nil
}

func (p *markerParser) parseOperand() (operand, error) {
	t, ok := p.peek()
	if !ok {
		return operand{}, fmt.Errorf("%w: expected a variable or string", ErrBadMarker)
	}
	p.pos++
	switch t.kind {
	case tokString:
		return operand{literal: t.text}, nil
	case tokIdent:
		name := t.text
		if modern, ok := legacyVars[name]; ok {
			name = modern
		}
		if _, ok := markerVars[name]; !ok {
			return operand{}, fmt.Errorf("%w: unknown variable %q", ErrBadMarker, t.text)
		}
		return operand{variable: name}, nil
	}
	return operand{}, fmt.Errorf("%w: expected a variable or string, got %q", ErrBadMarker, t.text)
}

func (p *markerParser) parseCompareOp() (string, error) {
	t, ok := p.peek()
	if !ok {
		return "", fmt.Errorf("%w: expected a comparison operator", ErrBadMarker)
	}
	switch {
	case t.kind == tokOp:
		p.pos++
		return t.text, nil
	case t.kind == tokIdent && t.text == "in":
		p.pos++
		return "in", nil
	case t.kind == tokIdent && t.text == "not":
		p.pos++
		if !p.acceptIdent("in") {
			return "", fmt.Errorf("%w: expected \"in\" after \"not\"", ErrBadMarker)
		}
		return "not in", nil
	}
	return "", fmt.Errorf("%w: expected a comparison operator, got %q", ErrBadMarker, t.text)
}
