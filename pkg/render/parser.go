package render

import (
	"fmt"
	"strings"

	"github.com/armature-io/armature/pkg/errors"
)

// Pos is a 1-based line:column position within template source.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

type node interface{ isNode() }

type textNode struct {
	text string
}

type exprNode struct {
	name  string
	calls []string
	pos   Pos
}

type sectionNode struct {
	name     string
	negate   bool
	pos      Pos
	children []node
}

func (textNode) isNode()     {}
func (exprNode) isNode()     {}
func (*sectionNode) isNode() {}

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Template is a parsed template, reusable across renders.
type Template struct {
	nodes []node
}

// Parse parses template content into an AST. Malformed conditional nesting
// and invalid placeholder expressions are reported with their source
// position.
func Parse(content string) (*Template, error) {
	p := &parser{src: content}
	if err := p.run(); err != nil {
		return nil, err
	}
	return &Template{nodes: p.root}, nil
}

type parser struct {
	src   string
	root  []node
	stack []*sectionNode
}

func (p *parser) append(n node) {
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		top.children = append(top.children, n)
		return
	}
	p.root = append(p.root, n)
}

// posAt computes the line:column of a byte offset.
func (p *parser) posAt(offset int) Pos {
	line := 1 + strings.Count(p.src[:offset], "\n")
	lineStart := strings.LastIndexByte(p.src[:offset], '\n') + 1
	return Pos{Line: line, Col: offset - lineStart + 1}
}

func (p *parser) run() error {
	i := 0
	for {
		open := strings.Index(p.src[i:], openDelim)
		if open < 0 {
			if i < len(p.src) {
				p.append(textNode{text: p.src[i:]})
			}
			break
		}
		open += i

		rest := p.src[open+len(openDelim):]
		closing := strings.Index(rest, closeDelim)
		if closing < 0 {
			return errors.Newf(errors.ErrExprSyntax,
				"unterminated placeholder at %s", p.posAt(open))
		}

		text := p.src[i:open]
		tag := strings.TrimSpace(rest[:closing])
		pos := p.posAt(open)
		next := open + len(openDelim) + closing + len(closeDelim)

		if strings.HasPrefix(tag, "#") || strings.HasPrefix(tag, "/") {
			// A section marker alone on its line leaves no trace in the
			// output: its indentation and trailing newline are swallowed.
			text, next = p.trimStandalone(text, open, next)
		}
		if text != "" {
			p.append(textNode{text: text})
		}

		switch {
		case strings.HasPrefix(tag, "#"):
			if err := p.openSection(strings.TrimSpace(tag[1:]), pos); err != nil {
				return err
			}
		case strings.HasPrefix(tag, "/"):
			if err := p.closeSection(strings.TrimSpace(tag[1:]), pos); err != nil {
				return err
			}
		default:
			expr, err := parseExpr(tag, pos)
			if err != nil {
				return err
			}
			p.append(expr)
		}

		i = next
	}

	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		return errors.Newf(errors.ErrMalformedBlock,
			"unclosed conditional block {{#%s}} opened at %s", top.name, top.pos)
	}
	return nil
}

// trimStandalone strips the indentation before and the newline after a
// section marker that occupies a line of its own.
func (p *parser) trimStandalone(text string, open, next int) (string, int) {
	lineStart := strings.LastIndexByte(p.src[:open], '\n') + 1
	if strings.TrimLeft(p.src[lineStart:open], " \t") != "" {
		return text, next
	}

	after := p.src[next:]
	skip := 0
	switch {
	case after == "":
	case strings.HasPrefix(after, "\r\n"):
		skip = 2
	case after[0] == '\n':
		skip = 1
	default:
		return text, next
	}

	// Only the indentation on the marker's own line is removed.
	text = strings.TrimRight(text, " \t")
	return text, next + skip
}

func (p *parser) openSection(name string, pos Pos) error {
	negate := false
	if strings.HasPrefix(name, "!") {
		negate = true
		name = strings.TrimSpace(name[1:])
	}
	if !isIdent(name) {
		return errors.Newf(errors.ErrMalformedBlock,
			"invalid conditional block name %q at %s", name, pos)
	}
	sec := &sectionNode{name: name, negate: negate, pos: pos}
	p.append(sec)
	p.stack = append(p.stack, sec)
	return nil
}

func (p *parser) closeSection(name string, pos Pos) error {
	if len(p.stack) == 0 {
		return errors.Newf(errors.ErrMalformedBlock,
			"unmatched closing marker {{/%s}} at %s", name, pos)
	}
	top := p.stack[len(p.stack)-1]
	if top.name != name {
		return errors.Newf(errors.ErrMalformedBlock,
			"closing marker {{/%s}} at %s does not match open block {{#%s}} at %s",
			name, pos, top.name, top.pos)
	}
	p.stack = p.stack[:len(p.stack)-1]
	return nil
}

// parseExpr parses "var" or "var.transform()" chains.
func parseExpr(tag string, pos Pos) (exprNode, error) {
	parts := strings.Split(tag, ".")
	name := strings.TrimSpace(parts[0])
	if !isIdent(name) {
		return exprNode{}, errors.Newf(errors.ErrExprSyntax,
			"invalid variable reference %q at %s", name, pos)
	}

	var calls []string
	for _, part := range parts[1:] {
		call := strings.TrimSpace(part)
		if !strings.HasSuffix(call, "()") {
			return exprNode{}, errors.Newf(errors.ErrExprSyntax,
				"expected transform call, got %q at %s", call, pos)
		}
		fn := strings.TrimSpace(strings.TrimSuffix(call, "()"))
		if !isIdent(fn) {
			return exprNode{}, errors.Newf(errors.ErrExprSyntax,
				"invalid transform name %q at %s", fn, pos)
		}
		calls = append(calls, fn)
	}

	return exprNode{name: name, calls: calls, pos: pos}, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		digit := r >= '0' && r <= '9'
		if i == 0 && !letter {
			return false
		}
		if !letter && !digit {
			return false
		}
	}
	return true
}
