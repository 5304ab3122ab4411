package render

import (
	"strings"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/types"
)

// Render parses and renders template content against a context. The context
// must hold a fully validated value set; rendering never supplies defaults.
func Render(content string, ctx *types.RenderContext) (string, error) {
	tmpl, err := Parse(content)
	if err != nil {
		return "", err
	}
	return tmpl.Render(ctx)
}

// Render evaluates the template against ctx. An absent variable, an unknown
// transform, or a non-boolean conditional key is an error; nothing is ever
// silently substituted with an empty string.
func (t *Template) Render(ctx *types.RenderContext) (string, error) {
	var b strings.Builder
	if err := renderNodes(t.nodes, ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderNodes(nodes []node, ctx *types.RenderContext, b *strings.Builder) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			b.WriteString(n.text)

		case exprNode:
			val, ok := ctx.Lookup(n.name)
			if !ok {
				return errors.Newf(errors.ErrUnresolvedVariable,
					"unresolved variable %q at %s", n.name, n.pos).
					WithDetail("variable", n.name)
			}
			for _, call := range n.calls {
				fn, ok := ctx.Transforms[call]
				if !ok {
					return errors.Newf(errors.ErrUnknownTransform,
						"unknown transform %q at %s", call, n.pos).
						WithDetail("transform", call)
				}
				val = fn(val)
			}
			b.WriteString(val)

		case *sectionNode:
			val, present, isBool := ctx.Truthy(n.name)
			if !present {
				return errors.Newf(errors.ErrUnresolvedVariable,
					"unresolved variable %q in conditional block at %s", n.name, n.pos).
					WithDetail("variable", n.name)
			}
			if !isBool {
				return errors.Newf(errors.ErrTypeMismatch,
					"conditional block %q at %s requires a boolean value", n.name, n.pos)
			}
			if n.negate {
				val = !val
			}
			if val {
				if err := renderNodes(n.children, ctx, b); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
