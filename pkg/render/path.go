package render

import (
	"path"
	"strings"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/types"
)

// ResolvePath renders each segment of a slash-separated template path with
// the placeholder grammar and returns the normalized concrete path, still
// relative to the target root. A path that resolves outside the root (via
// ".." traversal or to an absolute path) is a path-escape error.
func ResolvePath(templatePath string, ctx *types.RenderContext) (string, error) {
	segments := strings.Split(templatePath, "/")
	resolved := make([]string, 0, len(segments))

	for _, seg := range segments {
		out, err := Render(seg, ctx)
		if err != nil {
			return "", errors.Wrapf(err, errors.GetErrorCode(err),
				"resolving path %q", templatePath)
		}
		if strings.TrimSpace(out) == "" {
			return "", errors.Newf(errors.ErrExprSyntax,
				"segment %q of path %q rendered empty", seg, templatePath)
		}
		resolved = append(resolved, out)
	}

	concrete := path.Clean(strings.Join(resolved, "/"))
	if path.IsAbs(concrete) || concrete == ".." || strings.HasPrefix(concrete, "../") {
		return "", errors.Newf(errors.ErrPathEscape,
			"path %q resolves to %q, outside the target root", templatePath, concrete).
			WithDetail("resolved", concrete)
	}
	if concrete == "." {
		return "", errors.Newf(errors.ErrExprSyntax,
			"path %q resolved empty", templatePath)
	}
	return concrete, nil
}

// EvaluateGuard evaluates a TemplateEntry guard against the context. An
// empty guard is true. A guard naming a variable absent from the context is
// false, not an error: a parameter excluded as inapplicable by the schema
// simply disables the entries it guards.
func EvaluateGuard(guard string, ctx *types.RenderContext) (bool, error) {
	guard = strings.TrimSpace(guard)
	if guard == "" {
		return true, nil
	}

	negate := false
	if strings.HasPrefix(guard, "!") {
		negate = true
		guard = strings.TrimSpace(guard[1:])
	}
	if !isIdent(guard) {
		return false, errors.Newf(errors.ErrExprSyntax,
			"invalid guard expression %q", guard)
	}

	val, present, isBool := ctx.Truthy(guard)
	if !present {
		return negate, nil
	}
	if !isBool {
		return false, errors.Newf(errors.ErrTypeMismatch,
			"guard %q requires a boolean value", guard)
	}
	if negate {
		return !val, nil
	}
	return val, nil
}
