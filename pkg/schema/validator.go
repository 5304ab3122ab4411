package schema

import (
	"regexp"
	"strconv"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/types"
)

// Validate checks candidateValues against definitions and produces the
// final, fully validated value set: applicable candidate values plus the
// defaults of applicable parameters the candidate left unset.
//
// On success the returned error slice is empty. On failure the value set is
// nil and the slice holds every validation error found, so a caller sees
// all problems in one pass. Validate is pure; neither input is mutated.
func Validate(definitions []types.ParameterDefinition, candidateValues types.ValueSet) (types.ValueSet, []error) {
	c := &checker{
		defs:      make(map[string]types.ParameterDefinition, len(definitions)),
		candidate: candidateValues,
		state:     make(map[string]applState, len(definitions)),
	}
	for _, d := range definitions {
		c.defs[d.Name] = d
	}

	var errs []error

	for name := range candidateValues {
		if _, ok := c.defs[name]; !ok {
			errs = append(errs, errors.Newf(errors.ErrUnknownParameter,
				"unknown parameter %q", name).WithDetail("parameter", name))
		}
	}

	out := make(types.ValueSet)
	for _, def := range definitions {
		applicable, err := c.applicable(def.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !applicable {
			continue
		}

		val, present := candidateValues[def.Name]
		if !present {
			if def.HasDefault() {
				val = def.Default
			} else if def.Required {
				errs = append(errs, errors.Newf(errors.ErrMissingRequired,
					"missing required parameter %q", def.Name).
					WithDetail("parameter", def.Name))
				continue
			} else {
				continue
			}
		}

		normalized, err := checkType(def, val)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := checkConstraints(def, normalized); err != nil {
			errs = append(errs, err)
			continue
		}
		out[def.Name] = normalized
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

type applState int

const (
	applUnknown applState = iota
	applVisiting
	applYes
	applNo
)

type checker struct {
	defs      map[string]types.ParameterDefinition
	candidate types.ValueSet
	state     map[string]applState
}

// applicable reports whether a parameter's dependency guard holds,
// following dependency chains and rejecting cycles.
func (c *checker) applicable(name string) (bool, error) {
	switch c.state[name] {
	case applYes:
		return true, nil
	case applNo:
		return false, nil
	case applVisiting:
		return false, errors.Newf(errors.ErrDependencyCycle,
			"parameter %q participates in a dependency cycle", name).
			WithDetail("parameter", name)
	}

	def, ok := c.defs[name]
	if !ok {
		// A dependency naming an undeclared parameter never holds.
		c.state[name] = applNo
		return false, nil
	}
	if def.DependsOn == nil {
		c.state[name] = applYes
		return true, nil
	}

	c.state[name] = applVisiting
	ok, err := c.guardHolds(def.DependsOn)
	if err != nil {
		c.state[name] = applNo
		return false, err
	}
	if ok {
		c.state[name] = applYes
	} else {
		c.state[name] = applNo
	}
	return ok, nil
}

// guardHolds evaluates a dependency against the in-progress value set: the
// candidate value of the guarding parameter if present, its default
// otherwise, and only while the guarding parameter is itself applicable.
func (c *checker) guardHolds(dep *types.Dependency) (bool, error) {
	parentApplicable, err := c.applicable(dep.Parameter)
	if err != nil {
		return false, err
	}
	if !parentApplicable {
		return false, nil
	}

	parent := c.defs[dep.Parameter]
	val, present := c.candidate[dep.Parameter]
	if !present {
		if !parent.HasDefault() {
			return false, nil
		}
		val = parent.Default
	}
	return valuesEqual(val, dep.Equals), nil
}

// checkType verifies val against the definition's declared type, returning
// the normalized value (integers as int64).
func checkType(def types.ParameterDefinition, val any) (any, error) {
	switch def.Type {
	case types.ParamString, types.ParamEnum:
		if s, ok := val.(string); ok {
			return s, nil
		}
	case types.ParamBoolean:
		if b, ok := val.(bool); ok {
			return b, nil
		}
	case types.ParamInteger:
		switch n := val.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		}
	default:
		return nil, errors.Newf(errors.ErrInvalidInput,
			"parameter %q declares unknown type %q", def.Name, def.Type)
	}
	return nil, errors.Newf(errors.ErrTypeMismatch,
		"parameter %q expects %s, got %s", def.Name, def.Type, typeName(val)).
		WithDetail("parameter", def.Name).
		WithDetail("expected", string(def.Type)).
		WithDetail("actual", typeName(val))
}

// checkConstraints runs after type checks pass.
func checkConstraints(def types.ParameterDefinition, val any) error {
	cons := def.Constraints

	if s, ok := val.(string); ok {
		if cons.Pattern != "" {
			re, err := regexp.Compile(cons.Pattern)
			if err != nil {
				return errors.Wrapf(err, errors.ErrConstraint,
					"parameter %q has an invalid pattern %q", def.Name, cons.Pattern)
			}
			if !re.MatchString(s) {
				return errors.Newf(errors.ErrConstraint,
					"parameter %q value %q does not match pattern %q",
					def.Name, s, cons.Pattern).
					WithDetail("parameter", def.Name).
					WithDetail("rule", "pattern")
			}
		}
		if len(cons.Allowed) > 0 && !contains(cons.Allowed, s) {
			return errors.Newf(errors.ErrConstraint,
				"parameter %q value %q is not one of %v", def.Name, s, cons.Allowed).
				WithDetail("parameter", def.Name).
				WithDetail("rule", "allowed")
		}
	}

	if n, ok := val.(int64); ok {
		if cons.Min != nil && n < *cons.Min {
			return errors.Newf(errors.ErrConstraint,
				"parameter %q value %d is below minimum %d", def.Name, n, *cons.Min).
				WithDetail("parameter", def.Name).
				WithDetail("rule", "min")
		}
		if cons.Max != nil && n > *cons.Max {
			return errors.Newf(errors.ErrConstraint,
				"parameter %q value %d is above maximum %d", def.Name, n, *cons.Max).
				WithDetail("parameter", def.Name).
				WithDetail("rule", "max")
		}
	}

	return nil
}

// ParseValue converts a raw string (a CLI --set argument) into the typed
// value a definition expects.
func ParseValue(def types.ParameterDefinition, raw string) (any, error) {
	switch def.Type {
	case types.ParamString, types.ParamEnum:
		return raw, nil
	case types.ParamBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Newf(errors.ErrTypeMismatch,
				"parameter %q expects a boolean, got %q", def.Name, raw)
		}
		return b, nil
	case types.ParamInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.Newf(errors.ErrTypeMismatch,
				"parameter %q expects an integer, got %q", def.Name, raw)
		}
		return n, nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput,
		"parameter %q declares unknown type %q", def.Name, def.Type)
}

func valuesEqual(a, b any) bool {
	return normalize(a) == normalize(b)
}

func normalize(v any) any {
	if n, ok := v.(int); ok {
		return int64(n)
	}
	return v
}

func typeName(val any) string {
	switch val.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64:
		return "integer"
	default:
		return "unsupported"
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
