package schema_test

import (
	"testing"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/schema"
	"github.com/armature-io/armature/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(n int64) *int64 { return &n }

func sampleDefs() []types.ParameterDefinition {
	return []types.ParameterDefinition{
		{
			Name:     "module_name",
			Type:     types.ParamString,
			Required: true,
			Constraints: types.Constraints{
				Pattern: `^[a-z][a-z0-9_]*$`,
			},
		},
		{
			Name:    "include_widget",
			Type:    types.ParamBoolean,
			Default: false,
		},
		{
			Name:    "widget_style",
			Type:    types.ParamEnum,
			Default: "plain",
			Constraints: types.Constraints{
				Allowed: []string{"plain", "fancy"},
			},
			DependsOn: &types.Dependency{Parameter: "include_widget", Equals: true},
		},
		{
			Name:    "max_retries",
			Type:    types.ParamInteger,
			Default: int64(3),
			Constraints: types.Constraints{
				Min: i64(0),
				Max: i64(10),
			},
		},
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	got, errs := schema.Validate(sampleDefs(), types.ValueSet{"module_name": "payments"})
	require.Empty(t, errs)

	assert.Equal(t, types.ValueSet{
		"module_name":    "payments",
		"include_widget": false,
		"max_retries":    int64(3),
	}, got)

	// widget_style depends on include_widget=true; with the default false it
	// is inapplicable, so its own default must not leak into the set.
	_, ok := got["widget_style"]
	assert.False(t, ok)
}

func TestValidateDependentParameterIncluded(t *testing.T) {
	got, errs := schema.Validate(sampleDefs(), types.ValueSet{
		"module_name":    "payments",
		"include_widget": true,
	})
	require.Empty(t, errs)
	assert.Equal(t, "plain", got["widget_style"])
}

func TestValidateMissingRequired(t *testing.T) {
	got, errs := schema.Validate(sampleDefs(), types.ValueSet{})
	assert.Nil(t, got)
	require.Len(t, errs, 1)
	assert.True(t, errors.IsErrorCode(errs[0], errors.ErrMissingRequired))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	// Missing required, type mismatch, and a constraint violation must all
	// surface in one pass.
	got, errs := schema.Validate(sampleDefs(), types.ValueSet{
		"include_widget": "yes",
		"max_retries":    int64(99),
	})
	assert.Nil(t, got)
	require.Len(t, errs, 3)

	codes := make(map[errors.ErrorCode]int)
	for _, err := range errs {
		codes[errors.GetErrorCode(err)]++
	}
	assert.Equal(t, 1, codes[errors.ErrMissingRequired])
	assert.Equal(t, 1, codes[errors.ErrTypeMismatch])
	assert.Equal(t, 1, codes[errors.ErrConstraint])
}

func TestValidateTypeMismatchNamesTypes(t *testing.T) {
	_, errs := schema.Validate(sampleDefs(), types.ValueSet{
		"module_name": int64(7),
	})
	require.Len(t, errs, 1)
	require.True(t, errors.IsErrorCode(errs[0], errors.ErrTypeMismatch))

	details := errors.GetErrorDetails(errs[0])
	assert.Equal(t, "string", details["expected"])
	assert.Equal(t, "integer", details["actual"])
}

func TestValidateConstraints(t *testing.T) {
	tests := []struct {
		name   string
		values types.ValueSet
		rule   string
	}{
		{"pattern", types.ValueSet{"module_name": "Bad-Name"}, "pattern"},
		{"enum_membership", types.ValueSet{"module_name": "ok", "include_widget": true, "widget_style": "neon"}, "allowed"},
		{"min", types.ValueSet{"module_name": "ok", "max_retries": int64(-1)}, "min"},
		{"max", types.ValueSet{"module_name": "ok", "max_retries": int64(11)}, "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := schema.Validate(sampleDefs(), tt.values)
			require.Len(t, errs, 1)
			require.True(t, errors.IsErrorCode(errs[0], errors.ErrConstraint), "got %v", errs[0])
			assert.Equal(t, tt.rule, errors.GetErrorDetails(errs[0])["rule"])
		})
	}
}

func TestValidateUnknownParameter(t *testing.T) {
	_, errs := schema.Validate(sampleDefs(), types.ValueSet{
		"module_name": "ok",
		"bogus":       "x",
	})
	require.Len(t, errs, 1)
	assert.True(t, errors.IsErrorCode(errs[0], errors.ErrUnknownParameter))
}

func TestValidateInapplicableValueDropped(t *testing.T) {
	// An explicit value for an inapplicable parameter is excluded, not
	// validated: widget_style only applies while include_widget is true.
	got, errs := schema.Validate(sampleDefs(), types.ValueSet{
		"module_name":  "ok",
		"widget_style": "neon",
	})
	require.Empty(t, errs)
	_, ok := got["widget_style"]
	assert.False(t, ok)
}

func TestValidateDependencyChain(t *testing.T) {
	defs := []types.ParameterDefinition{
		{Name: "a", Type: types.ParamBoolean, Default: false},
		{Name: "b", Type: types.ParamBoolean, Default: true,
			DependsOn: &types.Dependency{Parameter: "a", Equals: true}},
		{Name: "c", Type: types.ParamString, Default: "leaf",
			DependsOn: &types.Dependency{Parameter: "b", Equals: true}},
	}

	got, errs := schema.Validate(defs, types.ValueSet{})
	require.Empty(t, errs)
	assert.Equal(t, types.ValueSet{"a": false}, got)

	got, errs = schema.Validate(defs, types.ValueSet{"a": true})
	require.Empty(t, errs)
	assert.Equal(t, types.ValueSet{"a": true, "b": true, "c": "leaf"}, got)
}

func TestValidateDependencyCycle(t *testing.T) {
	defs := []types.ParameterDefinition{
		{Name: "a", Type: types.ParamBoolean, Default: true,
			DependsOn: &types.Dependency{Parameter: "b", Equals: true}},
		{Name: "b", Type: types.ParamBoolean, Default: true,
			DependsOn: &types.Dependency{Parameter: "a", Equals: true}},
	}

	_, errs := schema.Validate(defs, types.ValueSet{})
	require.NotEmpty(t, errs)
	assert.True(t, errors.IsErrorCode(errs[0], errors.ErrDependencyCycle))
}

func TestValidatePure(t *testing.T) {
	candidate := types.ValueSet{"module_name": "payments"}
	_, errs := schema.Validate(sampleDefs(), candidate)
	require.Empty(t, errs)
	assert.Equal(t, types.ValueSet{"module_name": "payments"}, candidate,
		"Validate must not mutate its input")
}

func TestParseValue(t *testing.T) {
	boolDef := types.ParameterDefinition{Name: "f", Type: types.ParamBoolean}
	intDef := types.ParameterDefinition{Name: "n", Type: types.ParamInteger}
	strDef := types.ParameterDefinition{Name: "s", Type: types.ParamString}

	v, err := schema.ParseValue(boolDef, "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = schema.ParseValue(intDef, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = schema.ParseValue(strDef, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = schema.ParseValue(intDef, "forty-two")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTypeMismatch))
}
