package render_test

import (
	"testing"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/render"
	"github.com/armature-io/armature/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctx(values types.ValueSet) *types.RenderContext {
	return render.NewContext(values)
}

func TestRenderVariables(t *testing.T) {
	c := ctx(types.ValueSet{
		"module_name": "payment_gateway",
		"max_retries": int64(3),
		"enabled":     true,
	})

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain_text", "no placeholders here", "no placeholders here"},
		{"simple_variable", "module: {{ module_name }}", "module: payment_gateway"},
		{"integer_variable", "retries={{ max_retries }}", "retries=3"},
		{"boolean_variable", "enabled={{ enabled }}", "enabled=true"},
		{"transform_chain", "type {{ module_name.pascalCase() }} struct{}", "type PaymentGateway struct{}"},
		{"chained_twice", "{{ module_name.pascalCase().kebabCase() }}", "payment-gateway"},
		{"no_spaces", "{{module_name}}", "payment_gateway"},
		{"repeated", "{{ module_name }}/{{ module_name }}", "payment_gateway/payment_gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render.Render(tt.content, c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderConditionalBlocks(t *testing.T) {
	content := "always\n{{#include_widget}}\nwidget line\n{{/include_widget}}\nafter\n"

	t.Run("included_when_true", func(t *testing.T) {
		got, err := render.Render(content, ctx(types.ValueSet{"include_widget": true}))
		require.NoError(t, err)
		assert.Equal(t, "always\nwidget line\nafter\n", got)
	})

	t.Run("omitted_when_false", func(t *testing.T) {
		got, err := render.Render(content, ctx(types.ValueSet{"include_widget": false}))
		require.NoError(t, err)
		assert.Equal(t, "always\nafter\n", got)
		assert.NotContains(t, got, "include_widget", "marker text must never appear in output")
	})

	t.Run("inline_markers", func(t *testing.T) {
		got, err := render.Render("a{{#f}}b{{/f}}c", ctx(types.ValueSet{"f": false}))
		require.NoError(t, err)
		assert.Equal(t, "ac", got)
	})

	t.Run("negated_block", func(t *testing.T) {
		got, err := render.Render("{{#!f}}fallback{{/f}}", ctx(types.ValueSet{"f": false}))
		require.NoError(t, err)
		assert.Equal(t, "fallback", got)
	})

	t.Run("nested_blocks", func(t *testing.T) {
		content := "{{#a}}A{{#b}}B{{/b}}{{/a}}"
		got, err := render.Render(content, ctx(types.ValueSet{"a": true, "b": false}))
		require.NoError(t, err)
		assert.Equal(t, "A", got)

		got, err = render.Render(content, ctx(types.ValueSet{"a": true, "b": true}))
		require.NoError(t, err)
		assert.Equal(t, "AB", got)

		got, err = render.Render(content, ctx(types.ValueSet{"a": false, "b": true}))
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("variables_inside_block", func(t *testing.T) {
		got, err := render.Render("{{#f}}{{ name.pascalCase() }}{{/f}}",
			ctx(types.ValueSet{"f": true, "name": "my_mod"}))
		require.NoError(t, err)
		assert.Equal(t, "MyMod", got)
	})
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		values   types.ValueSet
		wantCode errors.ErrorCode
	}{
		{"unresolved_variable", "{{ missing }}", types.ValueSet{}, errors.ErrUnresolvedVariable},
		{"unknown_transform", "{{ name.shoutCase() }}", types.ValueSet{"name": "x"}, errors.ErrUnknownTransform},
		{"unterminated_placeholder", "{{ name", types.ValueSet{"name": "x"}, errors.ErrExprSyntax},
		{"bad_expression", "{{ name.pascalCase }}", types.ValueSet{"name": "x"}, errors.ErrExprSyntax},
		{"unclosed_block", "{{#f}}body", types.ValueSet{"f": true}, errors.ErrMalformedBlock},
		{"unmatched_close", "body{{/f}}", types.ValueSet{"f": true}, errors.ErrMalformedBlock},
		{"interleaved_blocks", "{{#a}}{{#b}}{{/a}}{{/b}}", types.ValueSet{"a": true, "b": true}, errors.ErrMalformedBlock},
		{"missing_block_variable", "{{#nope}}x{{/nope}}", types.ValueSet{}, errors.ErrUnresolvedVariable},
		{"non_boolean_block", "{{#name}}x{{/name}}", types.ValueSet{"name": "str"}, errors.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := render.Render(tt.content, ctx(tt.values))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode),
				"want code %s, got %v", tt.wantCode, err)
		})
	}
}

func TestRenderErrorReportsPosition(t *testing.T) {
	_, err := render.Render("line one\nline two {{#a}}\noops", ctx(types.ValueSet{"a": true}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2:10", "error should name the marker position")
}

func TestRenderIdempotent(t *testing.T) {
	content := "{{#flag}}\n{{ name.pascalCase() }} at {{ name }}\n{{/flag}}\ntail {{ name.constantCase() }}\n"
	c := ctx(types.ValueSet{"flag": true, "name": "some_mod"})

	first, err := render.Render(content, c)
	require.NoError(t, err)
	second, err := render.Render(content, c)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseReuse(t *testing.T) {
	tmpl, err := render.Parse("hello {{ name }}")
	require.NoError(t, err)

	got, err := tmpl.Render(ctx(types.ValueSet{"name": "ada"}))
	require.NoError(t, err)
	assert.Equal(t, "hello ada", got)

	got, err = tmpl.Render(ctx(types.ValueSet{"name": "linus"}))
	require.NoError(t, err)
	assert.Equal(t, "hello linus", got)
}
