// Package render implements the placeholder expression grammar shared by
// template content and template paths.
//
// A placeholder is a variable reference optionally followed by chained case
// transforms:
//
//	{{ module_name }}
//	{{ module_name.pascalCase() }}
//	{{ module_name.pascalCase().kebabCase() }}
//
// A conditional section includes its body only while the named boolean
// variable is true. Sections nest and must be well-formed:
//
//	{{#include_widget}}
//	widget code
//	{{/include_widget}}
//
// Templates are parsed into a small explicit AST (text, expression, and
// section nodes), which is what makes malformed-nesting detection and
// transform chaining precise. Rendering is pure: the same (content, context)
// pair always produces byte-identical output, and a missing variable is an
// error rather than a silent empty substitution.
package render
