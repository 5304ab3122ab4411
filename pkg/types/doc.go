// Package types holds the shared data model for armature: parameter
// definitions and value sets, presets, template entries, the scaffold
// configuration and result, and the narrow interfaces (filesystem, hook
// runner) the orchestrator depends on.
//
// Everything in this package is plain data plus small helpers. The packages
// that operate on this data (schema, presets, render, orchestrator) import
// types; types imports none of them.
package types
