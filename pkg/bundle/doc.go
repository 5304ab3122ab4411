// Package bundle loads template bundles from disk. A bundle directory holds
// an armature.toml manifest (parameter schema, presets, guards, hooks), an
// optional presets.yaml with additional presets, and a root/ tree whose
// files and directories become the bundle's template entries.
//
// Loading is pure data assembly. The orchestrator consumes only the
// resulting in-memory TemplateBundle and never touches the bundle directory
// again.
package bundle
