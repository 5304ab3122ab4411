// Package schema validates candidate parameter values against a bundle's
// parameter definitions. Validation is exhaustive rather than fail-fast:
// every applicable parameter is checked and all errors are returned
// together. Parameters whose dependency guard is false are inapplicable and
// excluded from both validation and the resulting value set, defaults
// included.
package schema
