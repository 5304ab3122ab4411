// Package filesystem provides implementations of the types.FS interface:
// a direct OS-backed one for real runs and an afero adapter so tests can
// run the whole write/rollback path against afero.NewMemMapFs().
package filesystem
