package types

import (
	"context"
	"io/fs"
)

// FS is the filesystem interface required for scaffold operations. The
// orchestrator performs every write, check, and rollback deletion through
// it, so tests run against an in-memory implementation.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Mkdir(path string, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)
	Remove(name string) error
}

// HookResult is what a hook runner reports back: the process exit status
// and its captured combined output.
type HookResult struct {
	ExitCode int
	Output   []byte
}

// HookRunner executes one hook. The orchestrator supplies the resolved
// value set and the target root; the runner defines the execution
// environment. Run must honor ctx cancellation and the hook's timeout.
type HookRunner interface {
	Run(ctx context.Context, hook Hook, values ValueSet, targetRoot string) (HookResult, error)
}
