package repo

import "errors"

var (
	// ErrRepositoryExists is returned by Init when the control directory
	// already exists.
	ErrRepositoryExists = errors.New("repository already exists")

	// ErrRepositoryNotFound is returned by Open when no control directory is
	// found in the path or any of its parents.
	ErrRepositoryNotFound = errors.New("not a grit repository")

	// ErrPathNotFound is returned when staging a path that does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrNotADirectory is returned when directory staging is asked to walk a
	// path that resolves to something other than a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrInvalidPath is returned when staging a path that is neither a
	// regular file nor a directory (device, socket, broken symlink), or when
	// a staged path contains an empty segment.
	ErrInvalidPath = errors.New("invalid path")

	// ErrRefNotFound is returned when a reference cannot be resolved to a
	// commit hash, including a symbolic HEAD pointing at a branch with no
	// commits yet.
	ErrRefNotFound = errors.New("reference not found")

	// ErrNothingToCommit is returned when the staged tree is identical to
	// the parent commit's tree.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrRefCASMismatch is returned when a compare-and-swap ref update finds
	// a different current value than expected.
	ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
)
