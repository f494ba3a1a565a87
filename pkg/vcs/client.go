package vcs

import (
	"errors"
)

var (
	// ErrNoMergeHash is a sentinel error for use in connector implementations:
	// the hosting service has no synthetic merge commit for the pull request,
	// either because it has not been computed yet, the merge has conflicts, or
	// the service never exposes one.
	ErrNoMergeHash = errors.New("no merge hash available")

	// ErrFileNotFound is returned by GetFileContents when the path does not
	// exist at the requested revision.
	ErrFileNotFound = errors.New("file not found")
)
