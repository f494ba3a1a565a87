package vcs

import (
	"context"
)

// FileKind classifies what a path points at in a repository tree at a given
// revision.
type FileKind uint8

const (
	FileAbsent FileKind = iota
	FileRegular
	FileDirectory
	FileOther
)

var fileKindString = map[FileKind]string{
	FileAbsent:    "absent",
	FileRegular:   "file",
	FileDirectory: "directory",
	FileOther:     "other",
}

func (k FileKind) String() string {
	text, ok := fileKindString[k]
	if !ok {
		text = "unknown"
	}
	return text
}

// Branch is a single branch from a repository listing.
type Branch struct {
	Name string
	Sha  string // tip commit
}

// PullRequest is a single open pull/merge request from a repository listing.
type PullRequest struct {
	Number       int
	Title        string
	SourceOwner  string // account that owns the source repository
	SourceRepo   string
	SourceBranch string
	TargetBranch string // branch the request wants to merge into
	Sha          string // tip commit of the source branch
}

// Metadata describes the repository itself.
type Metadata struct {
	Description   string
	URL           string
	DefaultBranch string
}

// Connector is the provider-neutral surface for reading remote repository
// state. Pagination, authentication, retries and rate limits are the
// connector's concern; callers see plain listings. A listing callback
// returning false stops the walk before further pages are fetched.
type Connector interface {
	// GetName returns the connector name (e.g. "github" or "gitlab").
	GetName() string
	// ListBranches calls fn for every branch, in listing order.
	ListBranches(ctx context.Context, repo Repo, fn func(Branch) bool) error
	// ListPullRequests calls fn for every open pull request, in listing order.
	ListPullRequests(ctx context.Context, repo Repo, fn func(PullRequest) bool) error
	// GetMergeHash returns the commit hash of the host-computed test merge
	// for a pull request, or ErrNoMergeHash when the host has none.
	GetMergeHash(ctx context.Context, repo Repo, number int) (string, error)
	// StatFile reports what path points at in the tree at the given commit.
	// Absence is reported as FileAbsent, not as an error.
	StatFile(ctx context.Context, repo Repo, sha, path string) (FileKind, error)
	// GetFileContents returns the raw contents of path at ref.
	GetFileContents(ctx context.Context, repo Repo, ref, path string) ([]byte, error)
	// GetMetadata returns the repository description, web URL and default
	// branch.
	GetMetadata(ctx context.Context, repo Repo) (Metadata, error)
}
