package scm

// Revision is an immutable snapshot bound to exactly one Head.
// Implementations are comparable value types: two revisions are equal iff
// their heads are equal and every hash field matches.
type Revision interface {
	// Head returns the head this revision belongs to.
	Head() Head

	sealedRevision()
}

// BranchRevision pins a branch head to its tip commit.
type BranchRevision struct {
	Branch BranchHead
	Hash   string // 40-hex commit hash
}

func (r BranchRevision) Head() Head { return r.Branch }

func (r BranchRevision) String() string { return r.Hash }

func (BranchRevision) sealedRevision() {}

// PullRequestRevision pins a pull request head to the commits that make it
// buildable. BaseHash is the tip of the pull request's source branch.
// MergeHash is the host-computed merge of that tip into the target branch;
// it is empty for HEAD-strategy heads, and that absence is meaningful, not
// an error.
type PullRequestRevision struct {
	PullRequest PullRequestHead
	BaseHash    string
	MergeHash   string
}

func (r PullRequestRevision) Head() Head { return r.PullRequest }

func (r PullRequestRevision) String() string {
	if r.MergeHash == "" {
		return r.BaseHash
	}
	return r.BaseHash + "+" + r.MergeHash
}

func (PullRequestRevision) sealedRevision() {}
