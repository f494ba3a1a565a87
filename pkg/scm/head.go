// Package scm is the discovery core: it turns raw branch and pull request
// listings into typed heads, resolves each head to a concrete revision, and
// classifies pull request revisions as trusted or untrusted for automated
// builds.
package scm

import (
	"fmt"

	"github.com/zapier/headscan/pkg/vcs"
)

// CheckoutStrategy says how a pull request should be checked out: the bare
// tip of its source branch, or the host-computed merge of that tip into the
// target branch.
type CheckoutStrategy uint8

const (
	CheckoutHead CheckoutStrategy = iota
	CheckoutMerge
)

var strategyString = map[CheckoutStrategy]string{
	CheckoutHead:  "HEAD",
	CheckoutMerge: "MERGE",
}

func (s CheckoutStrategy) String() string {
	text, ok := strategyString[s]
	if !ok {
		text = "UNKNOWN"
	}
	return text
}

// Origin classifies where a pull request comes from: the repository's own
// namespace, or a fork.
type Origin uint8

const (
	OriginDefault Origin = iota
	OriginFork
)

var originString = map[Origin]string{
	OriginDefault: "origin",
	OriginFork:    "fork",
}

func (o Origin) String() string {
	text, ok := originString[o]
	if !ok {
		text = "unknown"
	}
	return text
}

// Head identifies one buildable line of work in a repository. Implementations
// are comparable value types, so a Head can key a map and equality is value
// equality, never object identity.
type Head interface {
	// Name returns the display name, unique within one discovery run.
	Name() string

	sealedHead()
}

// BranchHead is a branch in the repository's own branch namespace.
type BranchHead struct {
	Branch string
}

func (h BranchHead) Name() string { return h.Branch }

func (BranchHead) sealedHead() {}

// PullRequestHead is one buildable rendition of a pull request. The same pull
// request yields two distinct heads, one per checkout strategy, when its
// origin class has both strategies enabled.
type PullRequestHead struct {
	Number       int
	SourceOwner  string
	SourceRepo   string
	SourceBranch string
	Target       BranchHead
	Origin       Origin
	Strategy     CheckoutStrategy

	name string
}

// NewPullRequestHead builds the head for one (pull request, strategy) pair.
// disambiguate appends the strategy to the display name and must be set
// whenever both strategies are enabled for the origin class, so that the two
// renditions keep distinct identities.
func NewPullRequestHead(pr vcs.PullRequest, origin Origin, strategy CheckoutStrategy, disambiguate bool) PullRequestHead {
	name := fmt.Sprintf("PR-%d", pr.Number)
	if disambiguate {
		switch strategy {
		case CheckoutMerge:
			name += "-merge"
		default:
			name += "-head"
		}
	}

	return PullRequestHead{
		Number:       pr.Number,
		SourceOwner:  pr.SourceOwner,
		SourceRepo:   pr.SourceRepo,
		SourceBranch: pr.SourceBranch,
		Target:       BranchHead{Branch: pr.TargetBranch},
		Origin:       origin,
		Strategy:     strategy,
		name:         name,
	}
}

func (h PullRequestHead) Name() string { return h.name }

func (PullRequestHead) sealedHead() {}
