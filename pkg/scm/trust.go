package scm

import "strings"

// Verdict is the trust classification of a revision. Untrusted revisions are
// still collected; the build side runs them with reduced privilege (no
// secrets, no privileged agents).
type Verdict uint8

const (
	Untrusted Verdict = iota
	Trusted
)

var verdictString = map[Verdict]string{
	Untrusted: "untrusted",
	Trusted:   "trusted",
}

func (v Verdict) String() string {
	text, ok := verdictString[v]
	if !ok {
		text = "unknown"
	}
	return text
}

// ClassifyOrigin compares a pull request's source owner to the repository
// owner. Hosting services treat account names case-insensitively, so the
// comparison does too.
func ClassifyOrigin(repoOwner, sourceOwner string) Origin {
	if strings.EqualFold(repoOwner, sourceOwner) {
		return OriginDefault
	}
	return OriginFork
}

// EvaluateTrust decides whether a revision may build with full privileges
// under cfg. Branch revisions are always trusted. For pull request revisions
// the origin class is re-derived from the owners here rather than taken from
// the head, so the verdict cannot be skewed by how the head was constructed.
//
// The function is pure and must stay that way: callers evaluate it lazily at
// build time with the configuration current then, never with a verdict cached
// at discovery time.
func EvaluateTrust(repoOwner string, rev Revision, cfg Configuration) Verdict {
	switch r := rev.(type) {
	case BranchRevision:
		return Trusted
	case PullRequestRevision:
		origin := ClassifyOrigin(repoOwner, r.PullRequest.SourceOwner)
		if cfg.Enabled(origin, r.PullRequest.Strategy) {
			return Trusted
		}
		return Untrusted
	default:
		return Untrusted
	}
}
