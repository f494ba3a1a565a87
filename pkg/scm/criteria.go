package scm

import (
	"context"

	"github.com/zapier/headscan/pkg/vcs"
)

// Probe exposes file stats at one pinned revision of one repository, hiding
// everything else about the transport.
type Probe interface {
	// Stat reports what kind of entry path is at the probed revision.
	Stat(ctx context.Context, path string) (vcs.FileKind, error)
}

// Criteria decides whether a candidate head should be built at all, given a
// probe bound to the candidate's tip revision. Returning false discards the
// candidate silently. Returning an error aborts the whole fetch cycle: a
// failing probe usually means every candidate would misreport, so dropping
// candidates one by one would hide the problem.
type Criteria interface {
	Accepts(ctx context.Context, probe Probe) (bool, error)
}

// CriteriaFunc adapts a plain function to the Criteria interface.
type CriteriaFunc func(ctx context.Context, probe Probe) (bool, error)

func (f CriteriaFunc) Accepts(ctx context.Context, probe Probe) (bool, error) {
	return f(ctx, probe)
}

// RegularFile is the conventional marker-file criterion: the head qualifies
// when path exists as a regular file at its tip.
func RegularFile(path string) Criteria {
	return CriteriaFunc(func(ctx context.Context, probe Probe) (bool, error) {
		kind, err := probe.Stat(ctx, path)
		if err != nil {
			return false, err
		}
		return kind == vcs.FileRegular, nil
	})
}

// connectorProbe binds a connector's stat capability to one revision.
type connectorProbe struct {
	connector vcs.Connector
	repo      vcs.Repo
	sha       string
}

func (p connectorProbe) Stat(ctx context.Context, path string) (vcs.FileKind, error) {
	return p.connector.StatFile(ctx, p.repo, p.sha, path)
}
