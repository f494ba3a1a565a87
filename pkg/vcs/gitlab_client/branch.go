package gitlab_client

import (
	"context"

	"github.com/pkg/errors"
	"github.com/xanzy/go-gitlab"

	"github.com/zapier/headscan/pkg/vcs"
	"github.com/zapier/headscan/telemetry"
)

// ListBranches calls fn for every branch of the project, in API listing order.
func (c *Client) ListBranches(ctx context.Context, repo vcs.Repo, fn func(vcs.Branch) bool) error {
	ctx, span := tracer.Start(ctx, "ListBranches")
	defer span.End()

	opts := &gitlab.ListBranchesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		branches, resp, err := c.c.Branches.ListBranches(repo.FullName(), opts, gitlab.WithContext(ctx))
		if err != nil {
			telemetry.SetError(span, err, "ListBranches")
			return errors.Wrap(err, "failed to list branches")
		}

		for _, branch := range branches {
			b := vcs.Branch{Name: branch.Name}
			if branch.Commit != nil {
				b.Sha = branch.Commit.ID
			}
			if !fn(b) {
				return nil
			}
		}

		if resp.NextPage == 0 {
			return nil
		}
		opts.Page = resp.NextPage
	}
}

type BranchesServices interface {
	ListBranches(pid interface{}, opts *gitlab.ListBranchesOptions, options ...gitlab.RequestOptionFunc) ([]*gitlab.Branch, *gitlab.Response, error)
}

type BranchesService struct {
	BranchesServices
}
