package gitlab_client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/xanzy/go-gitlab"
	"go.opentelemetry.io/otel"

	"github.com/zapier/headscan/pkg"
	"github.com/zapier/headscan/pkg/vcs"
	"github.com/zapier/headscan/telemetry"
)

var tracer = otel.Tracer("pkg/vcs/gitlab_client")

// ListPullRequests calls fn for every open merge request, oldest first.
func (c *Client) ListPullRequests(ctx context.Context, repo vcs.Repo, fn func(vcs.PullRequest) bool) error {
	ctx, span := tracer.Start(ctx, "ListPullRequests")
	defer span.End()

	opts := &gitlab.ListProjectMergeRequestsOptions{
		State:       pkg.Pointer("opened"),
		OrderBy:     pkg.Pointer("created_at"),
		Sort:        pkg.Pointer("asc"),
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		mergeRequests, resp, err := c.c.MergeRequests.ListProjectMergeRequests(repo.FullName(), opts, gitlab.WithContext(ctx))
		if err != nil {
			telemetry.SetError(span, err, "ListPullRequests")
			return errors.Wrap(err, "failed to list merge requests")
		}

		for _, mr := range mergeRequests {
			pr, err := c.translateMergeRequest(mr)
			if err != nil {
				telemetry.SetError(span, err, "ListPullRequests")
				return err
			}
			if !fn(pr) {
				return nil
			}
		}

		if resp.NextPage == 0 {
			return nil
		}
		opts.Page = resp.NextPage
	}
}

// translateMergeRequest resolves the source project of the merge request so
// that the source namespace can be compared against the repository owner.
func (c *Client) translateMergeRequest(mr *gitlab.MergeRequest) (vcs.PullRequest, error) {
	pr := vcs.PullRequest{
		Number:       mr.IID,
		Title:        mr.Title,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		Sha:          mr.SHA,
	}

	if mr.SourceProjectID != 0 {
		source, err := c.sourceProject(mr.SourceProjectID)
		if err != nil {
			return pr, errors.Wrapf(err, "failed to resolve source project of merge request %d", mr.IID)
		}
		pr.SourceOwner = source.namespace
		pr.SourceRepo = source.name
	}

	return pr, nil
}

// GetMergeHash returns the tip of the merge ref GitLab keeps for every
// mergeable merge request. Conflicting merge requests, and merge requests
// whose mergeability was never computed, have no merge ref.
func (c *Client) GetMergeHash(ctx context.Context, repo vcs.Repo, number int) (string, error) {
	ctx, span := tracer.Start(ctx, "GetMergeHash")
	defer span.End()

	ref := fmt.Sprintf("refs/merge-requests/%d/merge", number)

	var commit *gitlab.Commit
	err := backoff.Retry(func() error {
		var resp *gitlab.Response
		var err error
		commit, resp, err = c.c.Commits.GetCommit(repo.FullName(), ref, nil, gitlab.WithContext(ctx))
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return &backoff.PermanentError{Err: vcs.ErrNoMergeHash}
		}
		return checkReturnForBackoff(resp, err)
	}, getBackOff())
	if err != nil {
		if errors.Is(err, vcs.ErrNoMergeHash) {
			return "", vcs.ErrNoMergeHash
		}
		telemetry.SetError(span, err, "GetMergeHash")
		return "", errors.Wrap(err, "failed to get merge ref")
	}

	return commit.ID, nil
}

type MergeRequestsServices interface {
	ListProjectMergeRequests(pid interface{}, opt *gitlab.ListProjectMergeRequestsOptions, options ...gitlab.RequestOptionFunc) ([]*gitlab.MergeRequest, *gitlab.Response, error)
}

type MergeRequestsService struct {
	MergeRequestsServices
}

type CommitsServices interface {
	GetCommit(pid interface{}, sha string, opt *gitlab.GetCommitOptions, options ...gitlab.RequestOptionFunc) (*gitlab.Commit, *gitlab.Response, error)
}

type CommitsService struct {
	CommitsServices
}
