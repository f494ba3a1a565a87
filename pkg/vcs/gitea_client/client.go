package gitea_client

import (
	"context"
	"net/http"
	"path"

	"code.gitea.io/sdk/gitea"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/zapier/headscan/pkg/config"
	"github.com/zapier/headscan/pkg/vcs"
	"github.com/zapier/headscan/telemetry"
)

var tracer = otel.Tracer("pkg/vcs/gitea_client")

const pageSize = 50

// Client implements vcs.Connector for Gitea.
type Client struct {
	g   *GClient
	cfg config.Config
}

// CreateGiteaClient creates a new Gitea client using the provided configuration.
func CreateGiteaClient(ctx context.Context, cfg config.Config) (*Client, error) {
	_, span := tracer.Start(ctx, "CreateGiteaClient")
	defer span.End()

	if cfg.VcsToken == "" {
		return nil, errors.New("gitea token must be set")
	}

	giteaClient, err := gitea.NewClient(
		cfg.VcsBaseUrl,
		gitea.SetToken(cfg.VcsToken),
		gitea.SetContext(ctx),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gitea client")
	}

	return &Client{
		g: &GClient{
			PullRequests: giteaClient,
			Repositories: giteaClient,
		},
		cfg: cfg,
	}, nil
}

func (c *Client) GetName() string { return "gitea" }

// ListBranches calls fn for every branch of the repository, in API listing
// order.
func (c *Client) ListBranches(ctx context.Context, repo vcs.Repo, fn func(vcs.Branch) bool) error {
	_, span := tracer.Start(ctx, "ListBranches")
	defer span.End()

	page := 1
	for {
		branches, _, err := c.g.Repositories.ListRepoBranches(repo.Owner, repo.Name, gitea.ListRepoBranchesOptions{
			ListOptions: gitea.ListOptions{Page: page, PageSize: pageSize},
		})
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

		if len(branches) < pageSize {
			return nil
		}
		page++
	}
}

// ListPullRequests calls fn for every open pull request, oldest first.
func (c *Client) ListPullRequests(ctx context.Context, repo vcs.Repo, fn func(vcs.PullRequest) bool) error {
	_, span := tracer.Start(ctx, "ListPullRequests")
	defer span.End()

	page := 1
	for {
		prs, _, err := c.g.PullRequests.ListRepoPullRequests(repo.Owner, repo.Name, gitea.ListPullRequestsOptions{
			ListOptions: gitea.ListOptions{Page: page, PageSize: pageSize},
			State:       gitea.StateOpen,
			Sort:        "oldest",
		})
		if err != nil {
			telemetry.SetError(span, err, "ListPullRequests")
			return errors.Wrap(err, "failed to list pull requests")
		}

		for _, pr := range prs {
			if !fn(translatePullRequest(pr)) {
				return nil
			}
		}

		if len(prs) < pageSize {
			return nil
		}
		page++
	}
}

func translatePullRequest(pr *gitea.PullRequest) vcs.PullRequest {
	out := vcs.PullRequest{
		Number: int(pr.Index),
		Title:  pr.Title,
	}
	if pr.Head != nil {
		out.SourceBranch = pr.Head.Ref
		out.Sha = pr.Head.Sha
		if pr.Head.Repository != nil {
			out.SourceRepo = pr.Head.Repository.Name
			if pr.Head.Repository.Owner != nil {
				out.SourceOwner = pr.Head.Repository.Owner.UserName
			}
		}
	}
	if pr.Base != nil {
		out.TargetBranch = pr.Base.Ref
	}
	return out
}

// GetMergeHash returns the merge commit hash for the pull request. Gitea
// computes its test merges in a scratch repository and never exposes their
// hashes through the API, so only an already merged pull request carries one.
func (c *Client) GetMergeHash(ctx context.Context, repo vcs.Repo, number int) (string, error) {
	_, span := tracer.Start(ctx, "GetMergeHash")
	defer span.End()

	pr, _, err := c.g.PullRequests.GetPullRequest(repo.Owner, repo.Name, int64(number))
	if err != nil {
		telemetry.SetError(span, err, "GetMergeHash")
		return "", errors.Wrap(err, "failed to get pull request")
	}

	if pr.MergedCommitID == nil || *pr.MergedCommitID == "" {
		return "", vcs.ErrNoMergeHash
	}
	return *pr.MergedCommitID, nil
}

// StatFile reports what path points at in the repository tree at the given
// commit. The entry is looked up through its parent directory listing because
// the contents endpoint rejects directories.
func (c *Client) StatFile(ctx context.Context, repo vcs.Repo, sha, filePath string) (vcs.FileKind, error) {
	_, span := tracer.Start(ctx, "StatFile")
	defer span.End()

	dir := path.Dir(filePath)
	if dir == "." {
		dir = ""
	}

	entries, resp, err := c.g.Repositories.ListContents(repo.Owner, repo.Name, sha, dir)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return vcs.FileAbsent, nil
		}
		telemetry.SetError(span, err, "StatFile")
		return vcs.FileAbsent, errors.Wrap(err, "failed to stat file")
	}

	for _, entry := range entries {
		if entry.Path != filePath {
			continue
		}
		switch entry.Type {
		case "file":
			return vcs.FileRegular, nil
		case "dir":
			return vcs.FileDirectory, nil
		default:
			return vcs.FileOther, nil
		}
	}
	return vcs.FileAbsent, nil
}

// GetFileContents returns the raw contents of path at ref, or
// vcs.ErrFileNotFound when the path does not exist at that revision.
func (c *Client) GetFileContents(ctx context.Context, repo vcs.Repo, ref, filePath string) ([]byte, error) {
	_, span := tracer.Start(ctx, "GetFileContents")
	defer span.End()

	content, resp, err := c.g.Repositories.GetFile(repo.Owner, repo.Name, ref, filePath)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, vcs.ErrFileNotFound
		}
		telemetry.SetError(span, err, "GetFileContents")
		return nil, errors.Wrap(err, "failed to get file contents")
	}
	return content, nil
}

// GetMetadata returns the repository description, web URL and default branch.
func (c *Client) GetMetadata(ctx context.Context, repo vcs.Repo) (vcs.Metadata, error) {
	_, span := tracer.Start(ctx, "GetMetadata")
	defer span.End()

	repoInfo, _, err := c.g.Repositories.GetRepo(repo.Owner, repo.Name)
	if err != nil {
		telemetry.SetError(span, err, "GetMetadata")
		return vcs.Metadata{}, errors.Wrap(err, "failed to get repo")
	}

	return vcs.Metadata{
		Description:   repoInfo.Description,
		URL:           repoInfo.HTMLURL,
		DefaultBranch: repoInfo.DefaultBranch,
	}, nil
}
