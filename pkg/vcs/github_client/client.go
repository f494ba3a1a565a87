package github_client

import (
	"context"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v62/github"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shurcooL/githubv4"
	"go.opentelemetry.io/otel"
	"golang.org/x/oauth2"

	"github.com/zapier/headscan/pkg/config"
	"github.com/zapier/headscan/pkg/vcs"
	"github.com/zapier/headscan/telemetry"
)

var tracer = otel.Tracer("pkg/vcs/github_client")

type Client struct {
	shurcoolClient *githubv4.Client
	googleClient   *GClient
	cfg            config.Config
}

// GClient is a struct that holds the services for the GitHub client
type GClient struct {
	PullRequests PullRequestsServices
	Repositories RepositoriesServices
}

// CreateGithubClient creates a new GitHub client from the configured
// credentials: a GitHub App key when the app settings are present, a static
// token otherwise. We can't validate the credentials at this point, so if they
// exist we assume they work.
func CreateGithubClient(cfg config.Config) (*Client, error) {
	var (
		err            error
		httpClient     *http.Client
		googleClient   *github.Client
		shurcoolClient *githubv4.Client
	)

	ctx := context.Background()

	if cfg.GithubAppID != 0 && cfg.GithubInstallationID != 0 && cfg.GithubPrivateKeyPath != "" {
		itr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, cfg.GithubAppID, cfg.GithubInstallationID, cfg.GithubPrivateKeyPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load github app key")
		}
		if cfg.VcsBaseUrl != "" {
			itr.BaseURL = cfg.VcsBaseUrl
		}
		log.Debug().Int64("app-id", cfg.GithubAppID).Msg("authenticating as github app installation")
		httpClient = &http.Client{Transport: itr}
	} else {
		t := cfg.VcsToken
		if t == "" {
			return nil, errors.New("github token needs to be set")
		}
		log.Debug().Msgf("Token Length - %d", len(t))
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: t},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	githubUrl := cfg.VcsBaseUrl
	githubUploadUrl := cfg.VcsUploadUrl
	// we need both urls to be set for github enterprise
	if githubUrl == "" || githubUploadUrl == "" {
		googleClient = github.NewClient(httpClient) // If this has failed, we'll catch it on first call

		// Use the client from shurcooL's githubv4 library for queries.
		shurcoolClient = githubv4.NewClient(httpClient)
	} else {
		googleClient, err = github.NewClient(httpClient).WithEnterpriseURLs(githubUrl, githubUploadUrl)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create github enterprise client")
		}
		shurcoolClient = githubv4.NewEnterpriseClient(githubUrl, httpClient)
	}

	return &Client{
		cfg: cfg,
		googleClient: &GClient{
			PullRequests: PullRequestsService{googleClient.PullRequests},
			Repositories: RepositoriesService{googleClient.Repositories},
		},
		shurcoolClient: shurcoolClient,
	}, nil
}

func (c *Client) GetName() string {
	return "github"
}

// ListBranches calls fn for every branch of the repository, in API listing
// order.
func (c *Client) ListBranches(ctx context.Context, repo vcs.Repo, fn func(vcs.Branch) bool) error {
	ctx, span := tracer.Start(ctx, "ListBranches")
	defer span.End()

	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		branches, resp, err := c.googleClient.Repositories.ListBranches(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			telemetry.SetError(span, err, "ListBranches")
			return errors.Wrap(err, "failed to list branches")
		}
		for _, branch := range branches {
			b := vcs.Branch{
				Name: branch.GetName(),
				Sha:  branch.GetCommit().GetSHA(),
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

// ListPullRequests calls fn for every open pull request, oldest first.
func (c *Client) ListPullRequests(ctx context.Context, repo vcs.Repo, fn func(vcs.PullRequest) bool) error {
	ctx, span := tracer.Start(ctx, "ListPullRequests")
	defer span.End()

	opts := &github.PullRequestListOptions{
		State:       "open",
		Sort:        "created",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		prs, resp, err := c.googleClient.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			telemetry.SetError(span, err, "ListPullRequests")
			return errors.Wrap(err, "failed to list pull requests")
		}
		for _, pr := range prs {
			if !fn(translatePullRequest(pr)) {
				return nil
			}
		}
		if resp.NextPage == 0 {
			return nil
		}
		opts.Page = resp.NextPage
	}
}

func translatePullRequest(pr *github.PullRequest) vcs.PullRequest {
	head := pr.GetHead()
	// the source repository is nil when a fork was deleted; the empty owner
	// then classifies the pull request as coming from a fork
	return vcs.PullRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		SourceOwner:  head.GetRepo().GetOwner().GetLogin(),
		SourceRepo:   head.GetRepo().GetName(),
		SourceBranch: head.GetRef(),
		TargetBranch: pr.GetBase().GetRef(),
		Sha:          head.GetSHA(),
	}
}

// GetMergeHash returns the hash of GitHub's test merge commit for the pull
// request. The mergeability of a pull request is computed asynchronously, so
// the request is retried until GitHub reports a definite answer.
func (c *Client) GetMergeHash(ctx context.Context, repo vcs.Repo, number int) (string, error) {
	ctx, span := tracer.Start(ctx, "GetMergeHash")
	defer span.End()

	var mergeSha string
	err := backoff.Retry(func() error {
		pr, resp, err := c.googleClient.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
		if err := checkReturnForBackoff(resp, err); err != nil {
			return err
		}
		if pr.Mergeable == nil {
			return errors.New("mergeability not computed yet")
		}
		if !pr.GetMergeable() {
			return &backoff.PermanentError{Err: vcs.ErrNoMergeHash}
		}
		mergeSha = pr.GetMergeCommitSHA()
		return nil
	}, getBackOff())
	if err != nil {
		telemetry.SetError(span, err, "GetMergeHash")
		return "", err
	}
	if mergeSha == "" {
		return "", vcs.ErrNoMergeHash
	}
	return mergeSha, nil
}

// StatFile reports what path points at in the repository tree at the given
// commit.
func (c *Client) StatFile(ctx context.Context, repo vcs.Repo, sha, path string) (vcs.FileKind, error) {
	ctx, span := tracer.Start(ctx, "StatFile")
	defer span.End()

	file, dir, resp, err := c.googleClient.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, &github.RepositoryContentGetOptions{Ref: sha})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return vcs.FileAbsent, nil
		}
		telemetry.SetError(span, err, "StatFile")
		return vcs.FileAbsent, errors.Wrap(err, "failed to stat file")
	}

	if dir != nil {
		return vcs.FileDirectory, nil
	}
	if file != nil && file.GetType() == "file" {
		return vcs.FileRegular, nil
	}
	return vcs.FileOther, nil
}

// GetFileContents returns the decoded contents of path at ref, or
// vcs.ErrFileNotFound when the path does not exist at that revision.
func (c *Client) GetFileContents(ctx context.Context, repo vcs.Repo, ref, path string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "GetFileContents")
	defer span.End()

	file, _, resp, err := c.googleClient.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, vcs.ErrFileNotFound
		}
		telemetry.SetError(span, err, "GetFileContents")
		return nil, errors.Wrap(err, "failed to get file contents")
	}
	if file == nil {
		return nil, errors.Errorf("%s is not a file", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode file contents")
	}
	return []byte(content), nil
}

// GetMetadata returns the repository description, web URL and default branch.
// The GraphQL API serves all three in one request.
func (c *Client) GetMetadata(ctx context.Context, repo vcs.Repo) (vcs.Metadata, error) {
	ctx, span := tracer.Start(ctx, "GetMetadata")
	defer span.End()

	var query struct {
		Repository struct {
			Description      githubv4.String
			URL              githubv4.URI `graphql:"url"`
			DefaultBranchRef struct {
				Name githubv4.String
			}
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]interface{}{
		"owner": githubv4.String(repo.Owner),
		"name":  githubv4.String(repo.Name),
	}
	if err := c.shurcoolClient.Query(ctx, &query, variables); err != nil {
		telemetry.SetError(span, err, "GetMetadata")
		return vcs.Metadata{}, errors.Wrap(err, "failed to query repository")
	}

	metadata := vcs.Metadata{
		Description:   string(query.Repository.Description),
		DefaultBranch: string(query.Repository.DefaultBranchRef.Name),
	}
	if query.Repository.URL.URL != nil {
		metadata.URL = query.Repository.URL.String()
	}
	return metadata, nil
}
