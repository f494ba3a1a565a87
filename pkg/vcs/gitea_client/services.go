package gitea_client

import "code.gitea.io/sdk/gitea"

// PullRequestsServices defines the interface for pull request operations.
type PullRequestsServices interface {
	ListRepoPullRequests(owner, repo string, opt gitea.ListPullRequestsOptions) ([]*gitea.PullRequest, *gitea.Response, error)
	GetPullRequest(owner, repo string, index int64) (*gitea.PullRequest, *gitea.Response, error)
}

// RepositoriesServices defines the interface for repository operations.
type RepositoriesServices interface {
	GetRepo(owner, reponame string) (*gitea.Repository, *gitea.Response, error)
	ListRepoBranches(user, repo string, opt gitea.ListRepoBranchesOptions) ([]*gitea.Branch, *gitea.Response, error)
	ListContents(owner, repo, ref, filepath string) ([]*gitea.ContentsResponse, *gitea.Response, error)
	GetFile(owner, repo, ref, tree string, resolveLFS ...bool) ([]byte, *gitea.Response, error)
}

// GClient wraps the Gitea SDK client into service groups for testability.
type GClient struct {
	PullRequests PullRequestsServices
	Repositories RepositoriesServices
}
