package github_client

import (
	"context"

	"github.com/google/go-github/v62/github"
)

type RepositoriesServices interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (fileContent *github.RepositoryContent, directoryContent []*github.RepositoryContent, resp *github.Response, err error)
	ListBranches(ctx context.Context, owner string, repo string, opts *github.BranchListOptions) ([]*github.Branch, *github.Response, error)
}

type RepositoriesService struct {
	RepositoriesServices
}
