package gitlab_client

import (
	"context"
	"net/http"
	"path"

	"github.com/pkg/errors"
	"github.com/xanzy/go-gitlab"

	"github.com/zapier/headscan/pkg"
	"github.com/zapier/headscan/pkg/vcs"
	"github.com/zapier/headscan/telemetry"
)

// StatFile reports what path points at in the project tree at the given
// commit. The tree listing carries the file mode, which is needed to tell
// regular files from symlinks.
func (c *Client) StatFile(ctx context.Context, repo vcs.Repo, sha, filePath string) (vcs.FileKind, error) {
	ctx, span := tracer.Start(ctx, "StatFile")
	defer span.End()

	dir := path.Dir(filePath)
	if dir == "." {
		dir = ""
	}

	opts := &gitlab.ListTreeOptions{
		Path:        pkg.Pointer(dir),
		Ref:         pkg.Pointer(sha),
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		entries, resp, err := c.c.Repositories.ListTree(repo.FullName(), opts, gitlab.WithContext(ctx))
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return vcs.FileAbsent, nil
			}
			telemetry.SetError(span, err, "StatFile")
			return vcs.FileAbsent, errors.Wrap(err, "failed to list tree")
		}

		for _, entry := range entries {
			if entry.Path != filePath {
				continue
			}
			switch {
			case entry.Type == "tree":
				return vcs.FileDirectory, nil
			case entry.Type == "blob" && (entry.Mode == "100644" || entry.Mode == "100755"):
				return vcs.FileRegular, nil
			default:
				return vcs.FileOther, nil
			}
		}

		if resp.NextPage == 0 {
			return vcs.FileAbsent, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetFileContents returns the raw contents of path at ref, or
// vcs.ErrFileNotFound when the path does not exist at that revision.
func (c *Client) GetFileContents(ctx context.Context, repo vcs.Repo, ref, filePath string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "GetFileContents")
	defer span.End()

	contents, resp, err := c.c.RepositoryFiles.GetRawFile(repo.FullName(), filePath, &gitlab.GetRawFileOptions{
		Ref: pkg.Pointer(ref),
	}, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, vcs.ErrFileNotFound
		}
		telemetry.SetError(span, err, "GetFileContents")
		return nil, errors.Wrap(err, "failed to get raw file")
	}
	return contents, nil
}

type RepositoriesServices interface {
	ListTree(pid interface{}, opt *gitlab.ListTreeOptions, options ...gitlab.RequestOptionFunc) ([]*gitlab.TreeNode, *gitlab.Response, error)
}

type RepositoriesService struct {
	RepositoriesServices
}

type RepositoryFilesServices interface {
	GetRawFile(pid interface{}, fileName string, opt *gitlab.GetRawFileOptions, options ...gitlab.RequestOptionFunc) ([]byte, *gitlab.Response, error)
}

type RepositoryFilesService struct {
	RepositoryFilesServices
}
