package vcs

import (
	"fmt"
	"strings"

	giturls "github.com/chainguard-dev/git-urls"
	"github.com/pkg/errors"
)

// Repo identifies a remote repository by its owner and name, the way hosting
// services address them.
type Repo struct {
	Owner string // Owner of the repo (in Gitlab this is the namespace)
	Name  string
}

// FullName returns "owner/name" (ie zapier/headscan).
func (r Repo) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// ParseRepo accepts "owner/name" as well as https and ssh clone urls. Gitlab
// subgroup paths keep nesting in the owner, so "group/subgroup/project" parses
// with Owner "group/subgroup".
func ParseRepo(s string) (Repo, error) {
	result, err := giturls.Parse(s)
	if err != nil {
		return Repo{}, errors.Wrapf(err, "invalid repository %q", s)
	}

	path := result.Path
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return Repo{}, errors.Errorf("invalid repository %q: want owner/name", s)
	}
	for _, part := range parts {
		if part == "" {
			return Repo{}, errors.Errorf("invalid repository %q: want owner/name", s)
		}
	}

	return Repo{
		Owner: strings.Join(parts[:len(parts)-1], "/"),
		Name:  parts[len(parts)-1],
	}, nil
}
