package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/zapier/headscan/pkg/config"
	"github.com/zapier/headscan/pkg/container"
	"github.com/zapier/headscan/pkg/vcs/gitea_client"
	"github.com/zapier/headscan/pkg/vcs/github_client"
	"github.com/zapier/headscan/pkg/vcs/gitlab_client"
)

func newContainer(ctx context.Context, cfg config.Config) (container.Container, error) {
	var err error

	var ctr = container.Container{
		Config: cfg,
	}

	// create vcs client
	switch cfg.VcsType {
	case "github":
		ctr.Connector, err = github_client.CreateGithubClient(cfg)
	case "gitlab":
		ctr.Connector, err = gitlab_client.CreateGitlabClient(cfg)
	case "gitea":
		ctr.Connector, err = gitea_client.CreateGiteaClient(ctx, cfg)
	default:
		err = fmt.Errorf("unknown vcs-type: %q", cfg.VcsType)
	}
	if err != nil {
		return ctr, errors.Wrap(err, "failed to create vcs client")
	}

	return ctr, nil
}
