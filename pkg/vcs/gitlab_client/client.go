package gitlab_client

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/xanzy/go-gitlab"

	"github.com/zapier/headscan/pkg/config"
)

var ErrNoToken = errors.New("gitlab token needs to be set")

type Client struct {
	c   *GLClient
	cfg config.Config

	mu       sync.Mutex
	projects map[int]projectInfo
}

type GLClient struct {
	Branches        BranchesServices
	MergeRequests   MergeRequestsServices
	RepositoryFiles RepositoryFilesServices
	Repositories    RepositoriesServices
	Projects        ProjectsServices
	Commits         CommitsServices
}

func CreateGitlabClient(cfg config.Config) (*Client, error) {
	// Initialize the GitLab client with access token
	gitlabToken := cfg.VcsToken
	if gitlabToken == "" {
		return nil, ErrNoToken
	}
	log.Debug().Msgf("Token Length - %d", len(gitlabToken))

	var gitlabOptions []gitlab.ClientOptionFunc

	gitlabUrl := cfg.VcsBaseUrl
	if gitlabUrl != "" {
		gitlabOptions = append(gitlabOptions, gitlab.WithBaseURL(gitlabUrl))
	}

	c, err := gitlab.NewClient(gitlabToken, gitlabOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create Gitlab client")
	}

	return &Client{
		c: &GLClient{
			Branches:        &BranchesService{c.Branches},
			MergeRequests:   &MergeRequestsService{c.MergeRequests},
			RepositoryFiles: &RepositoryFilesService{c.RepositoryFiles},
			Repositories:    &RepositoriesService{c.Repositories},
			Projects:        &ProjectsService{c.Projects},
			Commits:         &CommitsService{c.Commits},
		},
		cfg:      cfg,
		projects: make(map[int]projectInfo),
	}, nil
}

func (c *Client) GetName() string { return "gitlab" }
