package policy

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/dealancer/validate.v2"
	"gopkg.in/yaml.v3"

	"github.com/zapier/headscan/pkg/vcs"
)

const RepoPolicyFilenamePrefix = `.headscan`

var RepoPolicyFileExtensions = []string{".yaml", ".yml"}

var ErrNoRepoPolicy = errors.New("repo policy file not found")

// ContentFetcher is the slice of the connector the loader needs.
type ContentFetcher interface {
	GetFileContents(ctx context.Context, repo vcs.Repo, ref, path string) ([]byte, error)
}

func RepoPolicyFilenameVariations() []string {
	filenames := []string{}
	for _, ext := range RepoPolicyFileExtensions {
		filenames = append(filenames, RepoPolicyFilenamePrefix+ext)
	}
	return filenames
}

// Load reads the policy file from ref of the given repository, trying the
// filename variations in order. It returns ErrNoRepoPolicy when the
// repository carries none.
func Load(ctx context.Context, fetcher ContentFetcher, repo vcs.Repo, ref string) (*RepoPolicy, error) {
	for _, filename := range RepoPolicyFilenameVariations() {
		b, err := fetcher.GetFileContents(ctx, repo, ref, filename)
		if err != nil {
			if errors.Is(err, vcs.ErrFileNotFound) {
				continue
			}
			return nil, errors.Wrapf(err, "could not read %s", filename)
		}

		log.Debug().Str("repo", repo.FullName()).Str("filename", filename).Msg("found repo policy file")
		return LoadBytes(b)
	}

	return nil, ErrNoRepoPolicy
}

// LoadBytes parses and validates one policy document. Fields the document
// omits keep their defaults.
func LoadBytes(b []byte) (*RepoPolicy, error) {
	pol := Default("")
	err := yaml.Unmarshal(b, pol)
	if err != nil {
		return nil, fmt.Errorf("could not parse repo policy file (.headscan.yaml): %v", err)
	}

	if err := validate.Validate(pol); err != nil {
		return nil, err
	}

	return pol, nil
}
