package policy

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapier/headscan/pkg/vcs"
)

type stubFetcher struct {
	files map[string][]byte
	err   error
}

func (s *stubFetcher) GetFileContents(_ context.Context, _ vcs.Repo, _, path string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.files[path]
	if !ok {
		return nil, vcs.ErrFileNotFound
	}
	return b, nil
}

var testRepo = vcs.Repo{Owner: "zapier", Name: "headscan"}

func TestLoadBytes(t *testing.T) {
	testcases := []struct {
		name     string
		document string
		expected *RepoPolicy
		wantErr  bool
	}{
		{
			name: "full document",
			document: `markerPath: Jenkinsfile
branches:
  - main
  - release
skipPullRequests: true
`,
			expected: &RepoPolicy{
				MarkerPath:       "Jenkinsfile",
				Branches:         []string{"main", "release"},
				SkipPullRequests: true,
			},
		},
		{
			name: "omitted fields keep defaults",
			document: `branches:
  - main
`,
			expected: &RepoPolicy{
				MarkerPath: "README.md",
				Branches:   []string{"main"},
			},
		},
		{
			name:     "empty document",
			document: "",
			expected: &RepoPolicy{MarkerPath: "README.md"},
		},
		{
			name:     "explicit empty marker fails validation",
			document: `markerPath: ""`,
			wantErr:  true,
		},
		{
			name:     "not yaml",
			document: "{{{",
			wantErr:  true,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			pol, err := LoadBytes([]byte(tc.document))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, pol)
		})
	}
}

func TestLoad(t *testing.T) {
	fetcher := &stubFetcher{files: map[string][]byte{
		".headscan.yaml": []byte("markerPath: Jenkinsfile\n"),
		".headscan.yml":  []byte("markerPath: Makefile\n"),
	}}

	pol, err := Load(context.TODO(), fetcher, testRepo, "main")
	require.NoError(t, err)
	assert.Equal(t, "Jenkinsfile", pol.MarkerPath, "the .yaml variant wins over .yml")
}

func TestLoadYmlFallback(t *testing.T) {
	fetcher := &stubFetcher{files: map[string][]byte{
		".headscan.yml": []byte("skipPullRequests: true\n"),
	}}

	pol, err := Load(context.TODO(), fetcher, testRepo, "main")
	require.NoError(t, err)
	assert.True(t, pol.SkipPullRequests)
	assert.Equal(t, "README.md", pol.MarkerPath)
}

func TestLoadNotFound(t *testing.T) {
	fetcher := &stubFetcher{}

	_, err := Load(context.TODO(), fetcher, testRepo, "main")
	require.ErrorIs(t, err, ErrNoRepoPolicy)
}

func TestLoadTransportError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("boom")}

	_, err := Load(context.TODO(), fetcher, testRepo, "main")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoRepoPolicy)
}
