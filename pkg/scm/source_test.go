package scm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapier/headscan/pkg/vcs"
)

const (
	masterSha = "8f1314fc3c8284d8c6d5886d473db98f2126071c"
	patchSha  = "095e69602bb95a278505e937e41d505ac3cdd263"
	mergeSha  = "c0e024f89969b976da165eecaa71e09dc60c3da1"
	forkSha   = "4f2d1a9c0b3e58d6a7f1c2e3d4b5a69788f0e1d2"
)

type fakeConnector struct {
	branches      []vcs.Branch
	prs           []vcs.PullRequest
	mergeHashes   map[int]string
	mergeErrs     map[int]error
	missingReadme map[string]bool
	statErr       error
	metadata      vcs.Metadata

	listBranchCalls int
	listPRCalls     int
	statCalls       int
	mergeCalls      int
}

func (f *fakeConnector) GetName() string { return "fake" }

func (f *fakeConnector) ListBranches(_ context.Context, _ vcs.Repo, fn func(vcs.Branch) bool) error {
	f.listBranchCalls++
	for _, b := range f.branches {
		if !fn(b) {
			return nil
		}
	}
	return nil
}

func (f *fakeConnector) ListPullRequests(_ context.Context, _ vcs.Repo, fn func(vcs.PullRequest) bool) error {
	f.listPRCalls++
	for _, pr := range f.prs {
		if !fn(pr) {
			return nil
		}
	}
	return nil
}

func (f *fakeConnector) GetMergeHash(_ context.Context, _ vcs.Repo, number int) (string, error) {
	f.mergeCalls++
	if err, ok := f.mergeErrs[number]; ok {
		return "", err
	}
	sha, ok := f.mergeHashes[number]
	if !ok {
		return "", vcs.ErrNoMergeHash
	}
	return sha, nil
}

func (f *fakeConnector) StatFile(_ context.Context, _ vcs.Repo, sha, path string) (vcs.FileKind, error) {
	f.statCalls++
	if f.statErr != nil {
		return vcs.FileAbsent, f.statErr
	}
	if path != "README.md" || f.missingReadme[sha] {
		return vcs.FileAbsent, nil
	}
	return vcs.FileRegular, nil
}

func (f *fakeConnector) GetFileContents(_ context.Context, _ vcs.Repo, _, _ string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConnector) GetMetadata(_ context.Context, _ vcs.Repo) (vcs.Metadata, error) {
	return f.metadata, nil
}

// yoloConnector serves a small repository with two branches and one same-owner
// pull request whose source branch sits on master's tip.
func yoloConnector() *fakeConnector {
	return &fakeConnector{
		branches: []vcs.Branch{
			{Name: "master", Sha: masterSha},
			{Name: "stephenc-patch-1", Sha: patchSha},
		},
		prs: []vcs.PullRequest{{
			Number:       1,
			Title:        "Update README.md",
			SourceOwner:  "cloudbeers",
			SourceRepo:   "yolo",
			SourceBranch: "master-tweaks",
			TargetBranch: "master",
			Sha:          masterSha,
		}},
		mergeHashes: map[int]string{1: mergeSha},
		metadata: vcs.Metadata{
			Description:   "You only live once",
			URL:           "http://yolo.example.com",
			DefaultBranch: "master",
		},
	}
}

func runFetch(t *testing.T, conn *fakeConnector, cfg Configuration) (*Collector, error) {
	t.Helper()

	source := NewSource(conn, vcs.Repo{Owner: "cloudbeers", Name: "yolo"})
	collector := NewCollector()
	err := source.Fetch(context.TODO(), RegularFile("README.md"), collector, cfg)
	collector.Finish()
	return collector, err
}

func TestFetchDiscoversHeads(t *testing.T) {
	conn := yoloConnector()
	collector, err := runFetch(t, conn, DefaultConfiguration())
	require.NoError(t, err)
	require.Equal(t, Complete, collector.State())

	master := BranchHead{Branch: "master"}
	patch := BranchHead{Branch: "stephenc-patch-1"}
	pr1 := NewPullRequestHead(conn.prs[0], OriginDefault, CheckoutMerge, false)

	assert.Equal(t, []Head{master, patch, pr1}, collector.Heads(), "branches come before pull requests")
	assert.Equal(t, map[Head]Revision{
		master: BranchRevision{Branch: master, Hash: masterSha},
		patch:  BranchRevision{Branch: patch, Hash: patchSha},
		pr1:    PullRequestRevision{PullRequest: pr1, BaseHash: masterSha, MergeHash: mergeSha},
	}, collector.Result())
	assert.Equal(t, 1, conn.mergeCalls)
}

func TestFetchTwiceSameResult(t *testing.T) {
	conn := yoloConnector()

	first, err := runFetch(t, conn, DefaultConfiguration())
	require.NoError(t, err)
	second, err := runFetch(t, conn, DefaultConfiguration())
	require.NoError(t, err)

	assert.Equal(t, first.Heads(), second.Heads())
	assert.Equal(t, first.Result(), second.Result())
	assert.Equal(t, 2, conn.listBranchCalls, "nothing is cached across cycles")
}

func TestFetchCriteriaFiltersHeads(t *testing.T) {
	conn := yoloConnector()
	conn.missingReadme = map[string]bool{patchSha: true}

	collector, err := runFetch(t, conn, DefaultConfiguration())
	require.NoError(t, err)

	master := BranchHead{Branch: "master"}
	pr1 := NewPullRequestHead(conn.prs[0], OriginDefault, CheckoutMerge, false)
	assert.Equal(t, []Head{master, pr1}, collector.Heads())
}

func TestFetchCriteriaErrorAbortsCycle(t *testing.T) {
	conn := yoloConnector()
	conn.statErr = errors.New("api down")

	_, err := runFetch(t, conn, DefaultConfiguration())
	require.Error(t, err)
	assert.ErrorContains(t, err, "api down")
	assert.Equal(t, 1, conn.statCalls)
	assert.Equal(t, 0, conn.listPRCalls, "cycle aborts before pull requests are listed")
}

func TestFetchStopsWhenObserverDoes(t *testing.T) {
	conn := yoloConnector()
	source := NewSource(conn, vcs.Repo{Owner: "cloudbeers", Name: "yolo"})
	collector := NewLimitCollector(1)

	err := source.Fetch(context.TODO(), RegularFile("README.md"), collector, DefaultConfiguration())
	require.NoError(t, err)
	collector.Finish()

	assert.Equal(t, Cancelled, collector.State())
	assert.Equal(t, []Head{BranchHead{Branch: "master"}}, collector.Heads())
	assert.Equal(t, 1, conn.statCalls)
	assert.Equal(t, 0, conn.listPRCalls)
	assert.Equal(t, 0, conn.mergeCalls)
}

func TestFetchNoStrategiesEnabled(t *testing.T) {
	conn := yoloConnector()
	collector, err := runFetch(t, conn, Configuration{})
	require.NoError(t, err)

	assert.Equal(t, []Head{
		BranchHead{Branch: "master"},
		BranchHead{Branch: "stephenc-patch-1"},
	}, collector.Heads())
	assert.Equal(t, 1, conn.listPRCalls, "pull requests are still listed, just not built")
	assert.Equal(t, 2, conn.statCalls, "disabled pull requests are never probed")
	assert.Equal(t, 0, conn.mergeCalls)
}

func TestFetchMergeHashFailureSkipsHead(t *testing.T) {
	conn := yoloConnector()
	conn.mergeErrs = map[int]error{1: vcs.ErrNoMergeHash}

	collector, err := runFetch(t, conn, DefaultConfiguration())
	require.Error(t, err)

	var headErr *HeadResolutionError
	require.True(t, errors.As(err, &headErr))
	assert.Equal(t, "PR-1", headErr.HeadName)
	assert.True(t, errors.Is(err, vcs.ErrNoMergeHash))

	// only the failed head is dropped; the rest of the cycle stands
	assert.Equal(t, Complete, collector.State())
	assert.Equal(t, []Head{
		BranchHead{Branch: "master"},
		BranchHead{Branch: "stephenc-patch-1"},
	}, collector.Heads())
}

func TestFetchForkHeads(t *testing.T) {
	conn := yoloConnector()
	forkPR := vcs.PullRequest{
		Number:       2,
		Title:        "Fix typo",
		SourceOwner:  "ydennisy",
		SourceRepo:   "yolo",
		SourceBranch: "patch-1",
		TargetBranch: "master",
		Sha:          forkSha,
	}
	conn.prs = append(conn.prs, forkPR)

	collector, err := runFetch(t, conn, DefaultConfiguration())
	require.NoError(t, err)

	pr2 := NewPullRequestHead(forkPR, OriginFork, CheckoutHead, false)
	heads := collector.Heads()
	require.Len(t, heads, 4)
	assert.Equal(t, pr2, heads[3])
	assert.Equal(t, PullRequestRevision{PullRequest: pr2, BaseHash: forkSha}, collector.Result()[pr2])
	assert.Equal(t, 1, conn.mergeCalls, "fork pull requests never ask for a merge hash under the default flags")
}

func TestFetchBothStrategiesPerPullRequest(t *testing.T) {
	conn := yoloConnector()
	cfg := Configuration{BuildOriginPRHead: true, BuildOriginPRMerge: true}

	collector, err := runFetch(t, conn, cfg)
	require.NoError(t, err)

	prHead := NewPullRequestHead(conn.prs[0], OriginDefault, CheckoutHead, true)
	prMerge := NewPullRequestHead(conn.prs[0], OriginDefault, CheckoutMerge, true)
	assert.Equal(t, "PR-1-head", prHead.Name())
	assert.Equal(t, "PR-1-merge", prMerge.Name())

	assert.Equal(t, []Head{
		BranchHead{Branch: "master"},
		BranchHead{Branch: "stephenc-patch-1"},
		prHead,
		prMerge,
	}, collector.Heads(), "HEAD rendition comes before MERGE")

	result := collector.Result()
	assert.Equal(t, PullRequestRevision{PullRequest: prHead, BaseHash: masterSha}, result[prHead])
	assert.Equal(t, PullRequestRevision{PullRequest: prMerge, BaseHash: masterSha, MergeHash: mergeSha}, result[prMerge])
}

func TestSourceEvaluateTrust(t *testing.T) {
	source := NewSource(yoloConnector(), vcs.Repo{Owner: "cloudbeers", Name: "yolo"})

	pr := vcs.PullRequest{Number: 3, SourceOwner: "CloudBeers", SourceRepo: "yolo", SourceBranch: "tweak", TargetBranch: "master"}
	head := NewPullRequestHead(pr, OriginDefault, CheckoutMerge, false)
	rev := PullRequestRevision{PullRequest: head, BaseHash: masterSha, MergeHash: mergeSha}

	assert.Equal(t, Trusted, source.EvaluateTrust(rev, DefaultConfiguration()))
	assert.Equal(t, Untrusted, source.EvaluateTrust(rev, Configuration{BuildForkPRMerge: true}))
}

func TestSourceGetMetadata(t *testing.T) {
	conn := yoloConnector()
	source := NewSource(conn, vcs.Repo{Owner: "cloudbeers", Name: "yolo"})
	assert.Equal(t, "cloudbeers/yolo", source.Repo().FullName())

	meta, err := source.GetMetadata(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, "You only live once", meta.Description)
	assert.Equal(t, "master", meta.DefaultBranch)
}
