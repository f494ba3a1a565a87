package scm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zapier/headscan/pkg/vcs"
)

func TestRevisionEquality(t *testing.T) {
	pr := vcs.PullRequest{Number: 1, SourceOwner: "cloudbeers", SourceRepo: "yolo", SourceBranch: "topic", TargetBranch: "master"}
	head := NewPullRequestHead(pr, OriginDefault, CheckoutMerge, false)

	t.Run("branch revisions compare by value", func(t *testing.T) {
		a := BranchRevision{Branch: BranchHead{Branch: "master"}, Hash: "8f1314fc3c8284d8c6d5886d473db98f2126071c"}
		b := BranchRevision{Branch: BranchHead{Branch: "master"}, Hash: "8f1314fc3c8284d8c6d5886d473db98f2126071c"}
		assert.Equal(t, a, b)

		b.Hash = "095e69602bb95a278505e937e41d505ac3cdd263"
		assert.NotEqual(t, a, b)
	})

	t.Run("pull request revisions compare by head and hashes", func(t *testing.T) {
		a := PullRequestRevision{PullRequest: head, BaseHash: "aaaa", MergeHash: "bbbb"}
		b := PullRequestRevision{PullRequest: head, BaseHash: "aaaa", MergeHash: "bbbb"}
		assert.Equal(t, a, b)

		b.MergeHash = "cccc"
		assert.NotEqual(t, a, b)
	})

	t.Run("revisions report their owning head", func(t *testing.T) {
		branch := BranchHead{Branch: "master"}
		assert.Equal(t, Head(branch), BranchRevision{Branch: branch, Hash: "aaaa"}.Head())
		assert.Equal(t, Head(head), PullRequestRevision{PullRequest: head, BaseHash: "aaaa"}.Head())
	})
}

func TestRevisionStrings(t *testing.T) {
	pr := vcs.PullRequest{Number: 2, SourceOwner: "stephenc", SourceRepo: "yolo", SourceBranch: "topic", TargetBranch: "master"}

	headOnly := PullRequestRevision{
		PullRequest: NewPullRequestHead(pr, OriginFork, CheckoutHead, false),
		BaseHash:    "aaaa",
	}
	assert.Equal(t, "aaaa", headOnly.String())

	merged := PullRequestRevision{
		PullRequest: NewPullRequestHead(pr, OriginFork, CheckoutMerge, false),
		BaseHash:    "aaaa",
		MergeHash:   "bbbb",
	}
	assert.Equal(t, "aaaa+bbbb", merged.String())

	assert.Equal(t, "cccc", BranchRevision{Branch: BranchHead{Branch: "master"}, Hash: "cccc"}.String())
}
