package scm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zapier/headscan/pkg/vcs"
)

func prRevision(number int, sourceOwner string, strategy CheckoutStrategy) PullRequestRevision {
	pr := vcs.PullRequest{
		Number:       number,
		SourceOwner:  sourceOwner,
		SourceRepo:   "yolo",
		SourceBranch: "topic",
		TargetBranch: "master",
	}
	return PullRequestRevision{
		PullRequest: NewPullRequestHead(pr, ClassifyOrigin("cloudbeers", sourceOwner), strategy, false),
		BaseHash:    "8f1314fc3c8284d8c6d5886d473db98f2126071c",
	}
}

func TestEvaluateTrust(t *testing.T) {
	testcases := []struct {
		name     string
		rev      Revision
		cfg      Configuration
		expected Verdict
	}{
		{
			name:     "branches are always trusted",
			rev:      BranchRevision{Branch: BranchHead{Branch: "master"}, Hash: "aaaa"},
			cfg:      Configuration{},
			expected: Trusted,
		},
		{
			name:     "origin head trusted when flag set",
			rev:      prRevision(1, "cloudbeers", CheckoutHead),
			cfg:      Configuration{BuildOriginPRHead: true},
			expected: Trusted,
		},
		{
			name:     "origin head untrusted when flag clear",
			rev:      prRevision(1, "cloudbeers", CheckoutHead),
			cfg:      Configuration{BuildForkPRHead: true, BuildOriginPRMerge: true},
			expected: Untrusted,
		},
		{
			name:     "owner comparison ignores case",
			rev:      prRevision(1, "CloudBeers", CheckoutHead),
			cfg:      Configuration{BuildOriginPRHead: true},
			expected: Trusted,
		},
		{
			name:     "fork merge trusted only by its own flag",
			rev:      prRevision(2, "stephenc", CheckoutMerge),
			cfg:      Configuration{BuildForkPRMerge: true},
			expected: Trusted,
		},
		{
			name:     "fork head untrusted under default-ish origin-only policy",
			rev:      prRevision(2, "stephenc", CheckoutHead),
			cfg:      Configuration{BuildOriginPRHead: true, BuildOriginPRMerge: true},
			expected: Untrusted,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EvaluateTrust("cloudbeers", tc.rev, tc.cfg))
		})
	}
}

func TestEvaluateTrustIgnoresStoredOrigin(t *testing.T) {
	// The head claims to be from a fork, but the owners match; the verdict
	// re-derives the origin from the owners.
	pr := vcs.PullRequest{Number: 3, SourceOwner: "CloudBeers", SourceRepo: "yolo", SourceBranch: "topic", TargetBranch: "master"}
	rev := PullRequestRevision{
		PullRequest: NewPullRequestHead(pr, OriginFork, CheckoutHead, false),
		BaseHash:    "aaaa",
	}

	assert.Equal(t, Trusted, EvaluateTrust("cloudbeers", rev, Configuration{BuildOriginPRHead: true}))
	assert.Equal(t, Untrusted, EvaluateTrust("cloudbeers", rev, Configuration{BuildForkPRHead: true}))
}

func TestEvaluateTrustLeavesRevisionUntouched(t *testing.T) {
	rev := prRevision(1, "cloudbeers", CheckoutHead)
	before := rev

	verdict := EvaluateTrust("cloudbeers", rev, Configuration{BuildOriginPRHead: true})

	assert.Equal(t, Trusted, verdict)
	assert.Equal(t, before, rev)
}

func TestEvaluateTrustIsLazy(t *testing.T) {
	// The same revision flips classification when the configuration changes
	// between discovery and build time.
	rev := prRevision(1, "cloudbeers", CheckoutMerge)

	assert.Equal(t, Trusted, EvaluateTrust("cloudbeers", rev, Configuration{BuildOriginPRMerge: true}))
	assert.Equal(t, Untrusted, EvaluateTrust("cloudbeers", rev, Configuration{}))
}

func TestClassifyOrigin(t *testing.T) {
	assert.Equal(t, OriginDefault, ClassifyOrigin("cloudbeers", "cloudbeers"))
	assert.Equal(t, OriginDefault, ClassifyOrigin("cloudbeers", "CloudBeers"))
	assert.Equal(t, OriginFork, ClassifyOrigin("cloudbeers", "stephenc"))
}
