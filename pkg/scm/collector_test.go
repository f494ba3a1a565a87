package scm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorLastWriteWins(t *testing.T) {
	master := BranchHead{Branch: "master"}
	develop := BranchHead{Branch: "develop"}

	c := NewCollector()
	c.Observe(master, BranchRevision{Branch: master, Hash: "aaaa"})
	c.Observe(develop, BranchRevision{Branch: develop, Hash: "bbbb"})
	c.Observe(master, BranchRevision{Branch: master, Hash: "cccc"})
	c.Finish()

	require.Equal(t, Complete, c.State())
	assert.Equal(t, []Head{master, develop}, c.Heads())
	assert.Equal(t, map[Head]Revision{
		master:  BranchRevision{Branch: master, Hash: "cccc"},
		develop: BranchRevision{Branch: develop, Hash: "bbbb"},
	}, c.Result())
}

func TestCollectorLifecycle(t *testing.T) {
	master := BranchHead{Branch: "master"}

	c := NewCollector()
	assert.True(t, c.ShouldContinue())
	assert.Nil(t, c.Result(), "no result while collecting")
	assert.Nil(t, c.Heads())

	c.Observe(master, BranchRevision{Branch: master, Hash: "aaaa"})
	c.Finish()

	assert.Equal(t, Complete, c.State())
	assert.False(t, c.ShouldContinue())
	assert.Len(t, c.Result(), 1)

	// sealing again changes nothing
	c.Finish()
	assert.Equal(t, Complete, c.State())

	// and a sealed collector ignores stray observations
	c.Observe(BranchHead{Branch: "develop"}, BranchRevision{Branch: BranchHead{Branch: "develop"}, Hash: "bbbb"})
	assert.Len(t, c.Result(), 1)
}

func TestCollectorStop(t *testing.T) {
	master := BranchHead{Branch: "master"}

	c := NewCollector()
	c.Observe(master, BranchRevision{Branch: master, Hash: "aaaa"})
	c.Stop()

	assert.False(t, c.ShouldContinue())

	c.Finish()
	assert.Equal(t, Cancelled, c.State())
	assert.Len(t, c.Result(), 1, "partial results stay retrievable")
}

func TestLimitCollector(t *testing.T) {
	master := BranchHead{Branch: "master"}
	develop := BranchHead{Branch: "develop"}

	c := NewLimitCollector(1)
	assert.True(t, c.ShouldContinue())

	c.Observe(master, BranchRevision{Branch: master, Hash: "aaaa"})
	assert.False(t, c.ShouldContinue(), "limit reached stops the cycle")

	// in-flight work may still deliver; it must not grow the result
	c.Observe(develop, BranchRevision{Branch: develop, Hash: "bbbb"})

	c.Finish()
	assert.Equal(t, Cancelled, c.State())
	assert.Equal(t, []Head{master}, c.Heads())
	assert.Len(t, c.Result(), 1)
}

func TestCollectorStateStrings(t *testing.T) {
	assert.Equal(t, "collecting", Collecting.String())
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "unknown", CollectorState(9).String())
}
