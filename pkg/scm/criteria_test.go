package scm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapier/headscan/pkg/vcs"
)

type stubProbe struct {
	kinds map[string]vcs.FileKind
	err   error
	calls []string
}

func (p *stubProbe) Stat(_ context.Context, path string) (vcs.FileKind, error) {
	p.calls = append(p.calls, path)
	if p.err != nil {
		return vcs.FileAbsent, p.err
	}
	return p.kinds[path], nil
}

func TestRegularFile(t *testing.T) {
	testcases := []struct {
		name     string
		kind     vcs.FileKind
		expected bool
	}{
		{name: "regular file accepted", kind: vcs.FileRegular, expected: true},
		{name: "absent path rejected", kind: vcs.FileAbsent, expected: false},
		{name: "directory rejected", kind: vcs.FileDirectory, expected: false},
		{name: "other entry rejected", kind: vcs.FileOther, expected: false},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			probe := &stubProbe{kinds: map[string]vcs.FileKind{"README.md": tc.kind}}
			ok, err := RegularFile("README.md").Accepts(context.TODO(), probe)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
			assert.Equal(t, []string{"README.md"}, probe.calls)
		})
	}
}

func TestRegularFileProbeError(t *testing.T) {
	probe := &stubProbe{err: errors.New("boom")}
	ok, err := RegularFile("README.md").Accepts(context.TODO(), probe)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestCriteriaFunc(t *testing.T) {
	var seen Probe
	crit := CriteriaFunc(func(_ context.Context, p Probe) (bool, error) {
		seen = p
		return true, nil
	})

	probe := &stubProbe{}
	ok, err := crit.Accepts(context.TODO(), probe)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, probe, seen)
}
