// Package policy reads the optional per-repository scan policy that lets one
// repository narrow what the scanner builds without touching the scanner's
// own configuration.
package policy

import (
	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/zapier/headscan/pkg/scm"
)

// RepoPolicy narrows one repository's scan. The zero value plus defaults
// scans every branch and pull request using the README.md marker.
type RepoPolicy struct {
	// MarkerPath is the file that must exist as a regular file at a head's
	// tip for the head to be buildable.
	MarkerPath string `validate:"empty=false" default:"README.md" yaml:"markerPath"`
	// Branches restricts branch heads to the named branches. Empty scans all.
	Branches []string `yaml:"branches"`
	// SkipPullRequests drops every pull request head.
	SkipPullRequests bool `yaml:"skipPullRequests"`
}

func (p *RepoPolicy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	err := defaults.Set(p)
	if err != nil {
		return errors.Wrap(err, "failed to set defaults for repo policy")
	}

	type plain RepoPolicy
	if err := unmarshal((*plain)(p)); err != nil {
		return err
	}

	return nil
}

// Default returns the policy for repositories that carry no policy file.
// markerPath overrides the built-in marker when not empty.
func Default(markerPath string) *RepoPolicy {
	pol := &RepoPolicy{}
	if err := defaults.Set(pol); err != nil {
		log.Warn().Err(err).Msg("could not set repo policy defaults")
	}
	if markerPath != "" {
		pol.MarkerPath = markerPath
	}
	return pol
}

// Allows reports whether the policy lets the head through.
func (p *RepoPolicy) Allows(head scm.Head) bool {
	switch h := head.(type) {
	case scm.BranchHead:
		return len(p.Branches) == 0 || slices.Contains(p.Branches, h.Branch)
	case scm.PullRequestHead:
		return !p.SkipPullRequests
	default:
		return true
	}
}

// Filter wraps obs so that heads the policy rejects never reach it.
func (p *RepoPolicy) Filter(obs scm.Observer) scm.Observer {
	return filteredObserver{Observer: obs, policy: p}
}

type filteredObserver struct {
	scm.Observer
	policy *RepoPolicy
}

func (o filteredObserver) Observe(head scm.Head, rev scm.Revision) {
	if !o.policy.Allows(head) {
		log.Debug().Str("head", head.Name()).Msg("head rejected by repo policy")
		return
	}
	o.Observer.Observe(head, rev)
}
