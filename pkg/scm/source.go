package scm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zapier/headscan/pkg/vcs"
	"github.com/zapier/headscan/telemetry"
)

var tracer = otel.Tracer("pkg/scm")

// HeadResolutionError reports a single head that could not be resolved while
// the rest of the fetch cycle carried on.
type HeadResolutionError struct {
	HeadName string
	Err      error
}

func (e *HeadResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %v", e.HeadName, e.Err)
}

func (e *HeadResolutionError) Unwrap() error { return e.Err }

// Source discovers the buildable heads of one remote repository through a
// connector. Discovery is a single sequential scan per Fetch call; every
// cycle produces fresh heads and revisions, nothing is reused across cycles.
type Source struct {
	repo      vcs.Repo
	connector vcs.Connector
}

func NewSource(connector vcs.Connector, repo vcs.Repo) *Source {
	return &Source{repo: repo, connector: connector}
}

func (s *Source) Repo() vcs.Repo { return s.repo }

// EvaluateTrust applies the package-level trust evaluation with this source's
// repository owner. The revision is only inspected, never rewrapped.
func (s *Source) EvaluateTrust(rev Revision, cfg Configuration) Verdict {
	return EvaluateTrust(s.repo.Owner, rev, cfg)
}

// GetMetadata returns the description, web URL and default branch of the
// repository.
func (s *Source) GetMetadata(ctx context.Context) (vcs.Metadata, error) {
	return s.connector.GetMetadata(ctx, s.repo)
}

// Fetch runs one discovery cycle: branches first, then open pull requests,
// each in listing order. Every accepted head is streamed to obs the moment it
// is resolved, so an early-cancelling observer stops the scan before later
// pages are fetched; obs.ShouldContinue is checked before every connector
// call.
//
// A MERGE-strategy head whose merge hash cannot be fetched is skipped and
// reported in the returned error (as joined HeadResolutionErrors) once the
// cycle finishes. Any other connector or criteria failure aborts the cycle
// immediately.
func (s *Source) Fetch(ctx context.Context, criteria Criteria, obs Observer, cfg Configuration) error {
	ctx, span := tracer.Start(ctx, "Fetch",
		trace.WithAttributes(
			attribute.String("repo", s.repo.FullName()),
			attribute.String("connector", s.connector.GetName()),
		))
	defer span.End()

	if err := s.fetchBranches(ctx, criteria, obs); err != nil {
		telemetry.SetError(span, err, "fetch branches")
		return err
	}

	if err := s.fetchPullRequests(ctx, criteria, obs, cfg); err != nil {
		telemetry.SetError(span, err, "fetch pull requests")
		return err
	}

	return nil
}

func (s *Source) fetchBranches(ctx context.Context, criteria Criteria, obs Observer) error {
	if !obs.ShouldContinue() {
		return nil
	}

	var walkErr error
	err := s.connector.ListBranches(ctx, s.repo, func(b vcs.Branch) bool {
		if !obs.ShouldContinue() {
			return false
		}

		ok, err := criteria.Accepts(ctx, connectorProbe{s.connector, s.repo, b.Sha})
		if err != nil {
			walkErr = fmt.Errorf("probing branch %q: %w", b.Name, err)
			return false
		}
		if !ok {
			log.Debug().Str("branch", b.Name).Msg("branch does not meet criteria")
			return obs.ShouldContinue()
		}

		head := BranchHead{Branch: b.Name}
		obs.Observe(head, BranchRevision{Branch: head, Hash: b.Sha})
		log.Debug().Str("head", head.Name()).Str("revision", b.Sha).Msg("observed branch head")
		return obs.ShouldContinue()
	})
	if walkErr != nil {
		return walkErr
	}
	return err
}

func (s *Source) fetchPullRequests(ctx context.Context, criteria Criteria, obs Observer, cfg Configuration) error {
	if !obs.ShouldContinue() {
		return nil
	}

	var (
		walkErr  error
		headErrs []error
	)
	err := s.connector.ListPullRequests(ctx, s.repo, func(pr vcs.PullRequest) bool {
		origin := ClassifyOrigin(s.repo.Owner, pr.SourceOwner)
		strategies := cfg.Strategies(origin)
		if len(strategies) == 0 {
			log.Debug().Int("number", pr.Number).Stringer("origin", origin).Msg("no strategies enabled for pull request")
			return obs.ShouldContinue()
		}

		for _, strategy := range strategies {
			if !obs.ShouldContinue() {
				return false
			}

			head := NewPullRequestHead(pr, origin, strategy, len(strategies) > 1)

			ok, err := criteria.Accepts(ctx, connectorProbe{s.connector, s.repo, pr.Sha})
			if err != nil {
				walkErr = fmt.Errorf("probing pull request #%d: %w", pr.Number, err)
				return false
			}
			if !ok {
				log.Debug().Str("head", head.Name()).Msg("pull request does not meet criteria")
				continue
			}

			rev := PullRequestRevision{PullRequest: head, BaseHash: pr.Sha}
			if strategy == CheckoutMerge {
				if !obs.ShouldContinue() {
					return false
				}
				mergeSha, err := s.connector.GetMergeHash(ctx, s.repo, pr.Number)
				if err != nil {
					// Falling back to a HEAD checkout here would silently
					// change the head's trust classification, so the head is
					// dropped and the failure reported after the cycle.
					log.Warn().Err(err).Str("head", head.Name()).Msg("skipping pull request head without merge hash")
					headErrs = append(headErrs, &HeadResolutionError{HeadName: head.Name(), Err: err})
					continue
				}
				rev.MergeHash = mergeSha
			}

			obs.Observe(head, rev)
			log.Debug().
				Str("head", head.Name()).
				Str("revision", rev.String()).
				Stringer("trust", EvaluateTrust(s.repo.Owner, rev, cfg)).
				Msg("observed pull request head")
		}

		return obs.ShouldContinue()
	})
	if walkErr != nil {
		return walkErr
	}
	if err != nil {
		return err
	}
	return errors.Join(headErrs...)
}
