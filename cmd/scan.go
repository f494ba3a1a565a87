package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zapier/headscan/pkg"
	"github.com/zapier/headscan/pkg/config"
	"github.com/zapier/headscan/pkg/container"
	"github.com/zapier/headscan/pkg/policy"
	"github.com/zapier/headscan/pkg/scm"
	"github.com/zapier/headscan/pkg/vcs"
	"github.com/zapier/headscan/telemetry"
)

var tracer = otel.Tracer("cmd")

// ScanCmd discovers and prints the buildable heads of one or more repositories.
var ScanCmd = &cobra.Command{
	Use:   "scan repository [repository...]",
	Short: "Discover the buildable heads of one or more repositories.",
	Long: `Scans each repository for branches and open pull requests that carry the
marker file, resolves every surviving head to the revision a build would check
out, and prints one table per repository. Repositories accept owner/name as
well as https and ssh clone urls.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runScan,
}

func init() {
	RootCmd.AddCommand(ScanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	fmt.Println("Starting headscan:", pkg.GitTag, pkg.GitCommit)

	// graceful termination handler: a SIGTERM/SIGINT stops issuing new
	// connector calls, in-flight scans wind down on their own.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigs
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	t, err := telemetry.Init(ctx, "headscan", pkg.GitTag, pkg.GitCommit,
		cfg.EnableOtel, cfg.OtelCollectorHost, cfg.OtelCollectorPort)
	defer t.Shutdown()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize telemetry")
	}
	if cfg.EnableOtel {
		if err := t.StartMetricCollectors(); err != nil {
			log.Error().Err(err).Msg("failed to start metric collectors")
		}
	}

	ctr, err := newContainer(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create container")
	}

	reports, err := scanRepos(ctx, ctr, args)
	for _, report := range reports {
		fmt.Print(report)
	}
	return err
}

func scanRepos(ctx context.Context, ctr container.Container, names []string) ([]string, error) {
	reports := make([]string, len(names))

	g, ctx := errgroup.WithContext(ctx)
	if limit := int(ctr.Config.MaxConcurrentScans); limit > 0 {
		g.SetLimit(limit)
	}
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			report, err := scanRepo(ctx, ctr, name)
			reports[i] = report
			if err != nil {
				return errors.Wrapf(err, "failed to scan %s", name)
			}
			return nil
		})
	}

	return reports, g.Wait()
}

func scanRepo(ctx context.Context, ctr container.Container, name string) (string, error) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "ScanRepo",
		trace.WithAttributes(attribute.String("repo", name)))
	defer span.End()

	logger := log.With().Str("repo", name).Str("scan_id", uuid.NewString()).Logger()
	if spanInfo := telemetry.GetOtelSpanInfoFromContext(ctx); spanInfo.SpanIDValid() {
		logger = logger.With().Str("trace_id", spanInfo.TraceID()).Logger()
	}

	repo, err := vcs.ParseRepo(name)
	if err != nil {
		return "", err
	}

	source := scm.NewSource(ctr.Connector, repo)

	meta, err := source.GetMetadata(ctx)
	if err != nil {
		telemetry.SetError(span, err, "GetMetadata")
		return "", errors.Wrap(err, "failed to fetch repo metadata")
	}

	pol, err := repoPolicy(ctx, ctr, repo, meta.DefaultBranch)
	if err != nil {
		return "", err
	}
	logger.Debug().Str("marker", pol.MarkerPath).Msg("starting discovery")

	discovery := ctr.Config.Discovery()
	collector := scm.NewCollector()
	fetchErr := source.Fetch(ctx, scm.RegularFile(pol.MarkerPath), pol.Filter(collector), discovery)
	collector.Finish()

	if fetchErr != nil {
		// heads that failed to resolve are reported without discarding the
		// rest of the scan, anything else voids it
		var headErr *scm.HeadResolutionError
		if !errors.As(fetchErr, &headErr) {
			telemetry.SetError(span, fetchErr, "Fetch")
			return "", fetchErr
		}
		logger.Warn().Err(fetchErr).Msg("some heads could not be resolved")
	}

	heads := collector.Heads()
	recordScanMetrics(ctx, logger, repo, len(heads), time.Since(start))
	logger.Info().Int("heads", len(heads)).Stringer("state", collector.State()).Msg("scan finished")

	return renderReport(repo, meta, discovery, heads, collector.Result()), nil
}

// repoPolicy loads the repository's own policy file, falling back to the
// configured defaults when it has none.
func repoPolicy(ctx context.Context, ctr container.Container, repo vcs.Repo, defaultBranch string) (*policy.RepoPolicy, error) {
	pol, err := policy.Load(ctx, ctr.Connector, repo, defaultBranch)
	if err != nil {
		if !errors.Is(err, policy.ErrNoRepoPolicy) {
			return nil, errors.Wrap(err, "failed to load repo policy")
		}
		pol = policy.Default(ctr.Config.MarkerPath)
	}
	return pol, nil
}

func recordScanMetrics(ctx context.Context, logger zerolog.Logger, repo vcs.Repo, heads int, elapsed time.Duration) {
	meter := otel.GetMeterProvider().Meter("headscan")
	repoAttr := attribute.String("repo", repo.FullName())

	if err := telemetry.RecordCounterInt(ctx, meter, "headscan_heads_discovered", int64(heads), repoAttr); err != nil {
		logger.Warn().Err(err).Msg("failed to record heads metric")
	}
	if err := telemetry.RecordHistogramFloat(ctx, meter, "headscan_scan_duration_seconds", elapsed.Seconds(), repoAttr); err != nil {
		logger.Warn().Err(err).Msg("failed to record duration metric")
	}
}

func renderReport(repo vcs.Repo, meta vcs.Metadata, cfg scm.Configuration, heads []scm.Head, revs map[scm.Head]scm.Revision) string {
	buff := &bytes.Buffer{}

	fmt.Fprintf(buff, "\n%s (default branch: %s)\n", repo.FullName(), meta.DefaultBranch)
	if meta.Description != "" {
		fmt.Fprintln(buff, meta.Description)
	}
	if meta.URL != "" {
		fmt.Fprintln(buff, meta.URL)
	}

	table := tablewriter.NewWriter(buff)
	table.SetHeader([]string{"Head", "Kind", "Strategy", "Revision", "Trusted"})
	table.SetAutoWrapText(false)

	for _, head := range heads {
		table.Append(reportRow(repo.Owner, head, revs[head], cfg))
	}
	table.Render()

	return buff.String()
}

// reportRow renders one head. The trust column is evaluated here, at render
// time, against the configuration current now.
func reportRow(repoOwner string, head scm.Head, rev scm.Revision, cfg scm.Configuration) []string {
	kind := "branch"
	strategy := ""
	if h, ok := head.(scm.PullRequestHead); ok {
		kind = fmt.Sprintf("pull request (%s)", h.Origin)
		strategy = h.Strategy.String()
	}

	revision := ""
	if s, ok := rev.(fmt.Stringer); ok {
		revision = s.String()
	}

	return []string{
		head.Name(),
		kind,
		strategy,
		revision,
		scm.EvaluateTrust(repoOwner, rev, cfg).String(),
	}
}
