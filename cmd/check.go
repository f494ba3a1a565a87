package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zapier/headscan/pkg/config"
	"github.com/zapier/headscan/pkg/scm"
	"github.com/zapier/headscan/pkg/vcs"
)

// CheckCmd answers "does this repository have anything to build" without
// enumerating every head.
var CheckCmd = &cobra.Command{
	Use:   "check repository",
	Short: "Check whether a repository has at least one buildable head.",
	Long: `Scans until the first branch or open pull request that carries the marker
file, then stops. Prints the head and exits 0 when one exists; exits 3 when
the repository has nothing to build.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	RootCmd.AddCommand(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	ctr, err := newContainer(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create container")
	}

	repo, err := vcs.ParseRepo(args[0])
	if err != nil {
		return err
	}

	source := scm.NewSource(ctr.Connector, repo)
	meta, err := source.GetMetadata(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to fetch repo metadata")
	}

	pol, err := repoPolicy(ctx, ctr, repo, meta.DefaultBranch)
	if err != nil {
		return err
	}

	collector := scm.NewLimitCollector(1)
	fetchErr := source.Fetch(ctx, scm.RegularFile(pol.MarkerPath), pol.Filter(collector), cfg.Discovery())
	collector.Finish()

	if fetchErr != nil {
		var headErr *scm.HeadResolutionError
		if !errors.As(fetchErr, &headErr) {
			return fetchErr
		}
		log.Warn().Err(fetchErr).Msg("some heads could not be resolved")
	}

	heads := collector.Heads()
	if len(heads) == 0 {
		log.Info().Str("repo", repo.FullName()).Msg("nothing to build")
		os.Exit(3)
	}

	fmt.Println(heads[0].Name())
	return nil
}
