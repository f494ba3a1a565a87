package cmd

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "headscan",
	Short: "Buildable head discovery for CI",
	Long:  `Discovers the branches and pull requests of hosted repositories that qualify for automated builds, resolves each to a concrete revision, and classifies pull request revisions as trusted or untrusted`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogOutput()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(RootCmd.Execute())
}

const envPrefix = "headscan"

var envKeyReplacer = strings.NewReplacer("-", "_")

func init() {
	// allows environment variables to use _ instead of -
	viper.SetEnvKeyReplacer(envKeyReplacer) // vcs-type becomes VCS_TYPE
	viper.SetEnvPrefix(envPrefix)           // vcs_type becomes HEADSCAN_VCS_TYPE
	viper.AutomaticEnv()                    // read in environment variables that match

	flags := RootCmd.PersistentFlags()
	stringFlag(flags, "log-level", "Set the log output level.",
		newStringOpts().
			withChoices(
				zerolog.LevelErrorValue,
				zerolog.LevelWarnValue,
				zerolog.LevelInfoValue,
				zerolog.LevelDebugValue,
				zerolog.LevelTraceValue,
			).
			withDefault("info").
			withShortHand("l"),
	)
	stringFlag(flags, "vcs-base-url", "VCS base url, useful if self hosting gitlab, enterprise github, etc.")
	stringFlag(flags, "vcs-upload-url", "VCS upload url, only used by enterprise github.")
	stringFlag(flags, "vcs-type", "VCS type. One of github, gitlab or gitea. Defaults to github.",
		newStringOpts().
			withChoices("github", "gitlab", "gitea").
			withDefault("github"))
	stringFlag(flags, "vcs-token", "VCS API token.")
	int64Flag(flags, "github-app-id", "Github App ID, used with the installation id and private key instead of vcs-token.")
	int64Flag(flags, "github-installation-id", "Github App installation ID.")
	stringFlag(flags, "github-private-key-path", "Path to the Github App private key.")

	boolFlag(flags, "build-origin-pr-head", "Build the unmerged tip of pull requests from the repository's own namespace.")
	boolFlag(flags, "build-origin-pr-merge", "Build the synthetic merge of pull requests from the repository's own namespace.",
		newBoolOpts().
			withDefault(true))
	boolFlag(flags, "build-fork-pr-head", "Build the unmerged tip of pull requests from forks.",
		newBoolOpts().
			withDefault(true))
	boolFlag(flags, "build-fork-pr-merge", "Build the synthetic merge of pull requests from forks.")
	stringFlag(flags, "marker-path", "File that must exist as a regular file at a head's tip for the head to be buildable.",
		newStringOpts().
			withDefault("README.md"))
	int64Flag(flags, "max-concurrent-scans", "Number of repositories to scan concurrently.",
		newInt64Opts().
			withDefault(8))

	stringFlag(flags, "otel-collector-port", "The OpenTelemetry collector port.")
	stringFlag(flags, "otel-collector-host", "The OpenTelemetry collector host.")
	boolFlag(flags, "otel-enabled", "Enable OpenTelemetry.")

	panicIfError(viper.BindPFlags(flags))
}

func panicIfError(err error) {
	if err != nil {
		panic(err)
	}
}

func setupLogOutput() {
	output := zerolog.ConsoleWriter{Out: os.Stdout}
	log.Logger = log.Output(output)

	// Default level is info, unless debug flag is present
	levelFlag := viper.GetString("log-level")
	level, _ := zerolog.ParseLevel(levelFlag)

	zerolog.SetGlobalLevel(level)
	log.Debug().Msg("Debug level logging enabled.")
	log.Trace().Msg("Trace level logging enabled.")
	log.Info().Msg("Initialized logger.")
}
