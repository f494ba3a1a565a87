package config

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/zapier/headscan/pkg/scm"
)

// Config carries the scanner settings. Viper keys match the flag names, so
// every field can be set by flag or by HEADSCAN_* environment variable.
type Config struct {
	// vcs
	VcsBaseUrl   string `mapstructure:"vcs-base-url"`
	VcsUploadUrl string `mapstructure:"vcs-upload-url"`
	VcsToken     string `mapstructure:"vcs-token"`
	VcsType      string `mapstructure:"vcs-type"`

	// github app credentials, used instead of vcs-token when all three are set
	GithubAppID          int64  `mapstructure:"github-app-id"`
	GithubInstallationID int64  `mapstructure:"github-installation-id"`
	GithubPrivateKeyPath string `mapstructure:"github-private-key-path"`

	// discovery
	BuildOriginPRHead  bool   `mapstructure:"build-origin-pr-head"`
	BuildOriginPRMerge bool   `mapstructure:"build-origin-pr-merge"`
	BuildForkPRHead    bool   `mapstructure:"build-fork-pr-head"`
	BuildForkPRMerge   bool   `mapstructure:"build-fork-pr-merge"`
	MarkerPath         string `mapstructure:"marker-path"`

	MaxConcurrentScans int64 `mapstructure:"max-concurrent-scans"`

	LogLevel zerolog.Level `mapstructure:"log-level"`

	// otel
	EnableOtel        bool   `mapstructure:"otel-enabled"`
	OtelCollectorHost string `mapstructure:"otel-collector-host"`
	OtelCollectorPort string `mapstructure:"otel-collector-port"`
}

func New() (Config, error) {
	return NewWithViper(viper.GetViper())
}

func NewWithViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return cfg, errors.Wrap(err, "failed to read configuration")
	}

	log.Debug().
		Str("vcs-type", cfg.VcsType).
		Str("vcs-base-url", cfg.VcsBaseUrl).
		Str("marker-path", cfg.MarkerPath).
		Msg("configuration loaded")

	return cfg, nil
}

// Discovery translates the build flags into the head discovery policy.
func (c Config) Discovery() scm.Configuration {
	return scm.Configuration{
		BuildOriginPRHead:  c.BuildOriginPRHead,
		BuildOriginPRMerge: c.BuildOriginPRMerge,
		BuildForkPRHead:    c.BuildForkPRHead,
		BuildForkPRMerge:   c.BuildForkPRMerge,
	}
}
