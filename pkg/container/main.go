package container

import (
	"github.com/zapier/headscan/pkg/config"
	"github.com/zapier/headscan/pkg/vcs"
)

type Container struct {
	Config config.Config

	Connector vcs.Connector
}
