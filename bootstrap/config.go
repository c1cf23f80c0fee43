package bootstrap

import (
	"github.com/kbukum/harvester/config"
)

// Config is the constraint for command configuration types. Any struct that
// embeds config.ServiceConfig satisfies it through promoted methods.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
