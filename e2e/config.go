package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_READ_TIMEOUT bounds how long a scenario waits for one frame
	ReadTimeout time.Duration `envconfig:"E2E_READ_TIMEOUT" default:"2s"`
	// E2E_QUIET_WINDOW is how long a connection must stay silent before
	// we accept that no frame is coming
	QuietWindow time.Duration `envconfig:"E2E_QUIET_WINDOW" default:"300ms"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
