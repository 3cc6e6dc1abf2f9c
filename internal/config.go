package internal

import (
	"strings"
	"time"
)

type Config struct {
	Host        string `env:"HOST,required=true"`
	Port        int    `env:"PORT,required=true"`
	Environment string `env:"ENVIRONMENT,required=true"`
	LogLevel    string `env:"LOG_LEVEL,required=true"`

	// Comma-separated origin prefixes, checked in production only.
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	SessionCookieName string        `env:"SESSION_COOKIE_NAME,required=true"`
	SessionTTL        time.Duration `env:"SESSION_TTL,required=true"`

	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,required=true"`
	MonitorInterval   time.Duration `env:"MONITOR_INTERVAL,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	DebugPort      int    `env:"DEBUG_PORT,required=true"`

	// Optional bootstrap account, created only when the store has no users.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func (c Config) Development() bool {
	return c.Environment == "development"
}

// Origins splits the allow-list, dropping empty entries so a trailing comma
// cannot silently allow everything.
func (c Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
