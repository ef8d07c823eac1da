// Package config provides application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Settings holds all application configuration. It is loaded once at process
// start and passed explicitly to the components that need it; nothing reads
// ambient state after that.
type Settings struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Pools to audit, in order.
	Pools []string `envconfig:"POOLS" default:"rpool"`

	// Endurance model constants
	RatedTBW      float64 `envconfig:"RATED_TBW" default:"360"`     // rated drive endurance in terabytes written
	AgeLimitYears int     `envconfig:"AGE_LIMIT_YEARS" default:"5"` // replacement horizon for lightly used drives

	// Gotify channel
	GotifyURL     string `envconfig:"GOTIFY_URL" default:""`
	GotifyToken   string `envconfig:"GOTIFY_TOKEN" default:""`
	GotifyEnabled bool   `envconfig:"GOTIFY_ENABLED" default:"true"`

	// Pushover channel
	PushoverToken   string `envconfig:"PUSHOVER_TOKEN" default:""`
	PushoverUserKey string `envconfig:"PUSHOVER_USER_KEY" default:""`
	PushoverEnabled bool   `envconfig:"PUSHOVER_ENABLED" default:"false"`

	// Filesystem namespaces for disk resolution. Overridable for tests.
	ByIDDir string `envconfig:"BY_ID_DIR" default:"/dev/disk/by-id"`
	DevDir  string `envconfig:"DEV_DIR" default:"/dev"`

	// Directory holding privileged diagnostic binaries (zpool, smartctl).
	// Always prepended to PATH for subprocesses when missing.
	SbinDir string `envconfig:"SBIN_DIR" default:"/usr/sbin"`
}

// Load creates a new Settings instance from environment variables.
func Load() (*Settings, error) {
	s := &Settings{}
	if err := envconfig.Process("ZPOOLMON", s); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return s, nil
}
