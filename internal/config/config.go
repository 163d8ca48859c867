package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type WorkerConfig struct {
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Evolution API gateway
	GatewayBaseURL  string        `envconfig:"GATEWAY_BASE_URL" required:"true"`
	GatewayAPIKey   string        `envconfig:"GATEWAY_API_KEY" required:"true"`
	GatewayInstance string        `envconfig:"GATEWAY_INSTANCE" required:"true"`
	GatewayTimeout  time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"8s"`

	// Phone normalization: prefixed when the cleaned number doesn't carry it.
	CountryCode string `envconfig:"COUNTRY_CODE" default:"55"`

	// Poll loop
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"60s"`

	// Dispatch: consecutive failed gateway calls before a schedule is marked
	// failed. 0 disables the cap (retry forever).
	DispatchMaxAttempts int `envconfig:"DISPATCH_MAX_ATTEMPTS" default:"10"`

	// Renewal watcher
	RenewalHorizonDays int `envconfig:"RENEWAL_HORIZON_DAYS" default:"7"`

	// Gateway send pacing (per process)
	GatewayRPS   float64 `envconfig:"GATEWAY_RPS" default:"2"`
	GatewayBurst int     `envconfig:"GATEWAY_BURST" default:"5"`
}

func LoadWorker() (WorkerConfig, error) {
	var cfg WorkerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return WorkerConfig{}, err
	}
	return cfg, nil
}
