package config

import "time"

type Backend struct {
	URL            string        `env:"BACKEND_URL"               envDefault:"http://localhost:8000" validate:"required,http_url"`
	RequestTimeout time.Duration `env:"BACKEND_REQUEST_TIMEOUT"   envDefault:"15s"                   validate:"gt=0"`
	LogFieldMaxLen int           `env:"BACKEND_LOG_FIELD_MAX_LEN" envDefault:"4096"                  validate:"gte=0"`
	// SlowRequest promotes slower backend calls to warn in the logs.
	SlowRequest time.Duration `env:"BACKEND_SLOW_REQUEST" envDefault:"3s" validate:"gte=0"`
}
