package config

import "time"

type Worker struct {
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"1m" validate:"gt=0"`
	// DuplicateWindow suppresses repeated approve/reject of the same deal.
	DuplicateWindow time.Duration `env:"DUPLICATE_ACTION_WINDOW" envDefault:"3s" validate:"gte=0"`
}
