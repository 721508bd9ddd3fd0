package config

type SessionStorageKind string

const (
	SessionStorageFile  SessionStorageKind = "file"
	SessionStorageRedis SessionStorageKind = "redis"
)

type Session struct {
	Storage  SessionStorageKind `env:"SESSION_STORAGE" envDefault:"file"                    validate:"oneof=file redis"`
	FilePath string             `env:"SESSION_FILE"    envDefault:".smartdeals/session.json" validate:"required_if=Storage file"`
	Redis    Redis
}

type Redis struct {
	Address        string `env:"REDIS_ADDRESS"  envDefault:"localhost:6379"`
	Username       string `env:"REDIS_USERNAME"`
	Password       string `env:"REDIS_PASSWORD" json:"-"`
	DatabaseNumber int    `env:"REDIS_DB"       envDefault:"0"`
	KeyPrefix      string `env:"REDIS_KEY_PREFIX" envDefault:"smartdeals:console:"`
}
