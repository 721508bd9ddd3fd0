package config

type Server struct {
	ProbeAddress   string `env:"PROBE_ADDRESS"   envDefault:":8081"`
	MetricsAddress string `env:"METRICS_ADDRESS" envDefault:":9090"`
}
