package config

import (
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Astemirdum/library-checkout/pkg/kafka"
	"github.com/Astemirdum/library-checkout/pkg/logger"
	"github.com/Astemirdum/library-checkout/pkg/postgres"
	"github.com/Astemirdum/library-checkout/pkg/retry"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"CHECKOUT_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"CHECKOUT_HTTP_PORT" default:"8060"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration
}

// Retry bounds how often the API repeats a checkout or return after a
// serialization failure.
type Retry struct {
	MaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	BaseDelay   time.Duration `envconfig:"RETRY_BASE_DELAY" default:"20ms"`
}

func (r Retry) Validate() error {
	return retry.Validate(r.Options()...)
}

func (r Retry) Options() []retry.Option {
	return []retry.Option{
		retry.WithMaxAttempts(r.MaxAttempts),
		retry.WithBaseDelay(r.BaseDelay),
	}
}

type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Database postgres.DB  `yaml:"db"`
	Kafka    kafka.Config `yaml:"kafka"`
	Log      logger.Log   `yaml:"log"`
	Retry    Retry        `yaml:"retry"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment once. Options only set fields the
// environment leaves untouched.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		if err = config.Retry.Validate(); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
	})

	return cfg
}
