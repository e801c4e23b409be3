package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/eligibility"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/ftl"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string             `yaml:"env" env:"ENV" env-default:"local"`
	Log         LogConfig          `yaml:"log"`
	HTTP        HTTPConfig         `yaml:"http"`
	GRPC        GRPCConfig         `yaml:"grpc"`
	DB          DBConfig           `yaml:"db"`
	Redis       RedisConfig        `yaml:"redis"`
	Telemetry   TelemetryConfig    `yaml:"telemetry"`
	Cache       CacheConfig        `yaml:"cache"`
	Scan        ScanConfig         `yaml:"scan"`
	FTL         ftl.Limits         `yaml:"ftl"`
	Eligibility eligibility.Policy `yaml:"eligibility"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"5s"`
}

func (c HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type GRPCConfig struct {
	Host           string        `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port           int           `yaml:"port" env:"GRPC_PORT" env-default:"44046"`
	HealthInterval time.Duration `yaml:"health_interval" env:"GRPC_HEALTH_INTERVAL" env-default:"10s"`
}

type DBConfig struct {
	DSN      string        `yaml:"dsn" env:"DB_DSN"`
	Host     string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string        `yaml:"user" env:"DB_USER"`
	Password string        `yaml:"password" env:"DB_PASSWORD"`
	Name     string        `yaml:"name" env:"DB_NAME"`
	SSLMode  string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"require"`
	Timeout  time.Duration `yaml:"timeout" env:"DB_TIMEOUT" env-default:"3s"`
}

func (c DBConfig) DatabaseURL() string {
	if c.DSN != "" {
		return c.DSN
	}

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	q := u.Query()
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()

	return u.String()
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type TelemetryConfig struct {
	Enabled      bool          `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	OTLPEndpoint string        `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	Insecure     bool          `yaml:"insecure" env:"OTEL_INSECURE" env-default:"true"`
	SampleRate   float64       `yaml:"sample_rate" env:"OTEL_SAMPLE_RATE" env-default:"1"`
	BatchTimeout time.Duration `yaml:"batch_timeout" env:"OTEL_BATCH_TIMEOUT" env-default:"5s"`
}

type CacheConfig struct {
	VerdictTTL time.Duration `yaml:"verdict_ttl" env:"VERDICT_CACHE_TTL" env-default:"1m"`
}

type ScanConfig struct {
	Enabled                bool          `yaml:"enabled" env:"SCAN_ENABLED" env-default:"true"`
	Interval               time.Duration `yaml:"interval" env:"SCAN_INTERVAL" env-default:"15m"`
	Horizon                time.Duration `yaml:"horizon" env:"SCAN_HORIZON" env-default:"48h"`
	LockTTL                time.Duration `yaml:"lock_ttl" env:"SCAN_LOCK_TTL" env-default:"10m"`
	UtilizationHoursPerDay float64       `yaml:"utilization_hours_per_day" env:"SCAN_UTILIZATION_HOURS_PER_DAY" env-default:"6"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exists: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read the config: " + err.Error())
	}

	if err := cfg.FTL.Validate(); err != nil {
		panic("invalid ftl limits: " + err.Error())
	}
	if err := cfg.Eligibility.Validate(); err != nil {
		panic("invalid eligibility policy: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}
