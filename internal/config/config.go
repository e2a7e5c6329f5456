package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config is the whole process configuration, read from the environment.
type Config struct {
	Port        int    `env:"PORT" envDefault:"5000"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"lessonshop"`
	Env         string `env:"ENV" envDefault:"dev"`

	Store     string `env:"STORE" envDefault:"mongo"`
	MongoURI  string `env:"MONGO_URI"`
	DBUser    string `env:"DB_USER"`
	DBPass    string `env:"DB_PASS"`
	DBCluster string `env:"DB_CLUSTER"`
	DBName    string `env:"DB_NAME" envDefault:"lessonShopDB"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"zuzu"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"1234"`
	AdminKey      string `env:"ADMIN_KEY" envDefault:"secret123"`

	ImagesDir       string `env:"IMAGES_DIR" envDefault:"images"`
	OrderCompensate bool   `env:"ORDER_COMPENSATE" envDefault:"false"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"30s"`

	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string `env:"LOG_FILE"`
	OTELEndpoint string `env:"OTEL_ENDPOINT"`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: PORT %d out of range", c.Port))
	}
	switch c.Store {
	case StoreMemory:
	case StoreMongo:
		if c.MongoURI == "" && (c.DBUser == "" || c.DBPass == "" || c.DBCluster == "") {
			errs = append(errs, errors.New("config: mongo store needs MONGO_URI or DB_USER, DB_PASS and DB_CLUSTER"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown STORE %q", c.Store))
	}
	if c.AdminKey == "" {
		errs = append(errs, errors.New("config: ADMIN_KEY must not be empty"))
	}
	if c.CatalogCacheTTL < 0 {
		errs = append(errs, errors.New("config: CATALOG_CACHE_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

// MongoConnectionURI prefers MONGO_URI and otherwise builds the Atlas form.
func (c Config) MongoConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return AtlasURI(c.DBUser, c.DBPass, c.DBCluster, c.DBName)
}

// AtlasURI builds the SRV connection string for a hosted cluster. User and
// password are escaped as URI userinfo.
func AtlasURI(user, pass, cluster, db string) string {
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, pass),
		Host:     cluster,
		Path:     "/" + db,
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
