package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type DB struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"password"`
	Name string `mapstructure:"database"`
}

type MQ struct {
	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	User  string `mapstructure:"user"`
	Pass  string `mapstructure:"password"`
	VHost string `mapstructure:"vhost"`
	TLS   bool   `mapstructure:"tls"`
}

type Redis struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Pass string `mapstructure:"password"`
	DB   int    `mapstructure:"db"`
}

type Auth struct {
	JWTSecret     string        `mapstructure:"jwt_secret"` // empty disables JWT bearer tokens
	VerifyTimeout time.Duration `mapstructure:"verify_timeout"`
}

type Order struct {
	QueuedETA      int           `mapstructure:"queued_eta"`
	StockURL       string        `mapstructure:"stock_url"`
	ReserveTimeout time.Duration `mapstructure:"reserve_timeout"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type Stock struct {
	ReservationTTL time.Duration `mapstructure:"reservation_ttl"`
	MenuFile       string        `mapstructure:"menu_file"`
}

type Kitchen struct {
	InProgressETA int           `mapstructure:"in_progress_eta"`
	PrepMin       time.Duration `mapstructure:"prep_min"`
	PrepMax       time.Duration `mapstructure:"prep_max"`
}

type Hub struct {
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Retry is the consumer requeue policy. There is deliberately no attempt limit.
type Retry struct {
	Interval    time.Duration `mapstructure:"interval"`
	Backoff     float64       `mapstructure:"backoff"`
	MaxInterval time.Duration `mapstructure:"max_interval"`
	IdleWait    time.Duration `mapstructure:"idle_wait"`
}

type App struct {
	LogLevel   string        `mapstructure:"log_level"`
	ChaosDelay time.Duration `mapstructure:"chaos_delay"`
	Database   DB            `mapstructure:"database"`
	Rabbit     MQ            `mapstructure:"rabbitmq"`
	Redis      Redis         `mapstructure:"redis"`
	Auth       Auth          `mapstructure:"auth"`
	Order      Order         `mapstructure:"order"`
	Stock      Stock         `mapstructure:"stock"`
	Kitchen    Kitchen       `mapstructure:"kitchen"`
	Hub        Hub           `mapstructure:"hub"`
	Retry      Retry         `mapstructure:"retry"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("chaos_delay", 2*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "cafeteria")
	v.SetDefault("database.password", "cafeteria")
	v.SetDefault("database.database", "cafeteria")

	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.user", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("rabbitmq.vhost", "/")
	v.SetDefault("rabbitmq.tls", false)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.verify_timeout", 5*time.Second)

	v.SetDefault("order.queued_eta", 12)
	v.SetDefault("order.stock_url", "http://localhost:8002")
	v.SetDefault("order.reserve_timeout", 1500*time.Millisecond)
	v.SetDefault("order.publish_timeout", 5*time.Second)

	v.SetDefault("stock.reservation_ttl", time.Hour)
	v.SetDefault("stock.menu_file", "")

	v.SetDefault("kitchen.in_progress_eta", 7)
	v.SetDefault("kitchen.prep_min", 3*time.Second)
	v.SetDefault("kitchen.prep_max", 7*time.Second)

	v.SetDefault("hub.write_timeout", 5*time.Second)

	v.SetDefault("retry.interval", time.Second)
	v.SetDefault("retry.backoff", 1.0)
	v.SetDefault("retry.max_interval", 30*time.Second)
	v.SetDefault("retry.idle_wait", time.Second)
}

// Load reads path (YAML) on top of the defaults; environment variables such as
// DATABASE_HOST or KITCHEN_PREP_MAX override both. An empty path means defaults + env only.
func Load(path string) (App, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return App{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var a App
	if err := v.Unmarshal(&a); err != nil {
		return App{}, fmt.Errorf("decode config: %w", err)
	}
	if err := a.Validate(); err != nil {
		return App{}, err
	}
	return a, nil
}

func (a App) Validate() error {
	if a.Database.Host == "" || a.Rabbit.Host == "" {
		return errors.New("invalid config: missing database/rabbitmq host")
	}
	if a.Kitchen.PrepMin < 0 || a.Kitchen.PrepMax < a.Kitchen.PrepMin {
		return fmt.Errorf("invalid config: kitchen prep range %s..%s", a.Kitchen.PrepMin, a.Kitchen.PrepMax)
	}
	if a.Retry.Interval <= 0 {
		return errors.New("invalid config: retry.interval must be positive")
	}
	if a.Order.ReserveTimeout <= 0 || a.Auth.VerifyTimeout <= 0 {
		return errors.New("invalid config: timeouts must be positive")
	}
	return nil
}

// FindConfig returns the first config file present in the working directory, or fs.ErrNotExist.
func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "config.yml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
