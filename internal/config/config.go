package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"

	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token          string
		Mode           string
		WebhookURL     string        `mapstructure:"webhook_url"`
		WebhookPath    string        `mapstructure:"webhook_path"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
		PollTimeout    int           `mapstructure:"poll_timeout"`
		AdminChatID    int64         `mapstructure:"admin_chat_id"`
		Debug          bool
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Storage struct {
		Driver string
	} `mapstructure:"storage"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Bolt struct {
		Path string
	} `mapstructure:"bolt"`

	Notify struct {
		Buffer int
	} `mapstructure:"notify"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "Europe/Moscow")
	v.SetDefault("telegram.mode", ModePolling)
	v.SetDefault("telegram.webhook_path", "/telegram/webhook")
	v.SetDefault("telegram.request_timeout", 10*time.Second)
	v.SetDefault("telegram.poll_timeout", 30)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("bolt.path", "data/finance.db")
	v.SetDefault("notify.buffer", 100)
	v.SetDefault("metrics.enabled", true)
}

// Load читает .env (если есть), затем yaml по path и переопределения APP_* из окружения:
// telegram.token -> APP_TELEGRAM_TOKEN. Пустой path: только окружение и значения по умолчанию.
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv видит только известные ключи
	for _, key := range []string{"telegram.token", "telegram.webhook_url", "telegram.admin_chat_id", "postgres.dsn"} {
		_ = v.BindEnv(key)
	}

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	switch c.Telegram.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Telegram.WebhookURL == "" {
			errs = append(errs, errors.New("telegram.webhook_url is required in webhook mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("telegram.mode: unknown %q", c.Telegram.Mode))
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn is required"))
		}
	case DriverBolt:
		if c.Bolt.Path == "" {
			errs = append(errs, errors.New("bolt.path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown %q", c.Storage.Driver))
	}
	if c.Notify.Buffer <= 0 {
		errs = append(errs, errors.New("notify.buffer must be positive"))
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("app.timezone: %w", err))
	}
	return errors.Join(errs...)
}

// Location часовой пояс для дат в сообщениях.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WebhookEndpoint полный адрес вебхука, который регистрируется в Telegram.
func (c Config) WebhookEndpoint() string {
	return strings.TrimRight(c.Telegram.WebhookURL, "/") + c.Telegram.WebhookPath
}
