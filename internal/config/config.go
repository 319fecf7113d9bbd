package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"

	"github.com/hamed0406/statushistory/internal/domain"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const DefaultConfigFile = "config.json"

var ErrConfigNotFound = errors.New("config file not found")

type Config struct {
	ConfigFile string                 // path of the services document
	Services   []domain.ServiceConfig // probed in declared order
	HistoryDir string                 // one <slug>.yml per service
	LogDir     string
	LogLevel   string

	Concurrency int // services probed at once; 1 keeps the run sequential

	SlackWebhookURLs []string // SLACK_WEBHOOK_URL, comma separated
	AlertOnRecovery bool

	Addr           string // API bind address, e.g. "127.0.0.1:8080"
	PublicAPIKeys  []string
	AdminAPIKeys   []string
	AllowedOrigins []string
	PublicRPM      int
	PublicBurst    int
	AdminRPM       int
	AdminBurst     int
}

// Load reads the services document at path (or CONFIG_FILE, or config.json)
// and overlays environment variables. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("config_file", DefaultConfigFile)
	v.SetDefault("history_dir", "history")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", LogLevelInfo)
	v.SetDefault("concurrency", 1)
	v.SetDefault("slack_webhook_url", "")
	v.SetDefault("alert_on_recovery", true)
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("public_api_keys", "")
	v.SetDefault("admin_api_keys", "")
	v.SetDefault("allowed_origins", "")
	v.SetDefault("public_rpm", 120)
	v.SetDefault("public_burst", 60)
	v.SetDefault("admin_rpm", 30)
	v.SetDefault("admin_burst", 10)
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config_file")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{
		ConfigFile:      path,
		HistoryDir:      v.GetString("history_dir"),
		LogDir:          v.GetString("log_dir"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		Concurrency:     v.GetInt("concurrency"),
		SlackWebhookURLs: splitList(v.GetString("slack_webhook_url")),
		AlertOnRecovery: v.GetBool("alert_on_recovery"),
		Addr:            v.GetString("addr"),
		PublicAPIKeys:   splitList(v.GetString("public_api_keys")),
		AdminAPIKeys:    splitList(v.GetString("admin_api_keys")),
		AllowedOrigins:  splitList(v.GetString("allowed_origins")),
		PublicRPM:       v.GetInt("public_rpm"),
		PublicBurst:     v.GetInt("public_burst"),
		AdminRPM:        v.GetInt("admin_rpm"),
		AdminBurst:      v.GetInt("admin_burst"),
	}
	// An absent services key is a valid, empty list.
	if err := v.UnmarshalKey("services", &cfg.Services); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HistoryDir, validation.Required),
		validation.Field(&c.LogDir, validation.Required),
		validation.Field(&c.LogLevel,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.Addr, validation.Required, validation.By(validateHostPort)),
		validation.Field(&c.SlackWebhookURLs, validation.Each(is.URL)),
		validation.Field(&c.Services,
			validation.Each(validation.By(validateService)),
			validation.By(uniqueSlugs),
		),
	)
}

func validateService(value interface{}) error {
	svc, ok := value.(domain.ServiceConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a service")
	}
	return validation.ValidateStruct(&svc,
		validation.Field(&svc.Name, validation.Required),
		validation.Field(&svc.URL, validation.Required, validation.By(validateHTTPURL)),
	)
}

func validateHTTPURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if u.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}
	return nil
}

// uniqueSlugs rejects two services that would share a history file.
func uniqueSlugs(value interface{}) error {
	services, _ := value.([]domain.ServiceConfig)
	seen := make(map[string]string, len(services))
	for _, s := range services {
		slug := s.Slug()
		if prev, dup := seen[slug]; dup {
			return validation.NewError("validation_duplicate_slug",
				fmt.Sprintf("%q and %q share history file %s.yml", prev, s.Name, slug))
		}
		seen[slug] = s.Name
	}
	return nil
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}
	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}
	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
