package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/glosshub/glosshub/internal/log"
	"github.com/glosshub/glosshub/internal/pkg/xcache"
	"github.com/glosshub/glosshub/internal/server"
	"github.com/glosshub/glosshub/internal/server/biz"
	"github.com/glosshub/glosshub/internal/server/db"
)

// Config is the full application configuration. The fx.Out embedding
// feeds each section into the dependency graph as its own type.
type Config struct {
	fx.Out `yaml:"-" json:"-"`

	APIServer server.Config  `conf:"server" yaml:"server" json:"server"`
	Log       log.Config     `conf:"log" yaml:"log" json:"log"`
	Auth      biz.AuthConfig `conf:"auth" yaml:"auth" json:"auth"`
	Cache     xcache.Config  `conf:"cache" yaml:"cache" json:"cache"`
	DB        db.Config      `conf:"db" yaml:"db" json:"db"`
}

// Load reads configuration from glosshub.yml and GLOSSHUB_* environment
// variables, with env taking precedence.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigName("glosshub")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.glosshub")
	v.AddConfigPath("/etc/glosshub")

	v.SetEnvPrefix("GLOSSHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	err := v.Unmarshal(&config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8765)
	v.SetDefault("server.name", "glosshub")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.trace.trace_header", "GH-Trace-Id")

	v.SetDefault("log.name", "glosshub")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("cache.mode", xcache.ModeMemory)
	v.SetDefault("cache.memory.expiration", 5*time.Minute)
	v.SetDefault("cache.memory.cleanup_interval", 10*time.Minute)
	v.SetDefault("cache.redis.expiration", 30*time.Minute)
}
