package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const EnvPrefix = "CALLHUB"

type ICEServer struct {
	URLs       []string `mapstructure:"urls" validate:"required,min=1,dive,required"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type RateLimit struct {
	Messages int           `mapstructure:"messages" validate:"gte=0"`
	Interval time.Duration `mapstructure:"interval" validate:"gte=0"`
}

type Config struct {
	Mode           string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Port           int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	LogLevel       string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit" validate:"gte=512"`
	PingPeriod     time.Duration `mapstructure:"ping_period" validate:"gt=0,ltfield=PongWait"`
	PongWait       time.Duration `mapstructure:"pong_wait" validate:"gt=0"`
	WriteWait      time.Duration `mapstructure:"write_wait" validate:"gt=0"`
	SendBuffer     int           `mapstructure:"send_buffer" validate:"gte=1"`
	Secret         string        `mapstructure:"secret" validate:"required"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RateLimit      RateLimit     `mapstructure:"rate_limit"`
	ICEServers     []ICEServer   `mapstructure:"ice_servers" validate:"dive"`
	Backpressure   string        `mapstructure:"backpressure" validate:"oneof=drop kick"`
}

var validate = validator.New()

// NewViper returns a viper with every default set and CALLHUB_* environment overrides.
// Callers may bind flags on it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("config_env", "CONFIG_ENV")

	v.SetDefault("config_env", "dev")
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_path", "")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 256)
	v.SetDefault("secret", "callhub-dev-secret")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("rate_limit.messages", 30)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
	v.SetDefault("backpressure", "kick")
	return v
}

// Load reads config/config.<config_env>.yaml when it exists and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	fileName := fmt.Sprintf("config/config.%s.yaml", v.GetString("config_env"))
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("backpressure", cfg.Backpressure).Msg("config ready")
	return &cfg, nil
}
