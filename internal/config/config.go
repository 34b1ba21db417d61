package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode     string `mapstructure:"mode"`
	LogLevel string `mapstructure:"log_level"`

	Client ClientConfig `mapstructure:"client"`
	Media  MediaConfig  `mapstructure:"media"`
	Server ServerConfig `mapstructure:"server"`
}

type ClientConfig struct {
	APIURL           string        `mapstructure:"api_url"`
	WSURL            string        `mapstructure:"ws_url"`
	Token            string        `mapstructure:"token"`
	TokenFile        string        `mapstructure:"token_file"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	MinBackoff       time.Duration `mapstructure:"min_backoff"`
	MaxBackoff       time.Duration `mapstructure:"max_backoff"`
	PingPeriod       time.Duration `mapstructure:"ping_period"`
	PongWait         time.Duration `mapstructure:"pong_wait"`
	ReadLimit        int64         `mapstructure:"read_limit"`
	SendRateLimit    int           `mapstructure:"send_rate_limit"`
	SendRateInterval time.Duration `mapstructure:"send_rate_interval"`
}

// MediaConfig grants capture devices to the client.
type MediaConfig struct {
	Camera     bool `mapstructure:"camera"`
	Microphone bool `mapstructure:"microphone"`
	Screen     bool `mapstructure:"screen"`
	// Synthetic fills granted tracks with placeholder frames.
	Synthetic bool `mapstructure:"synthetic"`
}

type ServerConfig struct {
	Port       int           `mapstructure:"port"`
	Secret     string        `mapstructure:"secret"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	SendBuffer int           `mapstructure:"send_buffer"`
	SlowPeer   string        `mapstructure:"slow_peer"`
	Rooms      []string      `mapstructure:"rooms"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads config/config.<CONFIG_ENV>.yaml, defaulting to dev.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads one YAML file over the defaults. A missing file is not an
// error. MEETSYNC_* environment variables override both.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("MEETSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Str("api", cfg.Client.APIURL).
		Int("port", cfg.Server.Port).
		Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("log_level", "info")

	v.SetDefault("client.api_url", "http://localhost:8080/api")
	v.SetDefault("client.ws_url", "ws://localhost:8080/api/ws")
	v.SetDefault("client.token", "")
	v.SetDefault("client.token_file", "")
	v.SetDefault("client.request_timeout", "10s")
	v.SetDefault("client.min_backoff", "500ms")
	v.SetDefault("client.max_backoff", "30s")
	v.SetDefault("client.ping_period", "54s")
	v.SetDefault("client.pong_wait", "60s")
	v.SetDefault("client.read_limit", 32768)
	v.SetDefault("client.send_rate_limit", 5)
	v.SetDefault("client.send_rate_interval", "1s")

	v.SetDefault("media.camera", true)
	v.SetDefault("media.microphone", true)
	v.SetDefault("media.screen", false)
	v.SetDefault("media.synthetic", true)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.secret", "dev-secret")
	v.SetDefault("server.static_path", "")
	v.SetDefault("server.read_limit", 32768)
	v.SetDefault("server.ping_period", "54s")
	v.SetDefault("server.send_buffer", 64)
	v.SetDefault("server.slow_peer", "kick")
	v.SetDefault("server.rooms", []string{})
	v.SetDefault("server.allowed_origins", []string{"*"})
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
