// Package config loads vibestock settings from .env files, an optional
// vibestock.yaml and VIBESTOCK_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/zouxin96/vibeStock/internal/feed"
	"github.com/zouxin96/vibeStock/internal/logging"
	"github.com/zouxin96/vibeStock/internal/socket"
	"github.com/zouxin96/vibeStock/internal/widget"
)

const (
	// EnvPrefix prefixes every environment override, e.g. VIBESTOCK_SOCKET_URL.
	EnvPrefix = "VIBESTOCK"
	// FileName is the config file searched for when no path is given.
	FileName = "vibestock"
	// DefaultLayoutPath is where the dashboard layout is kept.
	DefaultLayoutPath = "dashboard_layout.yaml"
)

// WidgetsConfig holds options shared by every widget.
type WidgetsConfig struct {
	RetryDelay time.Duration
	PageSize   int
}

// LayoutConfig locates the layout file.
type LayoutConfig struct {
	Path string
}

// Config is the full application configuration.
type Config struct {
	Socket  socket.Config
	Widgets WidgetsConfig
	Layout  LayoutConfig
	Log     logging.Config
	Feed    feed.Config

	// File is the config file that was read, if any.
	File string
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Socket: socket.DefaultConfig(),
		Widgets: WidgetsConfig{
			RetryDelay: widget.DefaultRetryDelay,
			PageSize:   widget.DefaultPageSize,
		},
		Layout: LayoutConfig{Path: DefaultLayoutPath},
		Log:    logging.DefaultConfig(),
		Feed:   feed.DefaultConfig(),
	}
}

// Load reads configuration in order of increasing precedence: defaults, the
// config file, .env files and the process environment. An explicit path must
// exist; without one, a missing vibestock.yaml is fine.
func Load(path string) (Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/vibestock")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}
	return fromViper(v), nil
}

// loadEnvFiles loads .env then .env.local. Variables already set win.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("socket.url", c.Socket.URL)
	v.SetDefault("socket.handshake_timeout", c.Socket.HandshakeTimeout)
	v.SetDefault("socket.write_wait", c.Socket.WriteWait)
	v.SetDefault("socket.pong_wait", c.Socket.PongWait)
	v.SetDefault("socket.ping_period", c.Socket.PingPeriod)
	v.SetDefault("socket.reconnect_delay", c.Socket.ReconnectDelay)
	v.SetDefault("socket.frame_buffer", c.Socket.FrameBuffer)
	v.SetDefault("socket.drop_frames", c.Socket.DropFrames)
	v.SetDefault("socket.max_message_size", c.Socket.MaxMessageSize)

	v.SetDefault("widgets.retry_delay", c.Widgets.RetryDelay)
	v.SetDefault("widgets.page_size", c.Widgets.PageSize)

	v.SetDefault("layout.path", c.Layout.Path)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
	v.SetDefault("log.file", c.Log.File)
	v.SetDefault("log.max_size_mb", c.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", c.Log.MaxBackups)
	v.SetDefault("log.max_age_days", c.Log.MaxAgeDays)
	v.SetDefault("log.compress", c.Log.Compress)
	v.SetDefault("log.no_color", c.Log.NoColor)

	v.SetDefault("feed.addr", c.Feed.Addr)
	v.SetDefault("feed.interval", c.Feed.Interval)
	v.SetDefault("feed.seed", c.Feed.Seed)
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Socket: socket.Config{
			URL:              v.GetString("socket.url"),
			HandshakeTimeout: v.GetDuration("socket.handshake_timeout"),
			WriteWait:        v.GetDuration("socket.write_wait"),
			PongWait:         v.GetDuration("socket.pong_wait"),
			PingPeriod:       v.GetDuration("socket.ping_period"),
			ReconnectDelay:   v.GetDuration("socket.reconnect_delay"),
			FrameBuffer:      v.GetInt("socket.frame_buffer"),
			DropFrames:       v.GetBool("socket.drop_frames"),
			MaxMessageSize:   v.GetInt64("socket.max_message_size"),
		},
		Widgets: WidgetsConfig{
			RetryDelay: v.GetDuration("widgets.retry_delay"),
			PageSize:   v.GetInt("widgets.page_size"),
		},
		Layout: LayoutConfig{Path: v.GetString("layout.path")},
		Log: logging.Config{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
			NoColor:    v.GetBool("log.no_color"),
		},
		Feed: feed.Config{
			Addr:     v.GetString("feed.addr"),
			Interval: v.GetDuration("feed.interval"),
			Seed:     v.GetInt64("feed.seed"),
		},
		File: v.ConfigFileUsed(),
	}
}
