package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Game      GameConfig      `mapstructure:"game"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

type AppConfig struct {
	Env            string   `mapstructure:"env"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	LogLevel       string   `mapstructure:"log_level"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type GameConfig struct {
	RoomIDs []int `mapstructure:"room_ids"`
	// DeckCount fixes the deck multiplier for every room; zero sizes decks by player count.
	DeckCount int `mapstructure:"deck_count"`
}

type WebSocketConfig struct {
	MessagesPerSecond float64 `mapstructure:"messages_per_second"`
	Burst             int     `mapstructure:"burst"`
	OutboxSize        int     `mapstructure:"outbox_size"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.allowed_origins", []string{"https://*", "http://*"})
	v.SetDefault("game.room_ids", []int{1, 2, 3, 4, 5})
	v.SetDefault("game.deck_count", 1)
	v.SetDefault("websocket.messages_per_second", 5.0)
	v.SetDefault("websocket.burst", 10)
	v.SetDefault("websocket.outbox_size", 64)
}

// Load reads configuration from UNO_* environment variables (for example UNO_APP_PORT or
// UNO_GAME_ROOM_IDS="1,2,3"), and from configPath when it is not empty.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("uno")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// comma separated env values are split by viper but not trimmed
	cfg.App.AllowedOrigins = splitList(strings.Join(cfg.App.AllowedOrigins, ","))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if len(c.Game.RoomIDs) == 0 {
		return fmt.Errorf("config: at least one room id is required")
	}
	seen := make(map[int]bool, len(c.Game.RoomIDs))
	for _, id := range c.Game.RoomIDs {
		if id <= 0 {
			return fmt.Errorf("config: room id %d must be positive", id)
		}
		if seen[id] {
			return fmt.Errorf("config: duplicate room id %d", id)
		}
		seen[id] = true
	}
	if c.Game.DeckCount < 0 {
		return fmt.Errorf("config: deck count %d must not be negative", c.Game.DeckCount)
	}
	if c.WebSocket.MessagesPerSecond <= 0 || c.WebSocket.Burst <= 0 {
		return fmt.Errorf("config: websocket rate limit must be positive")
	}
	if c.WebSocket.OutboxSize <= 0 {
		return fmt.Errorf("config: websocket outbox size must be positive")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
