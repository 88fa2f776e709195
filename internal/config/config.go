// Package config loads runtime configuration from the environment (optionally seeded from a
// .env file) and holds the domain limits shared by the realtime core.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Realtime RealtimeConfig
	Telegram TelegramConfig
	Log      LogConfig
}

type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Channel is the pub/sub channel every server instance listens on.
	Channel string
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// RealtimeConfig tunes the websocket pumps.
type RealtimeConfig struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

type TelegramConfig struct {
	BotToken string
}

type LogConfig struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", "")

	v.SetDefault("database.dsn", "host=localhost user=user password=password dbname=campuscart port=5432 sslmode=disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "campuscart:realtime")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "campuscart")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("realtime.write_wait", 10*time.Second)
	v.SetDefault("realtime.pong_wait", 60*time.Second)
	v.SetDefault("realtime.max_message_size", 16*1024)
	v.SetDefault("realtime.send_buffer", 256)

	v.SetDefault("telegram.bot_token", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads .env (if present) and CAMPUSCART_* environment variables, e.g.
// CAMPUSCART_REDIS_ADDR or CAMPUSCART_AUTH_JWT_SECRET.
func Load() (*Config, error) {
	// .env is optional; missing file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CAMPUSCART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:           v.GetString("server.addr"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			AllowedOrigins: splitList(v.GetString("server.allowed_origins")),
		},
		Database: DatabaseConfig{
			DSN:          v.GetString("database.dsn"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
			AutoMigrate:  v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Channel:  v.GetString("redis.channel"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Realtime: RealtimeConfig{
			WriteWait:      v.GetDuration("realtime.write_wait"),
			PongWait:       v.GetDuration("realtime.pong_wait"),
			MaxMessageSize: v.GetInt64("realtime.max_message_size"),
			SendBuffer:     v.GetInt("realtime.send_buffer"),
		},
		Telegram: TelegramConfig{BotToken: v.GetString("telegram.bot_token")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
	cfg.Realtime.PingPeriod = (cfg.Realtime.PongWait * 9) / 10

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: CAMPUSCART_AUTH_JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: token ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Realtime.PongWait <= 0 || c.Realtime.SendBuffer <= 0 {
		return fmt.Errorf("config: invalid realtime settings")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
