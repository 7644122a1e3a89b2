package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port string `mapstructure:"port"`

	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`

	SessionTTL time.Duration `mapstructure:"session_ttl"`

	Websocket WebsocketConfig `mapstructure:"websocket"`
}

// WebsocketConfig tunes the realtime connection policy.
type WebsocketConfig struct {
	// HeartbeatInterval is how often the server pings each connection.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	// IdleTimeout closes a connection with no inbound traffic or pong.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// MaxMessageLen rejects message texts longer than this many runes.
	MaxMessageLen int `mapstructure:"max_message_len"`
	// SendBuffer is the per-connection outbound queue size.
	SendBuffer int `mapstructure:"send_buffer"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	RedisDB  int    `mapstructure:"redis_db"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
