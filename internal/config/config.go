package config

import "time"

// Config holds server configuration values.
type Config struct {
	// Addr is the HTTP listen address (admin API and WebSocket bridge).
	Addr string `mapstructure:"addr" yaml:"addr"`
	// TCPAddr is the listen address of the line-oriented chat protocol.
	TCPAddr string `mapstructure:"tcp_addr" yaml:"tcp_addr"`
	// BaseRoomPort seeds the registry's per-room port slots.
	BaseRoomPort int `mapstructure:"base_room_port" yaml:"base_room_port"`
	// DatabasePath is the SQLite file backing the lifecycle audit trail.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		TCPAddr:           ":12345",
		BaseRoomPort:      20000,
		DatabasePath:      "linechat.db",
		LogLevel:          "info",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}
