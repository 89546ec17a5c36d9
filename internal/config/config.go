package config

import "time"

// StageConfig overrides the answer key (and title) of one stage.
type StageConfig struct {
	Index   int      `mapstructure:"index" yaml:"index"`
	Title   string   `mapstructure:"title" yaml:"title"`
	Answers []string `mapstructure:"answers" yaml:"answers"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`

	// Per-connection inbound budget. Zero disables limiting.
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" yaml:"rate_limit_per_second"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`

	MaxMembers     int           `mapstructure:"max_members" yaml:"max_members"`
	MaxMissionTime time.Duration `mapstructure:"max_mission_time" yaml:"max_mission_time"`
	RoomCodeLength int           `mapstructure:"room_code_length" yaml:"room_code_length"`
	Stages         []StageConfig `mapstructure:"stages" yaml:"stages,omitempty"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":5000",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		AllowedOrigins:     []string{"http://localhost:3000"},
		DatabasePath:       "wireroom.db",
		MaxMessageBytes:    64 << 10,
		RateLimitPerSecond: 20,
		RateLimitBurst:     60,
		MaxMembers:         4,
		MaxMissionTime:     30 * time.Minute,
		RoomCodeLength:     6,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.RateLimitPerSecond != 0 {
		c.RateLimitPerSecond = other.RateLimitPerSecond
	}
	if other.RateLimitBurst != 0 {
		c.RateLimitBurst = other.RateLimitBurst
	}
	if other.MaxMembers != 0 {
		c.MaxMembers = other.MaxMembers
	}
	if other.MaxMissionTime != 0 {
		c.MaxMissionTime = other.MaxMissionTime
	}
	if other.RoomCodeLength != 0 {
		c.RoomCodeLength = other.RoomCodeLength
	}
	if len(other.Stages) > 0 {
		c.Stages = other.Stages
	}
}
