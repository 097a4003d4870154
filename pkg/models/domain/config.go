package domain

import (
	"fmt"
	"time"
)

type Config struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	HistoryLimit int           `mapstructure:"history_limit"`
	FetchDetails bool          `mapstructure:"fetch_details"`
	ThemeFile    string        `mapstructure:"theme_file"`
	LogLevel     string        `mapstructure:"log_level"`
	Server       ServerConfig  `mapstructure:"server"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Profile is a named remote-service target read from the profiles file.
type Profile struct {
	Name    string
	BaseURL string
	Timeout time.Duration
}

func (p Profile) String() string {
	return fmt.Sprintf("%s:%s", p.Name, p.BaseURL)
}
