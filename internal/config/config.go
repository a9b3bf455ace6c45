// Package config is used to load the configuration file
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/blacktop/machobj/pkg/object"
)

// InfoConfig holds the `info` command settings.
type InfoConfig struct {
	Arch     string `mapstructure:"arch"`
	Header   bool   `mapstructure:"header"`
	Loads    bool   `mapstructure:"loads"`
	Sections bool   `mapstructure:"sections"`
	Symbols  bool   `mapstructure:"symbols"`
	Relocs   bool   `mapstructure:"relocs"`
	Libs     bool   `mapstructure:"libs"`
	Dice     bool   `mapstructure:"dice"`
	Demangle bool   `mapstructure:"demangle"`
	JSON     bool   `mapstructure:"json"`
	// Jobs bounds how many files are parsed at once. Zero means one per CPU.
	Jobs int `mapstructure:"jobs"`
}

// Config is the configuration struct
type Config struct {
	Verbose bool       `mapstructure:"verbose"`
	Color   bool       `mapstructure:"color"`
	Info    InfoConfig `mapstructure:"info"`
}

func (c *Config) verify() error {
	if c.Info.Arch != "" {
		if _, ok := object.ParseArch(c.Info.Arch); !ok {
			return fmt.Errorf("config: unknown architecture %q", c.Info.Arch)
		}
	}
	if c.Info.Demangle && !c.Info.Symbols && !c.Info.Relocs {
		return fmt.Errorf("config: --demangle requires --symbols or --relocs")
	}
	if c.Info.Jobs < 0 {
		return fmt.Errorf("config: jobs must not be negative")
	}
	// a bare `info` prints the header
	if !c.Info.Loads && !c.Info.Sections && !c.Info.Symbols && !c.Info.Relocs && !c.Info.Libs && !c.Info.Dice {
		c.Info.Header = true
	}
	return nil
}

// LoadConfig loads the configuration file
func LoadConfig() (*Config, error) {
	var c *Config

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}
	if c == nil {
		c = &Config{}
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return c, nil
}
