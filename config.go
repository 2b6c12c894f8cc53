package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

type config struct {
	Prompt   string `toml:"prompt"`
	Color    bool   `toml:"color"`
	LogLevel string `toml:"log_level"`
}

func defaultConfig() config {
	return config{Prompt: "> ", Color: true, LogLevel: "warn"}
}

// loadConfig reads the TOML config at path, or at lox.toml in the working
// directory when no path is given. A missing default file is not an error:
// the defaults apply.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = "lox.toml"
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return cfg, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
