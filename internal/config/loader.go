package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".star-trend"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for star-trend settings.
const envPrefix = "STARTREND"

// LoadConfig loads configuration from defaults, file, env vars and flags,
// in increasing order of precedence. If configPath is non-empty it is used
// as the config file; otherwise .star-trend.yaml is searched in CWD and
// $HOME. A missing config file is not an error. Only flags that were set
// on the command line override the other sources.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()
	if err := viperCfg.BindEnv("token", envPrefix+"_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind token env: %w", err)
	}

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	if flags != nil {
		for key, flag := range map[string]string{
			"format":    "format",
			"output":    "output",
			"page_size": "page-size",
		} {
			if f := flags.Lookup(flag); f != nil {
				if err := viperCfg.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("format", DefaultFormat)
	viperCfg.SetDefault("output", "")
	viperCfg.SetDefault("page_size", DefaultPageSize)
	viperCfg.SetDefault("timeout", DefaultTimeout)
	viperCfg.SetDefault("enterprise_url", "")
}
