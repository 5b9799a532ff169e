package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/locstat/pkg/langmap"
	"github.com/Sumatoshi-tech/locstat/pkg/palette"
	"github.com/Sumatoshi-tech/locstat/pkg/scan"
)

// configName is the config file name without extension.
const configName = ".locstat"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for locstat settings.
const envPrefix = "LOCSTAT"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

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

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	// Command-specific sections are validated by the command that reads them.
	validateErr := cfg.validateShared()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("scan.repos", DefaultReposDir)
	viperCfg.SetDefault("scan.out", DefaultOutDir)
	viperCfg.SetDefault("scan.assistant_out", DefaultAssistantOutDir)
	viperCfg.SetDefault("scan.days", DefaultWindowDays)
	viperCfg.SetDefault("scan.identities", []string{})
	viperCfg.SetDefault("scan.languages", DefaultLanguagesFile)
	viperCfg.SetDefault("scan.unmapped", string(langmap.DefaultUnmappedMode))
	viperCfg.SetDefault("scan.run_id", "")

	viperCfg.SetDefault("attribution.marker", scan.DefaultMarker)

	viperCfg.SetDefault("render.colors", DefaultColorsFile)
	viperCfg.SetDefault("render.out", DefaultChartFile)
	viperCfg.SetDefault("render.html", "")
	viperCfg.SetDefault("render.skip", []string{})
	viperCfg.SetDefault("render.min_lines", DefaultMinLines)
	viperCfg.SetDefault("render.fallback", string(palette.DefaultFallback))

	viperCfg.SetDefault("history.backend", DefaultBackend)
	viperCfg.SetDefault("history.query_timeout", time.Duration(0))

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", false)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("telemetry.metrics_file", "")
}
