package device

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds configuration for opening and decoding dump files
type Config struct {
	RegionName     string `mapstructure:"region_name" json:"region_name" yaml:"region_name"`
	AlignmentPower uint32 `mapstructure:"alignment_power" json:"alignment_power" yaml:"alignment_power"`
	MaxRegions     int    `mapstructure:"max_regions" json:"max_regions" yaml:"max_regions"`
	LogLevel       string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	OutputFormat   string `mapstructure:"output_format" json:"output_format" yaml:"output_format"`

	// Source is the config file that was read, empty when only defaults apply
	Source string `mapstructure:"-" json:"source,omitempty" yaml:"source,omitempty"`
}

// LoadConfig loads configuration using Viper. When configFile is empty the
// standard search paths are used and a missing file is not an error.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("minidump-config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.minidump")
		v.AddConfigPath("/etc/minidump")
	}

	// Set defaults
	v.SetDefault("region_name", ".data")
	v.SetDefault("alignment_power", 4)
	v.SetDefault("max_regions", 1<<20)
	v.SetDefault("log_level", "info")
	v.SetDefault("output_format", "table")

	// Allow environment variables
	v.SetEnvPrefix("MINIDUMP")
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.Source = v.ConfigFileUsed()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if c.RegionName == "" {
		return fmt.Errorf("region_name cannot be empty")
	}
	if c.AlignmentPower > 63 {
		return fmt.Errorf("alignment_power must be at most 63, got %d", c.AlignmentPower)
	}
	if c.MaxRegions < 0 {
		return fmt.Errorf("max_regions cannot be negative, got %d", c.MaxRegions)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	switch c.OutputFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("invalid output_format: %s", c.OutputFormat)
	}

	return nil
}
