// Package config loads the application configuration from a YAML file with
// defaults and environment overrides. Secrets never live in the file; the
// AgileDay token comes from the environment, optionally via a .env file.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/sevendos/invoice-transfer/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Company    CompanyConfig    `mapstructure:"company"`
	Output     OutputConfig     `mapstructure:"output"`
	Dimensions DimensionsConfig `mapstructure:"dimensions"`
	AgileDay   AgileDayConfig   `mapstructure:"agileday"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// CompanyConfig identifies the invoicing company.
type CompanyConfig struct {
	// InternalName is the employing company whose hours stay billable under
	// the company-only inclusion policy.
	InternalName string `mapstructure:"internal_name"`
}

// OutputConfig holds the transfer-document preamble values.
type OutputConfig struct {
	CompanyCode  string `mapstructure:"company_code"`
	ReplyEmail   string `mapstructure:"reply_email"`
	SourceSystem string `mapstructure:"source_system"`
}

// DimensionsConfig holds the accounting dimensions stamped on every row.
type DimensionsConfig struct {
	CostCenter   string `mapstructure:"cost_center"`
	BusinessLine string `mapstructure:"business_line"`
	Area         string `mapstructure:"area"`
	Service      string `mapstructure:"service"`
}

// AgileDayConfig holds the hour-tracking API settings. The token comes from
// the AGILEDAY_TOKEN environment variable, never from the file.
type AgileDayConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Status  string        `mapstructure:"status"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from the given file and environment variables.
// An empty configPath loads defaults and environment only. A .env file in
// the working directory is applied first when present.
func Load(configPath string) (*Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("company.internal_name", "Orangit Oy")

	v.SetDefault("output.company_code", "263")
	v.SetDefault("output.reply_email", "laskutus@barona.fi")
	v.SetDefault("output.source_system", "Orangit")

	v.SetDefault("dimensions.cost_center", "1999")
	v.SetDefault("dimensions.business_line", "IT")
	v.SetDefault("dimensions.area", "10091")
	v.SetDefault("dimensions.service", "KON")

	v.SetDefault("agileday.base_url", "")
	v.SetDefault("agileday.status", "Submitted")
	v.SetDefault("agileday.timeout", 60*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stderr")
	v.SetDefault("logger.format", "console")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Company.InternalName == "" {
		return fmt.Errorf("company.internal_name is required")
	}
	if c.Output.CompanyCode == "" {
		return fmt.Errorf("output.company_code is required")
	}
	if c.Output.ReplyEmail == "" {
		return fmt.Errorf("output.reply_email is required")
	}
	if c.Output.SourceSystem == "" {
		return fmt.Errorf("output.source_system is required")
	}
	return nil
}

// ModelDimensions converts the configured dimensions to the model type
// stamped on invoice rows.
func (c *Config) ModelDimensions() models.Dimensions {
	return models.Dimensions{
		CostCenter:   c.Dimensions.CostCenter,
		BusinessLine: c.Dimensions.BusinessLine,
		Area:         c.Dimensions.Area,
		Service:      c.Dimensions.Service,
	}
}
