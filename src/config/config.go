package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Databases DatabasesConfig `mapstructure:"databases"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Market    MarketConfig    `mapstructure:"market"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type     ServiceType `mapstructure:"type"`
	Port     string      `mapstructure:"port"`
	LogLevel string      `mapstructure:"logLevel"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret"`
}

// MarketConfig drives the price feed worker: where quotes come from,
// how often they are refreshed and which symbols are always tracked.
type MarketConfig struct {
	QuoteProxyURL string   `mapstructure:"quoteProxyUrl"`
	ChartProxyURL string   `mapstructure:"chartProxyUrl"`
	RefreshCron   string   `mapstructure:"refreshCron"`
	Symbols       []string `mapstructure:"symbols"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("appsettings")
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Market.RefreshCron == "" {
		cfg.Market.RefreshCron = "@every 5m"
	}
	return &cfg, nil
}
