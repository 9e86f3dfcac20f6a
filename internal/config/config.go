package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	JWTExpiresHours int    `mapstructure:"JWT_EXPIRES_HOURS"`
	Port            int    `mapstructure:"PORT"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	AppEnv          string `mapstructure:"APP_ENV"`
	OTelEndpoint    string `mapstructure:"OTEL_ENDPOINT"`
	ServiceName     string `mapstructure:"SERVICE_NAME"`
}

// IsDevelopment reports whether internal error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

var AppConfig *Config

// Keys without a meaningful default are still registered so that
// viper.Unmarshal picks them up from the environment.
func setDefaults() {
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("OTEL_ENDPOINT", "")
	viper.SetDefault("JWT_EXPIRES_HOURS", 24*7)
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("SERVICE_NAME", "guild-api")
}

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() error {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return err
	}
	AppConfig = &cfg
	return nil
}
