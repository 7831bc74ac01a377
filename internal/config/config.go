package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "hostel_db")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	return &cfg
}
