package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func NewViper() *viper.Viper {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	config := viper.New()

	if os.Getenv("ENV") == "production" {
		config.SetConfigName("config.prod")
	} else {
		config.SetConfigName("config")
	}

	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	setDefaults(config)

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	if err := config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	return config
}

func setDefaults(config *viper.Viper) {
	config.SetDefault("app.name", "chiapas-puede")
	config.SetDefault("api.prefork", false)
	config.SetDefault("api.listen", ":8080")
	config.SetDefault("api.cors.origins", "*")
	config.SetDefault("api.request_timeout", "15s")

	config.SetDefault("backend.base_url", "http://localhost:8000")
	config.SetDefault("backend.timeout", "5s")
	config.SetDefault("backend.listen", ":8000")

	config.SetDefault("session.generate_count", 5)
	config.SetDefault("session.dismiss_delay", "1s")
	config.SetDefault("session.tick_interval", "1s")

	config.SetDefault("log.level", "info")
	config.SetDefault("log.format", "text")

	config.SetDefault("database.driver", "sqlite")
	config.SetDefault("database.sqlite.path", "chiapas.db")
	config.SetDefault("database.seed", true)
}
