package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress       string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn        string `mapstructure:"POSTGRES_CONN"`
	PostgresURL         string `mapstructure:"POSTGRES_JDBC_URL"`
	PostgresUser        string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass        string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost        string `mapstructure:"POSTGRES_HOST"`
	PostgresPort        string `mapstructure:"POSTGRES_PORT"`
	PostgresDB          string `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL        string `mapstructure:"MIGRATION_URL"`
	SearchWindowMinutes int    `mapstructure:"SEARCH_WINDOW_MINUTES"`
	SweepIntervalSec    int    `mapstructure:"SWEEP_INTERVAL_SECONDS"`
	HandlerTimeoutSec   int    `mapstructure:"HANDLER_TIMEOUT_SECONDS"`
}

// LoadConfig загружает конфигурацию из файла
func LoadConfig(path string) (cfg Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("SEARCH_WINDOW_MINUTES", 30)
	viper.SetDefault("SWEEP_INTERVAL_SECONDS", 60)
	viper.SetDefault("HANDLER_TIMEOUT_SECONDS", 5)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}
	err = viper.Unmarshal(&cfg)
	return
}

// SearchWindow возвращает длительность окна поиска музыканта.
func (c Config) SearchWindow() time.Duration {
	return time.Duration(c.SearchWindowMinutes) * time.Minute
}

// SweepInterval возвращает период сверки просроченных заявок.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSec) * time.Second
}

// HandlerTimeout возвращает таймаут обработки HTTP-запроса.
func (c Config) HandlerTimeout() time.Duration {
	return time.Duration(c.HandlerTimeoutSec) * time.Second
}
