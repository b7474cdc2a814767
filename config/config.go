package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Dex      DexConfig      `mapstructure:"dex"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string        `mapstructure:"http_address"`
	MetricsAddress string        `mapstructure:"metrics_address"`
	RPCAddress     string        `mapstructure:"rpc_address"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
}

type GameConfig struct {
	// MaxGuesses closes a round with no winner once the guess history
	// reaches it. 0 disables the cap.
	MaxGuesses  int `mapstructure:"max_guesses"`
	EntityMaxID int `mapstructure:"entity_max_id"`
	CodeLength  int `mapstructure:"code_length"`
}

type DexConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Driver selects the Postgres implementation: "gorm" or "sql".
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.session_timeout", "120s")
	viper.SetDefault("game.max_guesses", 10)
	viper.SetDefault("game.entity_max_id", 1025)
	viper.SetDefault("game.code_length", 6)
	viper.SetDefault("dex.base_url", "https://pokeapi.co/api/v2")
	viper.SetDefault("dex.timeout", "10s")
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.driver", "gorm")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
