package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv        string `mapstructure:"APP_ENV"`
	Port          string `mapstructure:"PORT"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	CORSOrigin    string `mapstructure:"CORS_ORIGIN"`
}

// LoadConfig reads configuration from the environment.
//
// DATABASE_URL selects the storage engine: "sqlite://<file>" for the
// synchronous on-disk engine, "memory://<file>" for the in-memory engine
// snapshotting to <file>. JWT_SECRET, ADMIN_USERNAME and ADMIN_PASSWORD have
// no defaults on purpose; startup decides how their absence degrades.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("APP_ENV", "local")
	viper.SetDefault("PORT", "5000")
	viper.SetDefault("DATABASE_URL", "sqlite://database.sqlite")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("ADMIN_USERNAME", "")
	viper.SetDefault("ADMIN_PASSWORD", "")
	viper.SetDefault("CORS_ORIGIN", "*")

	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	return
}
