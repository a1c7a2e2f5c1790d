// internal/config/config.go
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr       string `mapstructure:"addr"`
	RootDomain string `mapstructure:"root_domain"`
	LogLevel   string `mapstructure:"log_level"`
	API        struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	AMQP struct {
		URL   string `mapstructure:"url"`
		Queue string `mapstructure:"queue"`
	} `mapstructure:"amqp"`
	Tenant struct {
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"tenant"`
	Cookies struct {
		Domain string        `mapstructure:"domain"`
		Secure bool          `mapstructure:"secure"`
		MaxAge time.Duration `mapstructure:"max_age"`
	} `mapstructure:"cookies"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
	Dev struct {
		Enabled   bool   `mapstructure:"enabled"`
		Subdomain string `mapstructure:"subdomain"`
	} `mapstructure:"dev"`
}

func Load() Config {
	// .env is optional; real env vars win
	_ = godotenv.Load()

	viper.SetDefault("addr", "127.0.0.1:8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("api.timeout", 15*time.Second)
	viper.SetDefault("amqp.queue", "orders")
	viper.SetDefault("tenant.cache_ttl", time.Minute)
	viper.SetDefault("cookies.secure", true)
	viper.SetDefault("cookies.max_age", 7*24*time.Hour)
	viper.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	_ = viper.ReadInConfig()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// explicit bindings
	_ = viper.BindEnv("addr", "ADDR")
	_ = viper.BindEnv("root_domain", "ROOT_DOMAIN")
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("api.base_url", "API_BASE_URL", "NEXT_PUBLIC_API_URL")
	_ = viper.BindEnv("api.timeout", "API_TIMEOUT")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("amqp.url", "RABBITMQ_URI")
	_ = viper.BindEnv("amqp.queue", "RABBITMQ_QUEUE")
	_ = viper.BindEnv("tenant.cache_ttl", "TENANT_CACHE_TTL")
	_ = viper.BindEnv("cookies.domain", "COOKIE_DOMAIN")
	_ = viper.BindEnv("cookies.secure", "COOKIE_SECURE")
	_ = viper.BindEnv("cookies.max_age", "COOKIE_MAX_AGE")
	_ = viper.BindEnv("dev.enabled", "DEV_MODE")
	_ = viper.BindEnv("dev.subdomain", "DEV_SUBDOMAIN")

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		panic("config error: " + err.Error())
	}
	if c.API.BaseURL == "" {
		panic("config error: api.base_url/API_BASE_URL required")
	}
	if v := viper.GetString("PORT"); v != "" {
		c.Addr = ":" + v
	}
	return c
}
