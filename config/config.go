package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log         Logger      `mapstructure:"logger"`
	DB          Database    `mapstructure:"database"`
	API         API         `mapstructure:"api"`
	Auth        Auth        `mapstructure:"auth"`
	Cache       Cache       `mapstructure:"cache"`
	MarketData  MarketData  `mapstructure:"market_data"`
	Challenge   Challenge   `mapstructure:"challenge"`
	Leaderboard Leaderboard `mapstructure:"leaderboard"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Auth struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type MarketData struct {
	YahooBaseURL        string        `mapstructure:"yahoo_base_url"`
	YahooTimeout        time.Duration `mapstructure:"yahoo_timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	CasablancaBaseURL   string        `mapstructure:"casablanca_base_url"`
	CasablancaTimeout   time.Duration `mapstructure:"casablanca_timeout"`
	QuoteTTL            time.Duration `mapstructure:"quote_ttl"`
	QuoteFailureTTL     time.Duration `mapstructure:"quote_failure_ttl"`
}

type Challenge struct {
	DurationDays    int     `mapstructure:"duration_days"`
	MaxDailyLossPct float64 `mapstructure:"max_daily_loss_pct"`
	MaxTotalLossPct float64 `mapstructure:"max_total_loss_pct"`
	ProfitTargetPct float64 `mapstructure:"profit_target_pct"`
}

type Leaderboard struct {
	SnapshotCron string `mapstructure:"snapshot_cron"`
	TopN         int    `mapstructure:"top_n"`
}

func Load() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8080)

	viper.SetDefault("auth.token_ttl", 24*time.Hour)

	viper.SetDefault("cache.default_expiration", 5*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)

	viper.SetDefault("market_data.yahoo_base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("market_data.yahoo_timeout", 10*time.Second)
	viper.SetDefault("market_data.max_request_per_minute", 60)
	viper.SetDefault("market_data.casablanca_timeout", 10*time.Second)
	viper.SetDefault("market_data.quote_ttl", 30*time.Second)
	viper.SetDefault("market_data.quote_failure_ttl", 10*time.Second)

	viper.SetDefault("challenge.duration_days", 30)
	viper.SetDefault("challenge.max_daily_loss_pct", 5.0)
	viper.SetDefault("challenge.max_total_loss_pct", 10.0)
	viper.SetDefault("challenge.profit_target_pct", 10.0)

	viper.SetDefault("leaderboard.snapshot_cron", "0 * * * *")
	viper.SetDefault("leaderboard.top_n", 50)
}
