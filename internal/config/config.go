package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
)

type Config struct {
	ServiceName string
	HTTPAddr    string
	LogLevel    string

	SecretKey       []byte
	Algorithm       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int

	DBDriver    string
	DatabaseURL string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RedisAddr        string
	RedisPassword    string
	ProductsCacheTTL time.Duration
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "storefront")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("ES_INDEX", "products")
}

// Load fails when any required key is absent or malformed, naming all of them.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	c := pkgconfig.NewChecker(v)

	cfg := Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		SecretKey:       []byte(c.NonEmpty("SECRET_KEY")),
		Algorithm:       c.NonEmpty("ALGORITHM"),
		AccessTokenTTL:  time.Duration(c.PositiveInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		RefreshTokenTTL: time.Duration(c.PositiveInt("REFRESH_TOKEN_EXPIRE_DAYS")) * 24 * time.Hour,
		BcryptCost:      c.IntDefault("BCRYPT_COST", 10),

		DBDriver:    v.GetString("DB_DRIVER"),
		DatabaseURL: c.NonEmpty("DATABASE_URL"),

		KafkaBrokers: pkgconfig.CSV(v.GetString("KAFKA_BROKERS")),

		ESURL:      v.GetString("ES_URL"),
		ESUser:     v.GetString("ES_USER"),
		ESPassword: v.GetString("ES_PASSWORD"),
		ESIndex:    v.GetString("ES_INDEX"),

		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		ProductsCacheTTL: c.DurationDefault("PRODUCTS_CACHE_TTL", time.Minute),
	}

	if err := c.Err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
