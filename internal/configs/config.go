package configs

import (
	"classifieds-browser/internal/constants"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type CatalogConfig struct {
	URL          string
	ImageBaseURL string
	Timeout      time.Duration
	RandomDelay  time.Duration
	Parallelism  int
	CacheLimit   int
}

type FavoritesConfig struct {
	File string
}

type RESTConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

// RabbitMQConfig - события избранного публикуются только при Enabled
type RabbitMQConfig struct {
	Enabled bool
	URL     string
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Catalog      CatalogConfig
	Favorites    FavoritesConfig
	Rest         RESTConfig
	RabbitMQ     RabbitMQConfig
	StdoutLogger StdoutLogConfig
	FluentBit    FluentBitConfig
}

// LoadConfig загружает конфигурацию из .env (если он есть) и переменных окружения
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		// Без .env работаем на переменных окружения и значениях по умолчанию
		log.Printf("Info: Could not load .env file (path: %v): %v. Using environment only.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "classifieds-browser")

	cfg.Catalog.URL = getEnvAsString("CATALOG_URL", constants.DefaultCatalogURL)
	cfg.Catalog.ImageBaseURL = getEnvAsString("IMAGE_BASE_URL", constants.DefaultImageBaseURL)
	cfg.Catalog.Timeout = getEnvAsDuration("FETCH_TIMEOUT", constants.DefaultFetchTimeout)
	cfg.Catalog.RandomDelay = getEnvAsDuration("FETCH_RANDOM_DELAY", 0)
	cfg.Catalog.Parallelism = getEnvAsInt("FETCH_PARALLELISM", constants.DefaultFetchParallelism)
	cfg.Catalog.CacheLimit = getEnvAsInt("IMAGE_CACHE_LIMIT", constants.DefaultImageCacheLimit)

	for _, raw := range []string{cfg.Catalog.URL, cfg.Catalog.ImageBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid catalog URL %q", raw)
		}
	}
	if cfg.Catalog.CacheLimit <= 0 {
		return nil, fmt.Errorf("IMAGE_CACHE_LIMIT must be positive, got %d", cfg.Catalog.CacheLimit)
	}

	cfg.Favorites.File = getEnvAsString("FAVORITES_FILE", constants.DefaultFavoritesFile)
	if strings.TrimSpace(cfg.Favorites.File) == "" {
		return nil, fmt.Errorf("FAVORITES_FILE cannot be empty")
	}

	cfg.Rest.Port = getEnvAsString("PORT", "8080")
	cfg.Rest.CORSAllowedOrigins = getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"})

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration принимает формат time.ParseDuration, например "15s"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsSlice - значения через запятую
func getEnvAsSlice(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
