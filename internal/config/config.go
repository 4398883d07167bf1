// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Chain       ChainConfig
	Media       MediaConfig
	Market      MarketConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey  string
	SessionTTL int // in hours
}

// ChainConfig points the ledger client at the contract and the signing agent.
type ChainConfig struct {
	LCDEndpoint     string
	SignerEndpoint  string
	ContractAddress string
	ChainID         string
	Denom           string
	GasLimit        string
}

type MediaConfig struct {
	WorkerURL     string // pin/unpin worker
	PublicGateway string // retrieval gateway for built URLs
	MaxImages     int
	UploadTimeout int
}

type MarketConfig struct {
	PageSize       int
	DenomFactor    int64 // display units -> smallest denomination
	DebounceMillis int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", ""),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "atommarket_pins"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			SessionTTL: getEnvAsInt("JWT_SESSION_TTL", 24), // 24 hours
		},
		Chain: ChainConfig{
			LCDEndpoint:     getEnv("CHAIN_LCD_URL", "https://rpc.cosmoshub.strange.love"),
			SignerEndpoint:  getEnv("CHAIN_SIGNER_URL", ""),
			ContractAddress: getEnv("CHAIN_CONTRACT_ADDRESS", ""),
			ChainID:         getEnv("CHAIN_ID", "cosmoshub-4"),
			Denom:           getEnv("CHAIN_DENOM", "uatom"),
			GasLimit:        getEnv("CHAIN_GAS_LIMIT", "500000"),
		},
		Media: MediaConfig{
			WorkerURL:     getEnv("MEDIA_WORKER_URL", "https://ipfs-worker.atommarket.workers.dev"),
			PublicGateway: getEnv("MEDIA_PUBLIC_GATEWAY", "https://gateway.pinata.cloud"),
			MaxImages:     getEnvAsInt("MEDIA_MAX_IMAGES", 5),
			UploadTimeout: getEnvAsInt("MEDIA_UPLOAD_TIMEOUT", 30),
		},
		Market: MarketConfig{
			PageSize:       getEnvAsInt("MARKET_PAGE_SIZE", 50),
			DenomFactor:    getEnvAsInt64("MARKET_DENOM_FACTOR", 1_000_000),
			DebounceMillis: getEnvAsInt("MARKET_SEARCH_DEBOUNCE_MS", 300),
		},
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	var missing []string

	if c.Chain.ContractAddress == "" {
		missing = append(missing, "CHAIN_CONTRACT_ADDRESS")
	}
	if c.Environment == "production" && c.JWT.SecretKey == "your-secret-key-change-in-production" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Market.DenomFactor <= 0 {
		return fmt.Errorf("MARKET_DENOM_FACTOR must be positive, got %d", c.Market.DenomFactor)
	}
	if c.Media.MaxImages < 1 {
		return fmt.Errorf("MEDIA_MAX_IMAGES must be at least 1, got %d", c.Media.MaxImages)
	}

	return nil
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Enabled reports whether a pin audit database was configured at all.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
