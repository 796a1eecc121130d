package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Ledger   LedgerConfig
	Geocoder GeocoderConfig
	NewRelic NewRelicConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoConfig holds MongoDB configuration.
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LedgerConfig holds the ledger node and settlement configuration.
// ContractAddresses maps network IDs to deployed escrow contract
// addresses. AccountPool lists the addresses handed out round-robin
// at registration; when empty, the node's own accounts are used.
type LedgerConfig struct {
	RPCURL            string
	ContractAddresses map[string]string
	AccountPool       []string
	CallTimeout       time.Duration
	SettlementDelay   time.Duration
	GasLimit          uint64
	GasPriceWei       uint64
}

// GeocoderConfig holds the reverse geocoding configuration.
type GeocoderConfig struct {
	APIKey string
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "chainride"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Ledger: LedgerConfig{
			RPCURL:            getEnv("LEDGER_RPC_URL", "http://localhost:8545"),
			ContractAddresses: getMapEnv("LEDGER_CONTRACT_ADDRESSES"),
			AccountPool:       getSliceEnv("LEDGER_ACCOUNT_POOL"),
			CallTimeout:       getDurationEnv("LEDGER_CALL_TIMEOUT", 3*time.Second),
			SettlementDelay:   getDurationEnv("SETTLEMENT_DELAY", 5*time.Second),
			GasLimit:          uint64(getIntEnv("LEDGER_GAS_LIMIT", 1000000)),
			GasPriceWei:       uint64(getIntEnv("LEDGER_GAS_PRICE_WEI", 1000000000)),
		},
		Geocoder: GeocoderConfig{
			APIKey: getEnv("GEOCODER_API_KEY", ""),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "chainride"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getSliceEnv parses a comma-separated list. Empty entries are skipped.
func getSliceEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getMapEnv parses "key1=val1,key2=val2". Malformed entries are skipped.
func getMapEnv(key string) map[string]string {
	value := os.Getenv(key)
	out := make(map[string]string)
	if value == "" {
		return out
	}
	for _, part := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
