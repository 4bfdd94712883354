package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port              string
	Env               string
	DatabaseURL       string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnLifetime string

	JWTIssuer     string
	JWTAudience   string
	JWTSigningKey string
	JWTAccessTTL  time.Duration

	ContractAddress string
	CreatorAddress  string
	DealMinDuration time.Duration
	DealMaxDuration time.Duration

	LedgerMode   string
	LedgerRPCURL string

	ExpirySweepInterval time.Duration
}

func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8090"),
		Env:               getEnv("APP_ENV", "local"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxConns:        getEnvInt32("DB_MAX_CONNS", 25),
		DBMinConns:        getEnvInt32("DB_MIN_CONNS", 2),
		DBMaxConnLifetime: getEnv("DB_MAX_CONN_LIFETIME", "30m"),

		JWTIssuer:     getEnv("JWT_ISSUER", "lendtez-backend"),
		JWTAudience:   getEnv("JWT_AUDIENCE", "lendtez-api"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-insecure-key-change-me"),
		JWTAccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),

		ContractAddress: getEnv("CONTRACT_ADDRESS", "KT1LendTezContract"),
		CreatorAddress:  getEnv("CREATOR_ADDRESS", "tz1fE6hEiRFa9ZHJeZrccNKsGW7jdxfe9vcv"),
		DealMinDuration: getEnvDuration("DEAL_MIN_DURATION", 7*24*time.Hour),
		DealMaxDuration: getEnvDuration("DEAL_MAX_DURATION", 180*24*time.Hour),

		LedgerMode:   getEnv("LEDGER_MODE", "memory"),
		LedgerRPCURL: getEnv("LEDGER_RPC_URL", ""),

		ExpirySweepInterval: getEnvDuration("EXPIRY_SWEEP_INTERVAL", time.Minute),
	}
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		var out int32
		_, err := fmt.Sscanf(v, "%d", &out)
		if err == nil {
			return out
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}
