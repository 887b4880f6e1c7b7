package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	SupabaseURL string
	JWKSURL     string // AUTH_JWKS_URL, or SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins []string
	TablePrefix string
	RedisURL    string // Empty disables Redis revalidation (logged instead)
	LogDir      string // Empty disables the file log sink
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := getEnv("SUPABASE_URL", "")

	jwksURL := getEnv("AUTH_JWKS_URL", "")
	if jwksURL == "" && supabaseURL != "" {
		jwksURL = strings.TrimSuffix(supabaseURL, "/") + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", getEnv("SUPABASE_DB_URL", "")),
		SupabaseURL: supabaseURL,
		JWKSURL:     jwksURL,
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		TablePrefix: getTablePrefix(env),
		RedisURL:    getEnv("REDIS_URL", ""),
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
}

// IsProduction reports whether destructive tooling must be refused
func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
