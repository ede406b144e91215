package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port       string
	DBPath     string
	DataDir    string
	ReportsDir string
	LoadData   bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getenv("PORT", "8000"),
		DBPath:     getenv("DB_PATH", "./store_monitoring.db"),
		DataDir:    getenv("DATA_DIR", "./data"),
		ReportsDir: getenv("REPORTS_DIR", "./reports"),
		LoadData:   envBool("LOAD_DATA", true),
	}

	return cfg, nil
}

// Helper functions
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.ToLower(getenv(k, ""))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}
