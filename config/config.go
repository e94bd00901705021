package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PrinterAddr a configured raw-TCP printer
type PrinterAddr struct {
	Name    string
	Address string
}

// Config application configuration
type Config struct {
	TelegramToken  string
	OwnerChatID    int64
	CatalogBaseURL string
	HTTPTimeout    time.Duration
	APIRateLimit   float64 // requests per second, 0 = unlimited
	StorageDBPath  string
	CacheTTL       time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	Printers       []PrinterAddr
	LogLevel       string
	LogFormat      string
	Env            string
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		CatalogBaseURL: "https://dummyjson.com",
		HTTPTimeout:    15 * time.Second,
		StorageDBPath:  "data/storage.db",
		CacheTTL:       time.Minute,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		LogLevel:       "info",
		Env:            "development",
	}

	if v := os.Getenv("CATALOG_BASE_URL"); v != "" {
		config.CatalogBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("STORAGE_DB_PATH"); v != "" {
		config.StorageDBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		config.LogFormat = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	if raw := os.Getenv("OWNER_CHAT_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("OWNER_CHAT_ID is malformed: %w", err)
		}
		config.OwnerChatID = parsed
	}

	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("HTTP_TIMEOUT is malformed: %w", err)
		}
		config.HTTPTimeout = d
	}

	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("CACHE_TTL is malformed: %w", err)
		}
		config.CacheTTL = d
	}

	if raw := os.Getenv("API_RATE_LIMIT"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps < 0 {
			return nil, fmt.Errorf("API_RATE_LIMIT is malformed: %q", raw)
		}
		config.APIRateLimit = rps
	}

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("REDIS_DB is malformed: %w", err)
		}
		config.RedisDB = db
	}

	printers, err := ParsePrinterAddrs(os.Getenv("PRINTER_ADDRS"))
	if err != nil {
		return nil, err
	}
	config.Printers = printers

	// Validation
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is empty")
	}
	if config.OwnerChatID == 0 {
		return nil, fmt.Errorf("OWNER_CHAT_ID environment variable is empty")
	}

	return config, nil
}

// ParsePrinterAddrs parses "name=host:port,name2=host:port"; a bare address is its own name
func ParsePrinterAddrs(raw string) ([]PrinterAddr, error) {
	var out []PrinterAddr
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, addr, found := strings.Cut(item, "=")
		if !found {
			addr = name
		}
		name, addr = strings.TrimSpace(name), strings.TrimSpace(addr)
		if addr == "" || !strings.Contains(addr, ":") {
			return nil, fmt.Errorf("PRINTER_ADDRS entry %q needs host:port", item)
		}
		out = append(out, PrinterAddr{Name: name, Address: addr})
	}
	return out, nil
}
