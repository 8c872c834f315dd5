package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	VendorNumber  string // watched sender JID, e.g. 234XXXXXXXXXX@c.us
	PrimaryNumber string // forwarding destination JID

	MarkupPercent  float64
	MinGadgetPrice float64
	MinProfit      float64

	BufferWait   time.Duration
	PollInterval time.Duration

	TypingDelayMin   time.Duration
	TypingDelayMax   time.Duration
	ImageDelayMin    time.Duration
	ImageDelayMax    time.Duration
	ProductDelayMin  time.Duration
	ProductDelayMax  time.Duration
	DownloadDelayMin time.Duration
	DownloadDelayMax time.Duration

	DownloadsDir string
	SessionDir   string
	ChromeBin    string
	Headless     bool

	CSVLedgerPath string
	ReportCron    string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	LedgerDB         bool

	MaxRetries int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		VendorNumber:  getEnv("VENDOR_NUMBER", ""),
		PrimaryNumber: getEnv("PRIMARY_NUMBER", ""),

		MarkupPercent:  getEnvFloat("MARKUP_PERCENT", 2.0),
		MinGadgetPrice: getEnvFloat("MIN_GADGET_PRICE", 10000),
		MinProfit:      getEnvFloat("MIN_PROFIT", 5000),

		BufferWait:   getEnvMs("BUFFER_WAIT_MS", 5000),
		PollInterval: getEnvMs("POLL_INTERVAL_MS", 3000),

		TypingDelayMin:   getEnvMs("TYPING_DELAY_MIN_MS", 1000),
		TypingDelayMax:   getEnvMs("TYPING_DELAY_MAX_MS", 2000),
		ImageDelayMin:    getEnvMs("IMAGE_DELAY_MIN_MS", 2000),
		ImageDelayMax:    getEnvMs("IMAGE_DELAY_MAX_MS", 4000),
		ProductDelayMin:  getEnvMs("PRODUCT_DELAY_MIN_MS", 30000),
		ProductDelayMax:  getEnvMs("PRODUCT_DELAY_MAX_MS", 120000),
		DownloadDelayMin: getEnvMs("DOWNLOAD_DELAY_MIN_MS", 2000),
		DownloadDelayMax: getEnvMs("DOWNLOAD_DELAY_MAX_MS", 4000),

		DownloadsDir: getEnv("DOWNLOADS_DIR", "./downloads"),
		SessionDir:   getEnv("SESSION_DIR", "./session"),
		ChromeBin:    getEnv("CHROME_BIN", ""),
		Headless:     getEnvBool("HEADLESS", true),

		CSVLedgerPath: getEnv("CSV_LEDGER_PATH", "./output/forwards.csv"),
		ReportCron:    getEnv("REPORT_CRON", "0 21 * * *"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "reseller"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "reseller123"),
		PostgresDB:       getEnv("POSTGRES_DB", "reseller_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		LedgerDB:         getEnvBool("LEDGER_DB", false),

		MaxRetries: getEnvInt("MAX_RETRIES", 3),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvMs(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}
