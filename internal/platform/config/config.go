package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

// StorageDriver selects the backing store for the ledger and requests.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"
	StoragePostgres StorageDriver = "postgres"
)

const (
	defaultOfficerName      = "Margaret Chen"
	defaultBeneficiaries    = "Sam Miller,Katie Miller"
	defaultMonthlyCap       = "5000"
	defaultReviewThreshold  = "20000"
	defaultAIModel          = "gpt-4o-mini"
	defaultAITimeout        = 30 * time.Second
	defaultRateLimit        = "300-M"
	defaultParseConcurrency = 4
)

// Config holds application configuration.
type Config struct {
	Port           string
	IsProduction   bool
	StorageDriver  StorageDriver
	DatabaseURL    string
	EnableDBCheck  bool
	MigrationsPath string
	DataDir        string // Memory store snapshot directory; empty disables snapshots

	OfficerName        string
	KnownBeneficiaries []string
	MonthlyCap         decimal.Decimal
	ReviewThreshold    decimal.Decimal

	AIBaseURL string
	AIAPIKey  string
	AIModel   string
	AITimeout time.Duration

	RateLimit        limiter.Rate
	FrontendBaseURL  string
	ParseConcurrency int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORAGE_DRIVER", string(StorageMemory))
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("DATA_DIR", "")
	viper.SetDefault("OFFICER_NAME", defaultOfficerName)
	viper.SetDefault("KNOWN_BENEFICIARIES", defaultBeneficiaries)
	viper.SetDefault("GENERAL_SUPPORT_MONTHLY_CAP", defaultMonthlyCap)
	viper.SetDefault("LARGE_PURCHASE_THRESHOLD", defaultReviewThreshold)
	viper.SetDefault("AI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("AI_API_KEY", "")
	viper.SetDefault("AI_MODEL", defaultAIModel)
	viper.SetDefault("AI_TIMEOUT", defaultAITimeout.String())
	viper.SetDefault("RATE_LIMIT", defaultRateLimit)
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("PARSE_CONCURRENCY", defaultParseConcurrency)

	viper.AutomaticEnv()

	cfg := &Config{
		Port:            viper.GetString("PORT"),
		IsProduction:    viper.GetBool("IS_PRODUCTION"),
		DatabaseURL:     viper.GetString("PGSQL_URL"),
		EnableDBCheck:   viper.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:  viper.GetString("MIGRATIONS_PATH"),
		DataDir:         viper.GetString("DATA_DIR"),
		OfficerName:     strings.TrimSpace(viper.GetString("OFFICER_NAME")),
		AIBaseURL:       strings.TrimRight(viper.GetString("AI_BASE_URL"), "/"),
		AIAPIKey:        viper.GetString("AI_API_KEY"),
		AIModel:         viper.GetString("AI_MODEL"),
		FrontendBaseURL: viper.GetString("FRONTEND_BASE_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch driver := StorageDriver(strings.ToLower(viper.GetString("STORAGE_DRIVER"))); driver {
	case StorageMemory, StoragePostgres:
		cfg.StorageDriver = driver
	default:
		log.Printf("Warning: Invalid value for STORAGE_DRIVER ('%s'). Defaulting to %s.\n", driver, StorageMemory)
		cfg.StorageDriver = StorageMemory
	}
	if cfg.StorageDriver == StoragePostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: STORAGE_DRIVER is postgres but PGSQL_URL is not set.")
	}

	if cfg.OfficerName == "" {
		cfg.OfficerName = defaultOfficerName
		log.Printf("Warning: OFFICER_NAME is empty. Defaulting to %s.\n", cfg.OfficerName)
	}

	cfg.KnownBeneficiaries = splitNames(viper.GetString("KNOWN_BENEFICIARIES"))
	if len(cfg.KnownBeneficiaries) == 0 {
		log.Println("Warning: KNOWN_BENEFICIARIES is empty. Every beneficiary will be flagged as unknown.")
	}

	cfg.MonthlyCap = positiveDecimal("GENERAL_SUPPORT_MONTHLY_CAP", defaultMonthlyCap)
	cfg.ReviewThreshold = positiveDecimal("LARGE_PURCHASE_THRESHOLD", defaultReviewThreshold)

	aiTimeoutStr := viper.GetString("AI_TIMEOUT")
	aiTimeout, err := time.ParseDuration(aiTimeoutStr)
	if err != nil || aiTimeout <= 0 {
		aiTimeout = defaultAITimeout
		log.Printf("Warning: Invalid value for AI_TIMEOUT ('%s'). Defaulting to %s.\n", aiTimeoutStr, aiTimeout)
	}
	cfg.AITimeout = aiTimeout
	if cfg.AIAPIKey == "" {
		log.Println("Warning: AI_API_KEY not set. Free-text parsing will fail until it is configured.")
	}

	rateStr := viper.GetString("RATE_LIMIT")
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		log.Printf("Warning: Invalid value for RATE_LIMIT ('%s'). Defaulting to %s.\n", rateStr, defaultRateLimit)
		rate, _ = limiter.NewRateFromFormatted(defaultRateLimit)
	}
	cfg.RateLimit = rate

	cfg.ParseConcurrency = viper.GetInt("PARSE_CONCURRENCY")
	if cfg.ParseConcurrency <= 0 {
		log.Printf("Warning: Invalid value for PARSE_CONCURRENCY ('%d'). Defaulting to %d.\n", cfg.ParseConcurrency, defaultParseConcurrency)
		cfg.ParseConcurrency = defaultParseConcurrency
	}

	return cfg, nil
}

func splitNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func positiveDecimal(key, fallback string) decimal.Decimal {
	raw := viper.GetString(key)
	value, err := decimal.NewFromString(raw)
	if err != nil || !value.IsPositive() {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return decimal.RequireFromString(fallback)
	}
	return value
}
