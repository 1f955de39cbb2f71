package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Session SessionConfig
	Dataset DatasetConfig
}

type ServerConfig struct {
	Port string
}

type LLMConfig struct {
	APIKey     string
	ModelID    string
	MaxRetries uint64
}

type SessionConfig struct {
	MaxIterations           int
	MaxSessionTime          time.Duration
	MinValidationConfidence float64
	LoopDetection           bool
	AllowEmptyResults       bool
	TTL                     time.Duration // idle sessions older than this are expired
	ExpirySchedule          string        // cron spec (with seconds) for the expiry scan
}

type DatasetConfig struct {
	CompanyField  string
	CategoryField string
	CountryField  string
	ValueField    string
	DateField     string
	MaxDetailRows int // cap on raw rows returned for detail answers
}

func NewConfig() (*Config, error) {
	// Configure Viper to read .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// Enable automatic environment variable loading
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LLM_MODEL_ID", "gemini-1.5-flash-latest")
	viper.SetDefault("LLM_MAX_RETRIES", 3)
	viper.SetDefault("SESSION_MAX_ITERATIONS", 15)
	viper.SetDefault("SESSION_MAX_TIME", "30s")
	viper.SetDefault("SESSION_MIN_CONFIDENCE", 0.7)
	viper.SetDefault("SESSION_LOOP_DETECTION", true)
	viper.SetDefault("SESSION_ALLOW_EMPTY_RESULTS", true)
	viper.SetDefault("SESSION_TTL", "30m")
	viper.SetDefault("SESSION_EXPIRY_SCHEDULE", "0 */5 * * * *") // Every 5 minutes
	viper.SetDefault("DATASET_COMPANY_FIELD", "company")
	viper.SetDefault("DATASET_CATEGORY_FIELD", "category")
	viper.SetDefault("DATASET_COUNTRY_FIELD", "importCountry")
	viper.SetDefault("DATASET_VALUE_FIELD", "amount")
	viper.SetDefault("DATASET_DATE_FIELD", "date")
	viper.SetDefault("DATASET_MAX_DETAIL_ROWS", 50)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config
	config.Server.Port = viper.GetString("SERVER_PORT")

	// --- LLM ---
	config.LLM.APIKey = viper.GetString("API_KEY")
	config.LLM.ModelID = viper.GetString("LLM_MODEL_ID")
	config.LLM.MaxRetries = viper.GetUint64("LLM_MAX_RETRIES")

	// --- Session bounds ---
	config.Session.MaxIterations = viper.GetInt("SESSION_MAX_ITERATIONS")
	config.Session.MaxSessionTime = viper.GetDuration("SESSION_MAX_TIME")
	config.Session.MinValidationConfidence = viper.GetFloat64("SESSION_MIN_CONFIDENCE")
	config.Session.LoopDetection = viper.GetBool("SESSION_LOOP_DETECTION")
	config.Session.AllowEmptyResults = viper.GetBool("SESSION_ALLOW_EMPTY_RESULTS")
	config.Session.TTL = viper.GetDuration("SESSION_TTL")
	config.Session.ExpirySchedule = viper.GetString("SESSION_EXPIRY_SCHEDULE")

	// --- Dataset field designations ---
	config.Dataset.CompanyField = viper.GetString("DATASET_COMPANY_FIELD")
	config.Dataset.CategoryField = viper.GetString("DATASET_CATEGORY_FIELD")
	config.Dataset.CountryField = viper.GetString("DATASET_COUNTRY_FIELD")
	config.Dataset.ValueField = viper.GetString("DATASET_VALUE_FIELD")
	config.Dataset.DateField = viper.GetString("DATASET_DATE_FIELD")
	config.Dataset.MaxDetailRows = viper.GetInt("DATASET_MAX_DETAIL_ROWS")

	log.Info().Interface("config", config).Msg("Config loaded")
	return &config, nil
}
