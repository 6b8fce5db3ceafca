package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	PublicBaseURL     string `mapstructure:"PUBLIC_BASE_URL"`
	AdminAPIKey       string `mapstructure:"ADMIN_API_KEY"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisAudioDB   int    `mapstructure:"REDIS_AUDIO_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Call engine.
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	CatalogTTL     time.Duration `mapstructure:"CATALOG_TTL"`
	AudioCacheSize int           `mapstructure:"AUDIO_CACHE_SIZE"`
	AudioCacheTTL  time.Duration `mapstructure:"AUDIO_CACHE_TTL"`
	MaxRetries     int           `mapstructure:"MAX_RETRIES"`
	HangupDelay    time.Duration `mapstructure:"HANGUP_DELAY"`
	DictionaryPath string        `mapstructure:"DICTIONARY_PATH"`

	// Twilio.
	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`

	// Google speech-to-text.
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	STTLanguage              string `mapstructure:"STT_LANGUAGE"`

	// Cartesia text-to-speech.
	CartesiaAPIKey string `mapstructure:"CARTESIA_API_KEY"`
	TTSVoiceID     string `mapstructure:"TTS_VOICE_ID"`

	// Optional push notifications to business owners.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("PUBLIC_BASE_URL", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "phonedesk")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_AUDIO_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("SESSION_TTL", "2h")
	viper.SetDefault("CATALOG_TTL", "5m")
	viper.SetDefault("AUDIO_CACHE_SIZE", 512)
	viper.SetDefault("AUDIO_CACHE_TTL", "24h")
	viper.SetDefault("MAX_RETRIES", 2)
	viper.SetDefault("HANGUP_DELAY", "4s")
	viper.SetDefault("DICTIONARY_PATH", "")
	viper.SetDefault("STT_LANGUAGE", "nl-NL")
	viper.SetDefault("TTS_VOICE_ID", "")

	for _, key := range []string{
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "GOOGLE_SERVICE_ACCOUNT_FILE",
		"CARTESIA_API_KEY", "FIREBASE_CREDENTIALS_FILE", "ADMIN_API_KEY",
	} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// Validate reports missing credentials the engine cannot run without.
func (c Config) Validate() error {
	var missing []string
	required := map[string]string{
		"TWILIO_ACCOUNT_SID":          c.TwilioAccountSID,
		"TWILIO_AUTH_TOKEN":           c.TwilioAuthToken,
		"GOOGLE_SERVICE_ACCOUNT_FILE": c.GoogleServiceAccountFile,
		"CARTESIA_API_KEY":            c.CartesiaAPIKey,
		"TTS_VOICE_ID":                c.TTSVoiceID,
		"PUBLIC_BASE_URL":             c.PublicBaseURL,
	}
	for _, key := range []string{
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "GOOGLE_SERVICE_ACCOUNT_FILE",
		"CARTESIA_API_KEY", "TTS_VOICE_ID", "PUBLIC_BASE_URL",
	} {
		if strings.TrimSpace(required[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
