package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/pkg/mealtime"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Mess     MessConfig
	Telegram TelegramConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration for the admin API
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// MessConfig holds mess operation configuration
type MessConfig struct {
	QRSecret   string
	Timezone   string
	CutoffTime string
	Meals      map[string]mealtime.Window
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken   string
	AdminTgIDs []int64
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Mess:     loadMessConfig(),
		Telegram: loadTelegramConfig(),
	}

	if config.IsProd() && config.Mess.QRSecret == "change-me" {
		return nil, fmt.Errorf("QR_SECRET must be set in production")
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "mess_management"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadMessConfig loads QR secret, timezone, cutoff and meal windows
func loadMessConfig() MessConfig {
	return MessConfig{
		QRSecret:   getEnv("QR_SECRET", "change-me"),
		Timezone:   getEnv("MESS_TIMEZONE", "Asia/Kolkata"),
		CutoffTime: getEnv("MESS_CUTOFF_TIME", "23:00"),
		Meals: map[string]mealtime.Window{
			string(domain.MealBreakfast): {
				Start: getEnv("MEAL_BREAKFAST_START", "07:00"),
				End:   getEnv("MEAL_BREAKFAST_END", "09:30"),
			},
			string(domain.MealLunch): {
				Start: getEnv("MEAL_LUNCH_START", "12:00"),
				End:   getEnv("MEAL_LUNCH_END", "14:30"),
			},
			string(domain.MealDinner): {
				Start: getEnv("MEAL_DINNER_START", "19:00"),
				End:   getEnv("MEAL_DINNER_END", "21:30"),
			},
		},
	}
}

// loadTelegramConfig loads bot token and admin chat IDs
func loadTelegramConfig() TelegramConfig {
	cfg := TelegramConfig{
		BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
	}

	// Comma-separated list of Telegram chat IDs that receive admin alerts
	for _, raw := range strings.Split(getEnv("ADMIN_TG_IDS", ""), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Printf("Warning: ignoring invalid ADMIN_TG_IDS entry '%s'", raw)
			continue
		}
		cfg.AdminTgIDs = append(cfg.AdminTgIDs, id)
	}

	return cfg
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" && c.IsDev() {
		return "*"
	}
	return origins
}

// MealSchedule builds the facility meal schedule from the mess config
func (c *Config) MealSchedule() (*mealtime.Schedule, error) {
	return mealtime.NewSchedule(c.Mess.Timezone, c.Mess.CutoffTime, c.Mess.Meals)
}
