package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBDriver  string
	JWTKey    string
	SaltRound int

	// Payment gateway (Razorpay-compatible REST API)
	GatewayApiURL    string
	GatewayKeyID     string
	GatewayKeySecret string
	Currency         string

	SendGridApiKey string
	EmailSender    string

	// User id of the platform account that receives the admin revenue share
	PlatformAdminID uint

	StorageDir     string
	StorageBaseURL string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		DBDriver:  getEnv("DB_DRIVER", "postgres"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		GatewayApiURL:    getEnv("GATEWAY_API_URL", "https://api.razorpay.com/v1"),
		GatewayKeyID:     getEnv("GATEWAY_KEY_ID", ""),
		GatewayKeySecret: getEnv("GATEWAY_KEY_SECRET", ""),
		Currency:         getEnv("CURRENCY", "INR"),

		SendGridApiKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@lms.local"),

		PlatformAdminID: uint(getEnvInt("PLATFORM_ADMIN_ID", 1)),

		StorageDir:     getEnv("STORAGE_DIR", "./public/uploads"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:3000/uploads"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.GatewayKeyID == "" {
		log.Println("Warning: GATEWAY_KEY_ID not set. Gateway checkout will fail until configured.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
