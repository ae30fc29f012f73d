package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Settings is the process configuration, read from the environment (and a
// .env file loaded beforehand by godotenv).
type Settings struct {
	ServerPort         string
	GinMode            string
	Environment        string
	LogLevel           string
	JWTSecret          string
	AppBaseURL         string
	UploadPath         string
	CORSAllowedOrigins []string

	Database DatabaseSettings
	Mail     MailSettings
	Kafka    KafkaSettings
}

type DatabaseSettings struct {
	Driver   string // mysql|postgres
	Host     string
	Port     string
	Name     string
	Username string
	Password string
	DebugSQL bool
}

type MailSettings struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string // e.g. "Deal Desk <no-reply@your.org>"
	SkipTLSVerify bool
}

type KafkaSettings struct {
	Brokers []string
	Topic   string
}

// Load reads Settings with viper. JWT_SECRET is mandatory.
func Load() (*Settings, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("UPLOAD_PATH", "./uploads")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("KAFKA_TOPIC", "deal-workflow-events")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	s := &Settings{
		ServerPort:         v.GetString("SERVER_PORT"),
		GinMode:            v.GetString("GIN_MODE"),
		Environment:        strings.ToLower(v.GetString("ENVIRONMENT")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		AppBaseURL:         v.GetString("APP_BASE_URL"),
		UploadPath:         v.GetString("UPLOAD_PATH"),
		CORSAllowedOrigins: splitCSV(v.GetString("CORS_ALLOWED_ORIGINS")),
		Database: DatabaseSettings{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_DATABASE"),
			Username: v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			DebugSQL: v.GetBool("DEBUG_SQL"),
		},
		Mail: MailSettings{
			Host:          v.GetString("SMTP_HOST"),
			Port:          v.GetInt("SMTP_PORT"),
			User:          v.GetString("SMTP_USER"),
			Pass:          v.GetString("SMTP_PASS"),
			From:          v.GetString("SMTP_FROM"),
			SkipTLSVerify: v.GetString("SMTP_SKIP_TLS_VERIFY") == "1" || v.GetBool("SMTP_SKIP_TLS_VERIFY"),
		},
		Kafka: KafkaSettings{
			Brokers: splitCSV(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}

	if s.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if s.Database.Driver != "mysql" && s.Database.Driver != "postgres" {
		return nil, errors.New("DB_DRIVER must be mysql or postgres")
	}
	return s, nil
}

// IsProduction reports whether ENVIRONMENT=production.
func (s *Settings) IsProduction() bool {
	return s.Environment == "production"
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
