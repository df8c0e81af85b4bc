package configuration

import (
	"fmt"
	"os"
	"strconv"

	"social-calendar/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database    Database    `json:"database"`
	App         App         `json:"app"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	RedisClient RedisClient `json:"redisClient"`
	Logger      Logger      `json:"logger"`
	Publisher   Publisher   `json:"publisher"`
	Vault       Vault       `json:"vault"`
	Mail        Mail        `json:"mail"`
	OAuth       OAuth       `json:"oauth"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
	BaseURL     string `json:"baseURL"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID      string `json:"projectID"`
	PublishedTopic string `json:"publishedTopic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

type Logger struct {
	Format string `json:"format"`
}

// Publisher holds the sweep knobs for the publishing pipeline.
type Publisher struct {
	BatchSize         int    `json:"batchSize"`
	ExpiryWarningDays int    `json:"expiryWarningDays"`
	ReconnectBaseURL  string `json:"reconnectBaseURL"`
}

// Vault holds the token encryption key (hex, 32 bytes once decoded).
type Vault struct {
	Key string `json:"key"`
}

// Mail holds SMTP settings for token expiry warnings.
type Mail struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// OAuth holds per-provider OAuth client credentials used for refresh grants.
type OAuth struct {
	Facebook  OAuthClient `json:"facebook"`
	Instagram OAuthClient `json:"instagram"`
	LinkedIn  OAuthClient `json:"linkedin"`
	X         OAuthClient `json:"x"`
	TikTok    OAuthClient `json:"tiktok"`
}

type OAuthClient struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initPublisher(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}

	// Optional MSSQL config via environment variables (Azure SQL in production)
	if v := os.Getenv("MSSQL_DB_NAME"); v != "" && C.Database.Mssql.Name == "" {
		C.Database.Mssql.Name = v
	}
	if v := os.Getenv("MSSQL_HOST"); v != "" && C.Database.Mssql.Host == "" {
		C.Database.Mssql.Host = v
	}
	if v := os.Getenv("MSSQL_USER"); v != "" && C.Database.Mssql.User == "" {
		C.Database.Mssql.User = v
	}
	if v := os.Getenv("MSSQL_PASSWORD"); v != "" && C.Database.Mssql.Password == "" {
		C.Database.Mssql.Password = v
	}
	if C.Database.Mssql.Port == "" {
		if v := os.Getenv("MSSQL_PORT"); v != "" {
			C.Database.Mssql.Port = v
		} else {
			C.Database.Mssql.Port = "1433"
		}
	}
}

func initApp(C *Config) {
	// Prefer SECRET_KEY from environment for JWT verification
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initPublisher(C *Config) {
	if v := os.Getenv("VAULT_KEY"); v != "" {
		C.Vault.Key = v
	}
	if C.Publisher.BatchSize <= 0 {
		C.Publisher.BatchSize = 50
	}
	if C.Publisher.ExpiryWarningDays <= 0 {
		C.Publisher.ExpiryWarningDays = 7
	}
	if C.Publisher.ReconnectBaseURL == "" {
		C.Publisher.ReconnectBaseURL = C.App.BaseURL
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		C.Mail.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		C.Mail.Port = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		C.Mail.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		C.Mail.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		C.Mail.From = v
	}
}
