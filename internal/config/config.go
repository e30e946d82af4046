package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	FCM    FCMConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port      int
	StaticDir string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FCMConfig struct {
	ServiceAccount ServiceAccount
	// Endpoint is the messages:send URL. Derived from the service account's
	// project unless FCM_ENDPOINT overrides it.
	Endpoint string
}

type LogConfig struct {
	Level string
}

// ServiceAccount is the credential blob the push provider issues. Field
// names follow the provider's JSON key file.
type ServiceAccount struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// Load reads configuration from the environment. The service account is
// required: the process cannot dispatch a single notification without it, so
// a missing or malformed credential is a startup failure, not a degraded
// mode.
func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 3001)
	viper.SetDefault("STATIC_DIR", "build")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("FCM_SERVICE_ACCOUNT_FILE", "serviceAccount.json")
	viper.SetDefault("LOG_LEVEL", "info")

	account, err := loadServiceAccount(
		viper.GetString("FCM_SERVICE_ACCOUNT_JSON"),
		viper.GetString("FCM_SERVICE_ACCOUNT_FILE"),
	)
	if err != nil {
		return nil, err
	}

	endpoint := viper.GetString("FCM_ENDPOINT")
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", account.ProjectID)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetInt("SERVER_PORT"),
			StaticDir: viper.GetString("STATIC_DIR"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		FCM: FCMConfig{
			ServiceAccount: account,
			Endpoint:       endpoint,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}

func loadServiceAccount(envJSON, fallbackPath string) (ServiceAccount, error) {
	raw := []byte(envJSON)
	if envJSON == "" {
		data, err := os.ReadFile(fallbackPath)
		if err != nil {
			return ServiceAccount{}, fmt.Errorf("service account not found: set FCM_SERVICE_ACCOUNT_JSON or provide %s: %w", fallbackPath, err)
		}
		raw = data
	}

	var account ServiceAccount
	if err := json.Unmarshal(raw, &account); err != nil {
		return ServiceAccount{}, fmt.Errorf("parsing service account JSON: %w", err)
	}

	if account.ClientEmail == "" || account.PrivateKey == "" || account.TokenURI == "" {
		return ServiceAccount{}, fmt.Errorf("service account JSON is missing client_email, private_key or token_uri")
	}

	return account, nil
}
