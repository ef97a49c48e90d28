package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ErrMissingOAuthSecrets is returned when no OAuth client credentials can be
// found in any of the supported locations. The app must not start without them.
var ErrMissingOAuthSecrets = errors.New("missing OAuth client secrets: set GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET, OAUTH_SECRET_FILE, or provide client_secrets.json")

const localSecretsFile = "client_secrets.json"

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	OAuth OAuthConfig
}

type AppConfig struct {
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host string
	Port string
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional, plain environment variables are enough
		if !isConfigNotFound(err) {
			return nil, err
		}
	}

	var cfg Config
	cfg.App.Port = viper.GetString("APP_PORT")
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	cfg.DB.Host = viper.GetString("DB_HOST")
	cfg.DB.Port = viper.GetString("DB_PORT")
	cfg.DB.User = viper.GetString("DB_USER")
	cfg.DB.Password = viper.GetString("DB_PASSWORD")
	cfg.DB.Name = viper.GetString("DB_NAME")
	cfg.Redis.Host = viper.GetString("REDIS_HOST")
	cfg.Redis.Port = viper.GetString("REDIS_PORT")

	oauth, err := loadOAuthConfig()
	if err != nil {
		return nil, err
	}
	cfg.OAuth = *oauth

	return &cfg, nil
}

func isConfigNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || os.IsNotExist(err)
}

// loadOAuthConfig resolves the OAuth client credentials, in preference order:
// environment variables, then the secret file mounted by the secret manager
// (OAUTH_SECRET_FILE), then a local client_secrets.json. Finding none of the
// three is a fatal configuration error.
func loadOAuthConfig() (*OAuthConfig, error) {
	redirectURL := viper.GetString("REDIRECT_URI")
	if redirectURL == "" {
		redirectURL = "http://localhost:8080/auth/callback"
	}

	clientID := viper.GetString("GOOGLE_CLIENT_ID")
	clientSecret := viper.GetString("GOOGLE_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		return &OAuthConfig{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
		}, nil
	}

	if path := viper.GetString("OAUTH_SECRET_FILE"); path != "" {
		return readSecretsFile(path, redirectURL)
	}

	if _, err := os.Stat(localSecretsFile); err == nil {
		return readSecretsFile(localSecretsFile, redirectURL)
	}

	return nil, ErrMissingOAuthSecrets
}

// clientSecretsJSON mirrors the "web" section of the client_secrets.json
// file downloaded from the Google Cloud Console.
type clientSecretsJSON struct {
	Web struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"web"`
}

func readSecretsFile(path, redirectURL string) (*OAuthConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OAuth secrets file %s: %w", path, err)
	}

	var secrets clientSecretsJSON
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("failed to parse OAuth secrets file %s: %w", path, err)
	}

	if secrets.Web.ClientID == "" || secrets.Web.ClientSecret == "" {
		return nil, ErrMissingOAuthSecrets
	}

	return &OAuthConfig{
		ClientID:     secrets.Web.ClientID,
		ClientSecret: secrets.Web.ClientSecret,
		RedirectURL:  redirectURL,
	}, nil
}
