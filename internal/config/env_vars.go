package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	keyEnv      = "env"
	keyAppName  = "app_name"
	keyLogLevel = "log_level"

	keyAPIURL     = "api.url"
	keyAPITimeout = "api.timeout"
	keyAssetsURL  = "assets.url"

	keyStorageBackend = "storage.backend"
	keyStoragePath    = "storage.path"
	keyRedisURL       = "storage.redis_url"
	keyRedisPrefix    = "storage.redis_prefix"

	keyRequireRecaptcha = "security.require_recaptcha"

	keyServerPort      = "server.port"
	keyJWTSecret       = "server.jwt_secret"
	keyTokenExpiry     = "server.token_expiry"
	keyTempTokenExpiry = "server.temp_token_expiry"

	keyAllowedOrigins = "server.allowed_origins"
)

type EnvVars struct{ v *viper.Viper }

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(keyAppName)
}

func (e EnvVars) GetEnv() string {
	env := e.v.GetString(keyEnv)
	if env == "" {
		return "DEV"
	}
	return strings.ToUpper(env)
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(keyLogLevel)
}

type APIConfig interface {
	GetAPIURL() string
	GetAPITimeout() time.Duration
	GetAssetsURL() string
}

type API struct{ v *viper.Viper }

var _ APIConfig = API{}

// GetAPIURL returns the REST API base URL (e.g., "https://api.example.com/api")
// without a trailing slash.
func (a API) GetAPIURL() string {
	return strings.TrimRight(a.v.GetString(keyAPIURL), "/")
}

func (a API) GetAPITimeout() time.Duration {
	return a.v.GetDuration(keyAPITimeout)
}

// GetAssetsURL returns the host that serves uploaded images. When unset it is
// the API URL with its /api suffix removed.
func (a API) GetAssetsURL() string {
	if assets := a.v.GetString(keyAssetsURL); assets != "" {
		return strings.TrimRight(assets, "/")
	}
	return strings.TrimSuffix(a.GetAPIURL(), "/api")
}

type SecurityConfig interface {
	GetRequireRecaptcha() bool
}

type Security struct{ v *viper.Viper }

var _ SecurityConfig = Security{}

func (s Security) GetRequireRecaptcha() bool {
	return s.v.GetBool(keyRequireRecaptcha)
}

type ServerConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetTokenExpiry() time.Duration
	GetTempTokenExpiry() time.Duration
}

type Server struct{ v *viper.Viper }

var _ ServerConfig = Server{}

func (s Server) GetPort() string {
	port := s.v.GetString(keyServerPort)
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (s Server) GetJWTSecret() string {
	return s.v.GetString(keyJWTSecret)
}

func (s Server) GetTokenExpiry() time.Duration {
	return s.v.GetDuration(keyTokenExpiry)
}

func (s Server) GetTempTokenExpiry() time.Duration {
	return s.v.GetDuration(keyTempTokenExpiry)
}
