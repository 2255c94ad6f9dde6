package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix      = "SPORTIFY"
	configDirName  = ".sportify"
	configFileName = "config"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	SecurityConfig
	ServerConfig
	CorsConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Security
	Server
	Cors
}

// New returns a configuration built from defaults and SPORTIFY_* environment
// variables only.
func New() Config {
	v := newViper()
	return fromViper(v)
}

// Load reads the configuration file at path, or ~/.sportify/config.yaml when
// path is empty. A missing default file is not an error.
func Load(path string) (Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, configDirName))
		}
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return fromViper(v), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) Config {
	return mainConfig{
		EnvVars:  EnvVars{v: v},
		API:      API{v: v},
		Storage:  Storage{v: v},
		Security: Security{v: v},
		Server:   Server{v: v},
		Cors:     Cors{v: v},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyEnv, "DEV")
	v.SetDefault(keyAppName, "Sportify")
	v.SetDefault(keyLogLevel, "info")

	v.SetDefault(keyAPIURL, "http://localhost:5000/api")
	v.SetDefault(keyAPITimeout, "30s")

	v.SetDefault(keyStorageBackend, StorageBackendFile)
	v.SetDefault(keyStoragePath, defaultStoragePath())
	v.SetDefault(keyRedisPrefix, "sportify")

	v.SetDefault(keyRequireRecaptcha, false)

	v.SetDefault(keyServerPort, "5000")
	v.SetDefault(keyJWTSecret, "sportify-dev-secret")
	v.SetDefault(keyTokenExpiry, "1h")
	v.SetDefault(keyTempTokenExpiry, "5m")

	v.SetDefault(keyAllowedOrigins, []string{"http://localhost:3000"})
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(configDirName, "session.json")
	}
	return filepath.Join(home, configDirName, "session.json")
}
