package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	StorageBackendFile   = "file"
	StorageBackendSQLite = "sqlite"
	StorageBackendRedis  = "redis"
	StorageBackendMemory = "memory"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetStoragePath() string
	GetRedisURL() string
	GetRedisPrefix() string
}

type Storage struct{ v *viper.Viper }

var _ StorageConfig = Storage{}

func (s Storage) GetStorageBackend() string {
	return strings.ToLower(s.v.GetString(keyStorageBackend))
}

func (s Storage) GetStoragePath() string {
	return s.v.GetString(keyStoragePath)
}

func (s Storage) GetRedisURL() string {
	return s.v.GetString(keyRedisURL)
}

func (s Storage) GetRedisPrefix() string {
	return s.v.GetString(keyRedisPrefix)
}
