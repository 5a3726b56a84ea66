package config

import (
	"path/filepath"
	"strings"
	"time"
)

type EnvVars struct {
	s settings
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := strings.TrimSpace(e.s.Port)
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.s.AppName
}

func (e EnvVars) GetEnv() string {
	if e.s.Env == "" {
		return "DEV"
	}
	return e.s.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.s.LogLevel
}

func (e EnvVars) GetLocale() string {
	return e.s.Locale
}

type API struct {
	s settings
}

var _ APIConfig = API{}

// GetAPIURL returns the collaborator base URL without a trailing slash
// (e.g. "http://localhost:8000/api/v1").
func (a API) GetAPIURL() string {
	return strings.TrimRight(a.s.APIURL, "/")
}

func (a API) GetHTTPTimeout() time.Duration {
	return a.s.HTTPTimeout
}

type Storage struct {
	s settings
}

var _ StorageConfig = Storage{}

func (st Storage) GetDataFolder() string {
	return st.s.DataFolder
}

func (st Storage) GetProfile() string {
	return st.s.Profile
}

func (st Storage) GetStorageQuota() int64 {
	return st.s.StorageQuota
}

// GetDatabasePath is the SQLite file backing local storage.
func (st Storage) GetDatabasePath() string {
	return filepath.Join(st.s.DataFolder, "storefront.db")
}
