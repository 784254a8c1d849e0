package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	RefetchEvery   time.Duration
	PageSize       int
	TokenPath      string
	LogPath        string
}

var cfg AppConfig

func newViper(path string) *viper.Viper {
	defaultTokenDir := filepath.Join(os.TempDir(), "yoforex-admin")
	defaultToken := filepath.Join(defaultTokenDir, "session.token")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// defaults
	v.SetDefault("console.api_base_url", "http://127.0.0.1:5000")
	v.SetDefault("console.request_timeout", "15s")
	v.SetDefault("console.refetch_every", "30s")
	v.SetDefault("console.page_size", 20)
	v.SetDefault("console.token_path", defaultToken)
	v.SetDefault("console.log_path", "")
	return v
}

// Init loads config/config.yaml (or an explicit path) with defaults for
// every key, so the console runs without any file present.
func Init(path string) AppConfig {
	if path == "" {
		path = filepath.Join("config", "config.yaml")
	}
	v := newViper(path)
	_ = v.ReadInConfig()

	cfg = fromViper(v)
	return cfg
}

func fromViper(v *viper.Viper) AppConfig {
	return AppConfig{
		APIBaseURL:     v.GetString("console.api_base_url"),
		RequestTimeout: v.GetDuration("console.request_timeout"),
		RefetchEvery:   v.GetDuration("console.refetch_every"),
		PageSize:       v.GetInt("console.page_size"),
		TokenPath:      v.GetString("console.token_path"),
		LogPath:        v.GetString("console.log_path"),
	}
}

func Get() AppConfig { return cfg }
