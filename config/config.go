package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. RECRUIT_SERVER_PORT.
const EnvPrefix = "RECRUIT"

var (
	mu      sync.RWMutex
	current *Config
)

// Config represents the configuration implementation.
type Config struct {
	AppName    string
	RunMode    string
	Protocol   string
	Domain     string
	Host       string
	Port       int
	Observes   *Observes
	Logger     *Logger
	Data       *Data
	Auth       *Auth
	Email      *Email
	Payment    *Payment
	Invitation *Invitation
	Task       *Task
	RateLimit  *RateLimit
	Viper      *viper.Viper
	path       string
}

// LoadConfig loads the configuration from the file. An empty path searches
// the conventional locations for config.yaml. A .env file in the working
// directory, if present, is loaded into the environment first.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/recruit")
		v.AddConfigPath("$HOME/.recruit")
		v.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := fromViper(v)
	cfg.path = configPath

	mu.Lock()
	current = cfg
	mu.Unlock()
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppName:    getStringOrDefault(v, "app_name", "recruit"),
		RunMode:    getStringOrDefault(v, "run_mode", "debug"),
		Protocol:   getStringOrDefault(v, "server.protocol", "http"),
		Domain:     v.GetString("server.domain"),
		Host:       getStringOrDefault(v, "server.host", "0.0.0.0"),
		Port:       getIntOrDefault(v, "server.port", 8080),
		Observes:   getObservesConfig(v),
		Logger:     getLoggerConfig(v),
		Data:       getDataConfig(v),
		Auth:       getAuth(v),
		Email:      getEmailConfig(v),
		Payment:    getPaymentConfig(v),
		Invitation: getInvitationConfig(v),
		Task:       getTaskConfig(v),
		RateLimit:  getRateLimitConfig(v),
		Viper:      v,
	}
}

// GetConfig returns the most recently loaded configuration.
func GetConfig() (*Config, error) {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return nil, errors.New("config not loaded")
	}
	return current, nil
}

// IsProd reports whether the service runs in release mode.
func (c *Config) IsProd() bool {
	return c.RunMode == "release"
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Watch watches the configuration file and invokes callback with the
// re-read configuration on every change.
func (c *Config) Watch(callback func(*Config)) {
	c.Viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next := fromViper(c.Viper)
		next.path = c.path

		mu.Lock()
		current = next
		mu.Unlock()
		callback(next)
	})
	c.Viper.WatchConfig()
}
