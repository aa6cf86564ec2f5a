package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server Server `yaml:"server"`

	Backend Backend `yaml:"backend"`

	Session Session `yaml:"session"`

	Screens Screens `yaml:"screens"`

	LoginRate LoginRate `yaml:"login_rate"`
}

type Server struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type Backend struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Session struct {
	Secret     string `yaml:"secret"`
	CookieName string `yaml:"cookie_name"`
	Secure     bool   `yaml:"secure"`
	Driver     string `yaml:"driver"` // memory, postgres or sqlite
	DSN        string `yaml:"dsn"`
}

type Screens struct {
	RefreshInterval           time.Duration `yaml:"refresh_interval"`
	TechnicianRefreshInterval time.Duration `yaml:"technician_refresh_interval"`
	StaleAfter                time.Duration `yaml:"stale_after"`
	// IdleAfter drops the screen state of sessions without requests; zero keeps it
	IdleAfter time.Duration `yaml:"idle_after"`
}

type LoginRate struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Default returns the settings used for anything the file leaves out
func Default() Config {
	return Config{
		Server: Server{
			Address:      ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Backend: Backend{
			Timeout: 15 * time.Second,
		},
		Session: Session{
			CookieName: "vf_session",
			Driver:     "memory",
		},
		Screens: Screens{
			RefreshInterval:           10 * time.Second,
			TechnicianRefreshInterval: 30 * time.Second,
			StaleAfter:                10 * time.Second,
			IdleAfter:                 2 * time.Hour,
		},
		LoginRate: LoginRate{
			Requests: 10,
			Window:   time.Minute,
		},
	}
}

// Load reads the YAML file at CONFIG_PATH (configs/development.yaml by
// default) and applies environment overrides. A missing file is not an
// error when CONFIG_PATH is unset.
func Load() (*Config, error) {
	configPath := "configs/development.yaml"
	explicit := false
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
		explicit = true
	}

	cfg := Default()

	f, err := os.Open(configPath)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Backend.URL = getEnv("BACKEND_URL", c.Backend.URL)
	c.Server.Address = getEnv("LISTEN_ADDRESS", c.Server.Address)
	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)
	c.Session.Driver = getEnv("SESSION_DRIVER", c.Session.Driver)
	c.Session.DSN = getEnv("SESSION_DSN", c.Session.DSN)
	if v := os.Getenv("SESSION_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Session.Secure = b
		}
	}
}

// Validate checks the settings the dashboard cannot start without. An empty
// backend URL is allowed; screens report it instead.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("session secret is required (session.secret or SESSION_SECRET)")
	}
	switch c.Session.Driver {
	case "memory":
	case "postgres", "sqlite":
		if c.Session.DSN == "" {
			return fmt.Errorf("session dsn is required for driver %s", c.Session.Driver)
		}
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}
	if c.Screens.RefreshInterval <= 0 || c.Screens.TechnicianRefreshInterval <= 0 {
		return errors.New("screen refresh intervals must be positive")
	}
	if c.LoginRate.Requests <= 0 || c.LoginRate.Window <= 0 {
		return errors.New("login rate requests and window must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
