package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	// DefaultEndpoint is the local Hasura GraphQL endpoint
	DefaultEndpoint = "http://localhost:8080/v1/graphql"
	// DefaultPort is the proxy server listen port
	DefaultPort = 4000
)

// DefaultCategories are the predefined animal categories
var DefaultCategories = []string{"cat", "dog", "elephant", "lion", "monkey"}

// GetDataDir returns the path to the data directory, creating it if needed
func GetDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dataDir := filepath.Join(homeDir, ".gifzoo")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "config.ini"), nil
}

// Default returns a config populated with default values
func Default() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			Endpoint: DefaultEndpoint,
		},
		Server: ServerConfig{
			Port: DefaultPort,
		},
		Browse: BrowseConfig{
			DefaultCategory: "cat",
			PageSize:        20,
			DebounceMillis:  300,
		},
		Game: GameConfig{
			Categories: append([]string(nil), DefaultCategories...),
		},
		Player: PlayerConfig{
			Player: "mpv",
		},
	}
}

// Load reads the configuration from the default INI file
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the configuration from path, writing a default file
// there first if none exists.
func LoadFrom(configPath string) (*Config, error) {
	cfg := Default()
	cfg.path = configPath

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := iniFile.MapTo(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration back to the file it came from, or to the
// default location for configs built in memory.
func Save(cfg *Config) error {
	configPath := cfg.path
	if configPath == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()
	if err := iniFile.ReflectFrom(cfg); err != nil {
		return fmt.Errorf("failed to reflect config: %w", err)
	}

	if err := iniFile.SaveTo(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	cfg.path = configPath
	return nil
}

// ApplyEnv overrides settings from the environment. getenv is usually
// os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("HASURA_GRAPHQL_ENDPOINT"); v != "" {
		cfg.Upstream.Endpoint = v
	}
	if v := getenv("HASURA_ADMIN_SECRET"); v != "" {
		cfg.Upstream.AdminSecret = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// normalize fills zero values left by a partial file
func (c *Config) normalize() {
	def := Default()
	if c.Upstream.Endpoint == "" {
		c.Upstream.Endpoint = def.Upstream.Endpoint
	}
	if c.Server.Port <= 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Browse.PageSize <= 0 {
		c.Browse.PageSize = def.Browse.PageSize
	}
	if c.Browse.DebounceMillis <= 0 {
		c.Browse.DebounceMillis = def.Browse.DebounceMillis
	}
	c.Browse.DefaultCategory = strings.ToLower(strings.TrimSpace(c.Browse.DefaultCategory))
	if c.Browse.DefaultCategory == "" {
		c.Browse.DefaultCategory = def.Browse.DefaultCategory
	}

	var cats []string
	for _, cat := range c.Game.Categories {
		if cat = strings.ToLower(strings.TrimSpace(cat)); cat != "" {
			cats = append(cats, cat)
		}
	}
	if len(cats) < 2 {
		cats = def.Game.Categories
	}
	c.Game.Categories = cats

	if c.Player.Player == "" {
		c.Player.Player = def.Player.Player
	}
}
