package config

// Config represents the complete application configuration
type Config struct {
	Upstream UpstreamConfig `ini:"upstream"`
	Server   ServerConfig   `ini:"server"`
	Browse   BrowseConfig   `ini:"browse"`
	Game     GameConfig     `ini:"game"`
	Player   PlayerConfig   `ini:"player"`
	Discord  DiscordConfig  `ini:"discord"`

	path string `ini:"-"`
}

// Path returns the file the config was loaded from, if any
func (c *Config) Path() string {
	return c.path
}

// UpstreamConfig points at the Hasura GraphQL endpoint
type UpstreamConfig struct {
	Endpoint    string `ini:"endpoint"`
	AdminSecret string `ini:"admin_secret"`
}

// ServerConfig contains settings for the proxy server
type ServerConfig struct {
	Port int `ini:"port"`
}

// BrowseConfig contains GIF browser settings
type BrowseConfig struct {
	DefaultCategory string `ini:"default_category"`
	PageSize        int    `ini:"page_size"`
	DebounceMillis  int    `ini:"debounce_ms"`
}

// GameConfig contains odd-one-out settings
type GameConfig struct {
	Categories []string `ini:"categories" delim:","`
}

// PlayerConfig selects the external GIF viewer
type PlayerConfig struct {
	Player          string `ini:"player"`
	PlayerArguments string `ini:"player_arguments"`
}

// DiscordConfig contains Discord presence settings
type DiscordConfig struct {
	DiscordPresence bool `ini:"discord_presence"`
}
