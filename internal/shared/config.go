package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Smart       SmartConfig       `toml:"smart"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and the tokens
// obtained from the OAuth2 flow.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
	TokenExpiry  string `toml:"token_expiry,omitempty"`
}

// Update stores an OAuth2 token's fields for persistence.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty OAuth token", ErrInvalidCredentials)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		s.TokenExpiry = token.Expiry.Format(time.RFC3339)
	}
	return nil
}

// Token returns the stored tokens as a credentials map for
// [services.Catalog] authentication. Empty fields are omitted.
func (s SpotifyConfig) Token() map[string]string {
	credentials := map[string]string{}
	if s.AccessToken != "" {
		credentials["access_token"] = s.AccessToken
	}
	if s.RefreshToken != "" {
		credentials["refresh_token"] = s.RefreshToken
	}
	if s.TokenExpiry != "" {
		credentials["expiry"] = s.TokenExpiry
	}
	return credentials
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SmartConfig contains smart playlist generation settings.
type SmartConfig struct {
	PreviewLimit   int     `toml:"preview_limit"`    // Maximum tracks in a preview sample
	PageSize       int     `toml:"page_size"`        // Tracks requested per catalog page
	RateLimit      float64 `toml:"rate_limit"`       // Catalog requests per second
	ProbeWorkers   int     `toml:"probe_workers"`    // Concurrent image dimension probes
	MinArtPixels   int     `toml:"min_art_pixels"`   // Minimum pixels per side for album art selection
	DefaultArtPath string  `toml:"default_art_path"` // Fallback art path when no image qualifies
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// SaveConfig writes a Config back to a TOML file, preserving tokens
// obtained through the OAuth flow.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnv overlays Spotify credentials from the environment,
// loading a .env file first when one is present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
}
