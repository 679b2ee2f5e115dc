package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./jamm.db" {
			t.Errorf("expected database path ./jamm.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Smart.PreviewLimit != 25 {
			t.Errorf("expected preview limit 25, got %d", config.Smart.PreviewLimit)
		}

		if config.Smart.PageSize != 50 {
			t.Errorf("expected page size 50, got %d", config.Smart.PageSize)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"

[smart]
preview_limit = 10
page_size = 20
rate_limit = 2.5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected custom database path, got %s", config.Database.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected port 8080, got %d", config.Server.Port)
		}
		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected test client ID, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Smart.RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %f", config.Smart.RateLimit)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "saved_id"
		config.Credentials.Spotify.AccessToken = "saved_token"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Credentials.Spotify.ClientID != "saved_id" {
			t.Errorf("expected client ID to survive round trip, got %s", loaded.Credentials.Spotify.ClientID)
		}
		if loaded.Credentials.Spotify.AccessToken != "saved_token" {
			t.Errorf("expected access token to survive round trip, got %s", loaded.Credentials.Spotify.AccessToken)
		}
	})
}

func TestSpotifyConfigTokens(t *testing.T) {
	t.Run("Update stores token fields", func(t *testing.T) {
		cfg := SpotifyConfig{}
		expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		token := &oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Expiry:       expiry,
		}

		if err := cfg.Update(token); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.AccessToken != "access" || cfg.RefreshToken != "refresh" {
			t.Errorf("unexpected stored tokens: %+v", cfg)
		}
		if cfg.TokenExpiry != expiry.Format(time.RFC3339) {
			t.Errorf("expected RFC3339 expiry, got %s", cfg.TokenExpiry)
		}
	})

	t.Run("Update keeps existing refresh token", func(t *testing.T) {
		cfg := SpotifyConfig{RefreshToken: "old_refresh"}

		if err := cfg.Update(&oauth2.Token{AccessToken: "new_access"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.RefreshToken != "old_refresh" {
			t.Errorf("expected refresh token preserved, got %s", cfg.RefreshToken)
		}
	})

	t.Run("Update rejects empty token", func(t *testing.T) {
		cfg := SpotifyConfig{}
		if err := cfg.Update(nil); err == nil {
			t.Error("expected error for nil token")
		}
		if err := cfg.Update(&oauth2.Token{}); err == nil {
			t.Error("expected error for empty access token")
		}
	})

	t.Run("Token omits empty fields", func(t *testing.T) {
		cfg := SpotifyConfig{AccessToken: "access"}
		credentials := cfg.Token()

		if credentials["access_token"] != "access" {
			t.Errorf("expected access token in map, got %v", credentials)
		}
		if _, ok := credentials["refresh_token"]; ok {
			t.Error("did not expect empty refresh token in map")
		}
	})

	t.Run("Token is empty when unauthenticated", func(t *testing.T) {
		if credentials := (SpotifyConfig{}).Token(); len(credentials) != 0 {
			t.Errorf("expected empty credentials map, got %v", credentials)
		}
	})
}
