package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/services"
	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/jamm-labs/jamm/internal/smart"
	tu "github.com/jamm-labs/jamm/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			catalog := &tu.MockCatalog{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Catalog:    catalog,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("saveTokens", func(t *testing.T) {
		t.Run("saves tokens successfully", func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.toml")

			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = "test_id"
			config.Credentials.Spotify.ClientSecret = "test_secret"

			if err := shared.SaveConfig(configPath, config); err != nil {
				t.Fatalf("failed to create test config: %v", err)
			}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: configPath,
			})

			token := &oauth2.Token{
				AccessToken:  "new_access_token",
				RefreshToken: "new_refresh_token",
			}

			if err := runner.saveTokens(token); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loadedConfig, err := shared.LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}

			if loadedConfig.Credentials.Spotify.AccessToken != "new_access_token" {
				t.Errorf("expected access token to be updated, got %s", loadedConfig.Credentials.Spotify.AccessToken)
			}
			if loadedConfig.Credentials.Spotify.RefreshToken != "new_refresh_token" {
				t.Errorf("expected refresh token to be updated, got %s", loadedConfig.Credentials.Spotify.RefreshToken)
			}
		})

		t.Run("handles nil config error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/tmp/test.toml",
			})
			runner.config = nil

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})

			if err == nil {
				t.Fatal("expected error with nil config")
			}
			if !strings.Contains(err.Error(), "config is nil") {
				t.Errorf("expected nil config error, got %v", err)
			}
		})

		t.Run("handles empty configPath", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "",
			})

			token := &oauth2.Token{
				AccessToken:  "new_token",
				RefreshToken: "new_refresh",
			}

			if err := runner.saveTokens(token); err != nil {
				t.Fatalf("expected no error with empty path, got %v", err)
			}

			if config.Credentials.Spotify.AccessToken != "new_token" {
				t.Error("expected config to be updated in memory")
			}
		})

		t.Run("handles update error with empty token", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: shared.DefaultConfig(),
			})

			err := runner.saveTokens(nil)
			if err == nil {
				t.Fatal("expected error for nil token")
			}
			if !strings.Contains(err.Error(), "failed to update spotify configuration") {
				t.Errorf("expected update error, got %v", err)
			}
		})
	})
}

// parseRequestArgs runs requestFromFlags through a command invocation.
func parseRequestArgs(t *testing.T, args ...string) (smart.Request, error) {
	t.Helper()

	var req smart.Request
	var parseErr error

	flags := []cli.Flag{
		&cli.StringFlag{Name: "name"},
		&cli.StringFlag{Name: "description"},
		&cli.BoolFlag{Name: "public"},
		&cli.BoolFlag{Name: "collaborative"},
	}
	flags = append(flags, ruleFlags()...)

	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			req, parseErr = requestFromFlags(c)
			return nil
		},
	}

	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("command run failed: %v", err)
	}
	return req, parseErr
}

func TestRequestFromFlags(t *testing.T) {
	t.Run("parses rules", func(t *testing.T) {
		req, err := parseRequestArgs(t, "--rule", "artist:contains:tame", "--rule", "year:greaterThan:2010")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(req.Rules) != 2 {
			t.Fatalf("expected 2 rules, got %d", len(req.Rules))
		}
		if req.Rules[0].Field != smart.FieldArtist || req.Rules[0].Operator != smart.OpContains {
			t.Errorf("unexpected first rule: %v", req.Rules[0])
		}
		if req.Rules[0].Operand != "tame" {
			t.Errorf("expected operand 'tame', got %q", req.Rules[0].Operand)
		}
		if req.Rules[1].Field != smart.FieldYear || req.Rules[1].Operand != "2010" {
			t.Errorf("unexpected second rule: %v", req.Rules[1])
		}
	})

	t.Run("operand may contain colons", func(t *testing.T) {
		req, err := parseRequestArgs(t, "--rule", "song:equal:re:member")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.Rules[0].Operand != "re:member" {
			t.Errorf("expected operand 're:member', got %q", req.Rules[0].Operand)
		}
	})

	t.Run("rejects malformed rule", func(t *testing.T) {
		_, err := parseRequestArgs(t, "--rule", "artist-contains-tame")
		if err == nil {
			t.Fatal("expected error for malformed rule")
		}
	})

	t.Run("rejects unknown field", func(t *testing.T) {
		_, err := parseRequestArgs(t, "--rule", "genre:contains:rock")
		if err == nil {
			t.Fatal("expected error for unknown field")
		}
	})

	t.Run("rejects unknown operator", func(t *testing.T) {
		_, err := parseRequestArgs(t, "--rule", "artist:matches:tame")
		if err == nil {
			t.Fatal("expected error for unknown operator")
		}
	})

	t.Run("parses ordering", func(t *testing.T) {
		req, err := parseRequestArgs(t, "--order-by", "duration", "--descending")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !req.Order.Enabled() {
			t.Fatal("expected ordering to be enabled")
		}
		if req.Order.Field() != smart.OrderByDuration {
			t.Errorf("expected duration field, got %v", req.Order.Field())
		}
		if req.Order.Direction() != smart.Descending {
			t.Errorf("expected descending direction, got %v", req.Order.Direction())
		}
	})

	t.Run("rejects unknown order field", func(t *testing.T) {
		_, err := parseRequestArgs(t, "--order-by", "tempo")
		if err == nil {
			t.Fatal("expected error for unknown order field")
		}
	})

	t.Run("parses count limit", func(t *testing.T) {
		req, err := parseRequestArgs(t, "--limit-count", "30")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !req.Limit.Enabled() || req.Limit.Kind() != smart.LimitByCount || req.Limit.Value() != 30 {
			t.Errorf("unexpected limit: %v %v", req.Limit.Kind(), req.Limit.Value())
		}
	})

	t.Run("converts duration limit to milliseconds", func(t *testing.T) {
		req, err := parseRequestArgs(t, "--limit-minutes", "45")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.Limit.Kind() != smart.LimitByDuration || req.Limit.Value() != 45*60_000 {
			t.Errorf("unexpected limit: %v %v", req.Limit.Kind(), req.Limit.Value())
		}
	})

	t.Run("rejects both limits at once", func(t *testing.T) {
		_, err := parseRequestArgs(t, "--limit-count", "10", "--limit-minutes", "45")
		if err == nil {
			t.Fatal("expected error for conflicting limits")
		}
	})

	t.Run("defaults to disabled order and limit", func(t *testing.T) {
		req, err := parseRequestArgs(t)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.Order.Enabled() {
			t.Error("expected ordering disabled by default")
		}
		if req.Limit.Enabled() {
			t.Error("expected limit disabled by default")
		}
	})

	t.Run("carries playlist metadata", func(t *testing.T) {
		req, err := parseRequestArgs(t, "--name", "Driving", "--description", "road trip", "--public")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.Name != "Driving" || req.Description != "road trip" || !req.Public {
			t.Errorf("unexpected metadata: %+v", req)
		}
	})
}

func testRunnerConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Database.Path = ":memory:"
	return config
}

func commandTracks() []models.Track {
	return []models.Track{
		{ID: "1", URI: "spotify:track:1", Title: "Let It Happen", Artists: []string{"Tame Impala"}, Album: "Currents", ReleaseDate: "2015-07-17", DurationMS: 467586},
		{ID: "2", URI: "spotify:track:2", Title: "Breezeblocks", Artists: []string{"alt-J"}, Album: "An Awesome Wave", ReleaseDate: "2012-05-25", DurationMS: 227000},
		{ID: "3", URI: "spotify:track:3", Title: "Borderline", Artists: []string{"Tame Impala"}, Album: "The Slow Rush", ReleaseDate: "2020-02-14", DurationMS: 237000},
	}
}

func TestPreviewCommand(t *testing.T) {
	t.Run("prints matching tracks", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: &tu.MockCatalog{UserID: "user-1", Tracks: commandTracks()},
			Output:  output,
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := previewCommand(runner)
		err := cmd.Run(context.Background(), []string{"preview", "--rule", "artist:contains:tame"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Matched 2 tracks") {
			t.Errorf("expected match count in output, got %s", result)
		}
		if !strings.Contains(result, "Let It Happen") || !strings.Contains(result, "Borderline") {
			t.Errorf("expected matching titles in output, got %s", result)
		}
		if strings.Contains(result, "Breezeblocks") {
			t.Errorf("did not expect non-matching title in output, got %s", result)
		}
	})

	t.Run("reports empty result", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: &tu.MockCatalog{UserID: "user-1", Tracks: commandTracks()},
			Output:  output,
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := previewCommand(runner)
		err := cmd.Run(context.Background(), []string{"preview", "--rule", "artist:equal:nobody"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "No tracks matched") {
			t.Errorf("expected empty result message, got %s", output.String())
		}
	})

	t.Run("outputs JSON when requested", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: &tu.MockCatalog{UserID: "user-1", Tracks: commandTracks()},
			Output:  output,
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := previewCommand(runner)
		err := cmd.Run(context.Background(), []string{"preview", "--rule", "album:equal:Currents", "--json"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, `"spotify:track:1"`) {
			t.Errorf("expected track URI in JSON output, got %s", result)
		}
	})

	t.Run("fails without catalog", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config: testRunnerConfig(),
			Output: &bytes.Buffer{},
			Logger: shared.NewLogger(io.Discard),
		})

		cmd := previewCommand(runner)
		err := cmd.Run(context.Background(), []string{"preview"})
		if err == nil {
			t.Fatal("expected error without catalog")
		}
		if !strings.Contains(err.Error(), "service unavailable") {
			t.Errorf("expected service unavailable error, got %v", err)
		}
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: &tu.MockCatalog{UserID: "user-1"},
			Output:  &bytes.Buffer{},
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := previewCommand(runner)
		err := cmd.Run(context.Background(), []string{"preview", "--source", "radio"})
		if err == nil {
			t.Fatal("expected error for unknown source")
		}
	})
}

func TestCreateCommand(t *testing.T) {
	t.Run("creates playlist and adds tracks", func(t *testing.T) {
		output := &bytes.Buffer{}
		catalog := &tu.MockCatalog{UserID: "user-1", Tracks: commandTracks()}
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: catalog,
			Output:  output,
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := createCommand(runner)
		err := cmd.Run(context.Background(), []string{
			"create", "--name", "Tame Hits", "--rule", "artist:contains:tame", "--order-by", "song",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if catalog.Created == nil {
			t.Fatal("expected playlist to be created")
		}
		if catalog.Created.Name != "Tame Hits" {
			t.Errorf("expected playlist name 'Tame Hits', got %q", catalog.Created.Name)
		}
		if len(catalog.Added) != 2 {
			t.Fatalf("expected 2 track URIs added, got %d", len(catalog.Added))
		}
		// Ordered by song title: Borderline before Let It Happen.
		if catalog.Added[0] != "spotify:track:3" || catalog.Added[1] != "spotify:track:1" {
			t.Errorf("unexpected track order: %v", catalog.Added)
		}

		result := output.String()
		if !strings.Contains(result, "Created playlist") {
			t.Errorf("expected creation message, got %s", result)
		}
		if !strings.Contains(result, "mock-playlist") {
			t.Errorf("expected playlist ID in output, got %s", result)
		}
	})

	t.Run("creates nothing when no tracks match", func(t *testing.T) {
		output := &bytes.Buffer{}
		catalog := &tu.MockCatalog{UserID: "user-1", Tracks: commandTracks()}
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: catalog,
			Output:  output,
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := createCommand(runner)
		err := cmd.Run(context.Background(), []string{
			"create", "--name", "Empty", "--rule", "artist:equal:nobody",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if catalog.Created != nil {
			t.Error("expected no playlist to be created")
		}
		if !strings.Contains(output.String(), "no playlist was created") {
			t.Errorf("expected empty result message, got %s", output.String())
		}
	})

	t.Run("requires the name flag", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: &tu.MockCatalog{UserID: "user-1"},
			Output:  &bytes.Buffer{},
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := createCommand(runner)
		err := cmd.Run(context.Background(), []string{"create"})
		if err == nil {
			t.Fatal("expected error for missing name flag")
		}
	})
}

func TestPlaylistCommands(t *testing.T) {
	t.Run("list prints playlists", func(t *testing.T) {
		output := &bytes.Buffer{}
		catalog := &tu.MockCatalog{
			PlaylistItems: []models.Playlist{
				{ID: "pl-1", Name: "Morning", TrackCount: 12, Public: true},
				{ID: "pl-2", Name: "Focus", TrackCount: 40},
			},
		}
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: catalog,
			Output:  output,
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := findCommand(t, playlistCommand(runner), "list")
		if err := cmd.Run(context.Background(), []string{"list"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Morning") || !strings.Contains(result, "Focus") {
			t.Errorf("expected playlist names in output, got %s", result)
		}
	})

	t.Run("delete then restore", func(t *testing.T) {
		output := &bytes.Buffer{}
		catalog := &tu.MockCatalog{}
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: catalog,
			Output:  output,
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := playlistCommand(runner)
		deleteCmd := findCommand(t, cmd, "delete")
		if err := deleteCmd.Run(context.Background(), []string{"delete", "--id", "pl-9"}); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		restoreCmd := findCommand(t, cmd, "restore")
		if err := restoreCmd.Run(context.Background(), []string{"restore", "--id", "pl-9"}); err != nil {
			t.Fatalf("restore failed: %v", err)
		}

		if len(catalog.Deleted) != 1 || catalog.Deleted[0] != "pl-9" {
			t.Errorf("expected pl-9 deleted, got %v", catalog.Deleted)
		}
		if len(catalog.Restored) != 1 || catalog.Restored[0] != "pl-9" {
			t.Errorf("expected pl-9 restored, got %v", catalog.Restored)
		}
	})

	t.Run("export writes CSV files", func(t *testing.T) {
		tmpDir := t.TempDir()
		base := filepath.Join(tmpDir, "export")

		output := &bytes.Buffer{}
		catalog := &tu.MockCatalog{
			Tracks: commandTracks(),
			Detail: &models.PlaylistDetail{
				Playlist: models.Playlist{ID: "pl-1", Name: "Morning", TrackCount: 3},
			},
		}
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: catalog,
			Output:  output,
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := findCommand(t, playlistCommand(runner), "export")
		if err := cmd.Run(context.Background(), []string{"export", "--id", "pl-1", "--output", base}); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		tu.AssertFileExists(t, base+"_tracks.csv")
		data := tu.MustReadFile(t, base+"_tracks.csv")
		if !strings.Contains(string(data), "Let It Happen") {
			t.Errorf("expected track in CSV export, got %s", string(data))
		}
	})
}

func findCommand(t *testing.T, parent *cli.Command, name string) *cli.Command {
	t.Helper()
	for _, c := range parent.Commands {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("command %s not found", name)
	return nil
}

func TestHistoryCommand(t *testing.T) {
	t.Run("reports empty history", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: testRunnerConfig(),
			Output: output,
			Logger: shared.NewLogger(io.Discard),
		})

		cmd := historyCommand(runner)
		if err := cmd.Run(context.Background(), []string{"history"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "No generation runs") {
			t.Errorf("expected empty history message, got %s", output.String())
		}
	})
}

func TestProfileCommand(t *testing.T) {
	t.Run("prints profile and totals", func(t *testing.T) {
		output := &bytes.Buffer{}
		catalog := &tu.MockCatalog{
			Profile: &services.User{ID: "user-1", DisplayName: "Jamm Tester", Product: "premium"},
			Tracks:  commandTracks(),
			PlaylistItems: []models.Playlist{
				{ID: "pl-1", Name: "Morning"},
			},
			TopArtistItems: []models.Artist{
				{ID: "a1", Name: "Tame Impala"},
			},
		}
		runner := NewRunner(RunnerOpts{
			Config:  testRunnerConfig(),
			Catalog: catalog,
			Output:  output,
			Logger:  shared.NewLogger(io.Discard),
		})

		cmd := profileCommand(runner)
		if err := cmd.Run(context.Background(), []string{"profile"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Jamm Tester") {
			t.Errorf("expected display name in output, got %s", result)
		}
		if !strings.Contains(result, "Saved tracks: 3") {
			t.Errorf("expected track total in output, got %s", result)
		}
		if !strings.Contains(result, "Playlists: 1") {
			t.Errorf("expected playlist total in output, got %s", result)
		}
		if !strings.Contains(result, "Top artists") || !strings.Contains(result, "Tame Impala") {
			t.Errorf("expected top artists in output, got %s", result)
		}
	})
}
