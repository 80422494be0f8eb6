package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytpl/internal/journal"
	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/shared"
	tu "github.com/desertthunder/ytpl/internal/testing"
)

// newCommandRunner builds a Runner wired with mocks and a journal in a temp
// directory, enough for the engine to come up.
func newCommandRunner(t *testing.T) (*Runner, *tu.MockPlaylistAPI, *tu.MockMetadataSource, *bytes.Buffer) {
	t.Helper()

	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.json"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	api := tu.NewMockPlaylistAPI()
	source := tu.NewMockMetadataSource()
	output := &bytes.Buffer{}

	runner := NewRunner(RunnerOpts{
		API:    api,
		Source: source,
		Store:  store,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})
	return runner, api, source, output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies builds the engine", func(t *testing.T) {
			runner, _, _, _ := newCommandRunner(t)

			if runner.engine == nil {
				t.Error("expected engine to be constructed")
			}
			if runner.requireEngine() != nil {
				t.Error("expected requireEngine to pass")
			}
		})

		t.Run("without a journal store leaves the engine nil", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				API:    tu.NewMockPlaylistAPI(),
				Source: tu.NewMockMetadataSource(),
			})

			if runner.engine != nil {
				t.Error("expected engine to be nil without a journal store")
			}
			if err := runner.requireEngine(); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("err = %v, want ErrServiceUnavailable", err)
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.config.Batch.MatchThreshold != 0.75 {
				t.Errorf("MatchThreshold = %v", runner.config.Batch.MatchThreshold)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
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

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 12 {
			t.Errorf("registered %d commands, want 12", len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestCopyCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("dry run prints the plan without writing", func(t *testing.T) {
		runner, api, source, output := newCommandRunner(t)
		source.Playlists["PL1"] = &models.Playlist{
			ID:    "PL1",
			Title: "Road Trip",
			Videos: []models.Video{
				{ID: "v1", Position: 0},
				{ID: "v2", Position: 1},
			},
		}

		err := copyCommand(runner).Run(ctx, []string{"copy", "--source", "PL1", "--dry-run"})
		if err != nil {
			t.Fatalf("copy failed: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "no match, will be created") {
			t.Errorf("expected match verdict, got %s", result)
		}
		if !strings.Contains(result, "Dry run: nothing written.") {
			t.Errorf("expected dry run notice, got %s", result)
		}
		if len(api.Playlists) != 0 {
			t.Errorf("dry run created %d playlists", len(api.Playlists))
		}
	})

	t.Run("creates the playlist on the channel", func(t *testing.T) {
		runner, api, source, output := newCommandRunner(t)
		source.Playlists["PL1"] = &models.Playlist{
			ID:     "PL1",
			Title:  "Road Trip",
			Videos: []models.Video{{ID: "v1", Position: 0}},
		}

		err := copyCommand(runner).Run(ctx, []string{"copy", "--source", "PL1"})
		if err != nil {
			t.Fatalf("copy failed: %v", err)
		}

		if !strings.Contains(output.String(), "✓ Created") {
			t.Errorf("expected creation notice, got %s", output.String())
		}
		if len(api.Playlists) != 1 {
			t.Errorf("created %d playlists, want 1", len(api.Playlists))
		}
	})

	t.Run("renames the copy when --title is given", func(t *testing.T) {
		runner, api, source, _ := newCommandRunner(t)
		source.Playlists["PL1"] = &models.Playlist{
			ID:     "PL1",
			Title:  "Road Trip",
			Videos: []models.Video{{ID: "v1", Position: 0}},
		}

		err := copyCommand(runner).Run(ctx, []string{"copy", "--source", "PL1", "--title", "Vacation"})
		if err != nil {
			t.Fatalf("copy failed: %v", err)
		}

		for _, playlist := range api.Playlists {
			if playlist.Title != "Vacation" {
				t.Errorf("Title = %q, want Vacation", playlist.Title)
			}
		}
	})
}

func TestMatchCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("reports an exact match", func(t *testing.T) {
		runner, api, source, output := newCommandRunner(t)
		videos := []models.Video{{ID: "v1", Position: 0}, {ID: "v2", Position: 1}}
		source.Playlists["PL1"] = &models.Playlist{ID: "PL1", Title: "Mix", Videos: videos}
		api.AddPlaylist(&models.Playlist{ID: "T1", Title: "Mix", Videos: videos})

		err := matchCommand(runner).Run(ctx, []string{"match", "--source", "PL1"})
		if err != nil {
			t.Fatalf("match failed: %v", err)
		}

		if !strings.Contains(output.String(), "exact match") {
			t.Errorf("expected exact match verdict, got %s", output.String())
		}
	})

	t.Run("emits JSON with --json", func(t *testing.T) {
		runner, _, source, output := newCommandRunner(t)
		source.Playlists["PL1"] = &models.Playlist{
			ID:     "PL1",
			Title:  "Mix",
			Videos: []models.Video{{ID: "v1", Position: 0}},
		}

		err := matchCommand(runner).Run(ctx, []string{"match", "--source", "PL1", "--json"})
		if err != nil {
			t.Fatalf("match failed: %v", err)
		}

		if !strings.Contains(output.String(), `"match_type"`) {
			t.Errorf("expected JSON output, got %s", output.String())
		}
	})

	t.Run("requires a channel or source", func(t *testing.T) {
		runner, _, _, _ := newCommandRunner(t)

		err := matchCommand(runner).Run(ctx, []string{"match"})
		if err == nil {
			t.Fatal("expected error without --channel or --source")
		}
	})
}

func TestBatchCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("status with no journal", func(t *testing.T) {
		runner, _, _, output := newCommandRunner(t)

		err := batchCommand(runner).Run(ctx, []string{"batch", "status"})
		if err != nil {
			t.Fatalf("batch status failed: %v", err)
		}
		if !strings.Contains(output.String(), "No batch in progress.") {
			t.Errorf("got %s", output.String())
		}
	})

	t.Run("clear with no journal", func(t *testing.T) {
		runner, _, _, output := newCommandRunner(t)

		err := batchCommand(runner).Run(ctx, []string{"batch", "clear"})
		if err != nil {
			t.Fatalf("batch clear failed: %v", err)
		}
		if !strings.Contains(output.String(), "No batch in progress.") {
			t.Errorf("got %s", output.String())
		}
	})

	t.Run("status without a store", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runner.BatchStatus(ctx, batchCommand(runner))
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("err = %v, want ErrServiceUnavailable", err)
		}
	})
}

func TestCacheCommandsWithoutDatabase(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

	for _, run := range []func(context.Context, *cli.Command) error{
		runner.CacheList, runner.CacheExport, runner.CacheClear,
	} {
		if err := run(ctx, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("err = %v, want ErrServiceUnavailable", err)
		}
	}
}

func TestAuthStatusNotLoggedIn(t *testing.T) {
	config := shared.DefaultConfig()
	config.Credentials.YouTube.TokenPath = filepath.Join(t.TempDir(), "token.json")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(io.Discard)})

	err := authCommand(runner).Run(context.Background(), []string{"auth", "status"})
	if err != nil {
		t.Fatalf("auth status failed: %v", err)
	}
	if !strings.Contains(output.String(), "Not logged in.") {
		t.Errorf("got %s", output.String())
	}
}

func TestSetupConfigCreatesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config.toml")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

	err := setupCommand(runner).Run(ctx, []string{"setup", "config", "--config", path})
	if err != nil {
		t.Fatalf("setup config failed: %v", err)
	}
	tu.AssertFileExists(t, path)

	if err := setupCommand(runner).Run(ctx, []string{"setup", "config", "--config", path}); err == nil {
		t.Error("expected error when config already exists")
	}
}
