package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytpl/internal/shared"
)

// SetupConfig creates a config file from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("✓ Created %s\n", path)
	return r.writePlain("Edit it to add your OAuth credentials, then run `ytpl auth login`.\n")
}

// SetupDatabase initializes the cache database and applies migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := shared.LoadConfig(cmd.String("config"))
	if err != nil {
		r.logger.Warn("config not found, using defaults", "error", err)
		config = shared.DefaultConfig()
	}

	path := shared.ExpandPath(config.Database.Path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.logger.Info("database ready", "path", path)
	return r.writePlain("✓ Database initialized at %s\n", path)
}

// SetupExtractor parses a "Copy as cURL" capture and stores the browser
// headers where the extractor client reads them.
func (r *Runner) SetupExtractor(ctx context.Context, cmd *cli.Command) error {
	curlFile := cmd.String("curl-file")
	if curlFile == "" {
		return fmt.Errorf("--curl-file is required: in your browser, copy a request to the site as cURL and save it to a file")
	}

	headers, err := shared.ParseCurlFile(curlFile)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		output = shared.ExpandPath("~/.ytpl/headers.sh")
	}

	// Stored verbatim: ExtractorService.LoadHeaders re-parses the capture.
	capture, err := os.ReadFile(curlFile)
	if err != nil {
		return fmt.Errorf("failed to read curl file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create headers directory: %w", err)
	}
	if err := os.WriteFile(output, capture, 0600); err != nil {
		return fmt.Errorf("failed to write headers file: %w", err)
	}

	r.logger.Debug("parsed capture", "headers", headers.ToHeadersRaw())

	r.writePlain("✓ Saved %d header(s) to %s\n", len(headers.Headers), output)
	return r.writePlain("Set credentials.extractor.headers_path = %q in your config file.\n", output)
}
