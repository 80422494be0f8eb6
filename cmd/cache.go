package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytpl/internal/formatter"
	"github.com/desertthunder/ytpl/internal/shared"
)

// CacheList prints every cached playlist snapshot with its age.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: cache database is not configured", shared.ErrServiceUnavailable)
	}

	entries, err := r.cache.List()
	if err != nil {
		return fmt.Errorf("failed to list cache: %w", err)
	}
	if len(entries) == 0 {
		return r.writePlain("Cache is empty.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Cached playlists (%d)", len(entries)))
	for _, entry := range entries {
		age := entry.Age().Round(time.Second)
		r.writePlain("%s  %-40s  %d videos  fetched %s ago\n",
			entry.PlaylistID, entry.Title, entry.VideoCount, age)
	}
	return nil
}

// CacheExport writes a cached playlist to stdout or a file in the requested
// format.
func (r *Runner) CacheExport(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: cache database is not configured", shared.ErrServiceUnavailable)
	}

	id := cmd.String("id")
	playlist, ok, err := r.cache.Get(id, 0)
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	if !ok {
		return fmt.Errorf("playlist %s is not cached, run `ytpl sync` or `ytpl cache list` first", id)
	}

	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(playlist, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %s to %s and %s\n", id, result.VideosFile, result.MetadataFile)
	case "markdown":
		rendered, err := formatter.ExportToMarkdown(playlist)
		if err != nil {
			return err
		}
		return r.exportRendered(id, output, rendered)
	case "json":
		rendered, err := formatter.ToMetadataJSON(playlist)
		if err != nil {
			return err
		}
		return r.exportRendered(id, output, rendered)
	case "text":
		if output == "" {
			rendered, err := formatter.ExportToText(playlist)
			if err != nil {
				return err
			}
			return r.writePlain("%s", rendered)
		}
		written, err := formatter.WriteTextExport(playlist, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %s to %s\n", id, written)
	default:
		return fmt.Errorf("unknown format %q, expected text, csv, markdown, or json", format)
	}
}

func (r *Runner) exportRendered(id, output string, rendered []byte) error {
	if output == "" {
		return r.writePlain("%s", rendered)
	}
	if err := os.WriteFile(output, rendered, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return r.writePlain("✓ Exported %s to %s\n", id, output)
}

// CacheClear removes one snapshot by ID, or every snapshot when no ID is
// given.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: cache database is not configured", shared.ErrServiceUnavailable)
	}

	if id := cmd.String("id"); id != "" {
		if err := r.cache.Delete(id); err != nil {
			return fmt.Errorf("failed to delete cache entry: %w", err)
		}
		return r.writePlain("✓ Removed %s from cache\n", id)
	}

	if err := r.cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return r.writePlain("✓ Cache cleared\n")
}
