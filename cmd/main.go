package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytpl/internal/journal"
	"github.com/desertthunder/ytpl/internal/quota"
	"github.com/desertthunder/ytpl/internal/repositories"
	"github.com/desertthunder/ytpl/internal/services"
	"github.com/desertthunder/ytpl/internal/shared"
	"github.com/desertthunder/ytpl/internal/throttle"
)

func main() {
	logger := shared.NewLogger(nil)
	ctx := context.Background()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var rotation *quota.Rotation
	if len(config.Quota.Projects) > 0 {
		names := make([]string, 0, len(config.Quota.Projects))
		for _, p := range config.Quota.Projects {
			names = append(names, p.Name)
		}
		if rot, err := quota.LoadRotation(shared.ExpandPath(config.Quota.RotationPath), names); err == nil {
			rotation = rot
		} else {
			logger.Warn("quota rotation unavailable", "error", err)
		}
	}

	extractor := services.NewExtractorService(
		config.Credentials.Extractor.BaseURL,
		throttle.NewAdaptiveThrottler(
			time.Duration(config.Throttle.ExtractorDelayMS)*time.Millisecond,
			time.Duration(config.Throttle.MaxDelayMS)*time.Millisecond,
		),
	)
	if path := config.Credentials.Extractor.HeadersPath; path != "" {
		if err := extractor.LoadHeaders(shared.ExpandPath(path)); err != nil {
			logger.Warn("browser headers not loaded", "error", err)
		}
	}

	var source services.MetadataSource = extractor
	var cache *repositories.CacheRepository
	if db, err := shared.NewDatabase(shared.ExpandPath(config.Database.Path)); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		cache = repositories.NewCacheRepository(db)
		maxAge := time.Duration(config.Batch.CacheMaxAgeHours) * time.Hour
		source = repositories.NewCachingSource(extractor, cache, maxAge, logger)
	} else {
		logger.Warn("cache database unavailable, run `ytpl setup database`", "error", err)
	}

	var api services.PlaylistAPI
	creds := config.Credentials.YouTube
	if creds.ClientID != "" && creds.ClientSecret != "" {
		tokenStore := services.NewTokenStore(creds.TokenPath)
		oauthConfig := services.OAuthConfig(creds.ClientID, creds.ClientSecret, loopbackRedirect)
		if ts, err := tokenStore.TokenSource(ctx, oauthConfig); err == nil {
			var reporter services.QuotaReporter
			if rotation != nil {
				reporter = rotation
			}
			if svc, err := services.NewYouTubeService(ctx, ts, reporter); err == nil {
				api = svc
			} else {
				logger.Warn("youtube client unavailable", "error", err)
			}
		}
	}

	var store *journal.Store
	if s, err := journal.Open(shared.ExpandPath(config.Batch.JournalPath)); err == nil {
		store = s
		defer store.Close()
	} else {
		logger.Warn("batch journal unavailable", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		API:      api,
		Source:   source,
		Store:    store,
		Cache:    cache,
		Rotation: rotation,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "ytpl",
		Usage:    "Manage and sync YouTube playlists in batches",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
