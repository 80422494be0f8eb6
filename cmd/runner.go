package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytpl/internal/journal"
	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/quota"
	"github.com/desertthunder/ytpl/internal/repositories"
	"github.com/desertthunder/ytpl/internal/services"
	"github.com/desertthunder/ytpl/internal/shared"
	"github.com/desertthunder/ytpl/internal/tasks"
	"github.com/desertthunder/ytpl/internal/throttle"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	api      services.PlaylistAPI
	source   services.MetadataSource
	store    *journal.Store
	cache    *repositories.CacheRepository
	rotation *quota.Rotation
	logger   *log.Logger
	output   io.Writer
	engine   *tasks.BatchEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	API      services.PlaylistAPI
	Source   services.MetadataSource
	Store    *journal.Store
	Cache    *repositories.CacheRepository
	Rotation *quota.Rotation
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:   opts.Config,
		api:      opts.API,
		source:   opts.Source,
		store:    opts.Store,
		cache:    opts.Cache,
		rotation: opts.Rotation,
		logger:   opts.Logger,
		output:   opts.Output,
	}

	if r.store != nil {
		r.store.SetMaxRetries(opts.Config.Batch.MaxTaskRetries)
	}

	if r.api != nil && r.source != nil && r.store != nil {
		writeDelay := time.Duration(opts.Config.Throttle.WriteDelayMS) * time.Millisecond
		r.engine = tasks.NewBatchEngine(
			r.api, r.source, r.store,
			throttle.NewThrottler(writeDelay),
			r.rotation, r.logger,
			tasks.EngineOpts{
				MatchThreshold:         opts.Config.Batch.MatchThreshold,
				MaxConsecutiveFailures: opts.Config.Batch.MaxConsecutiveFailures,
			},
		)
	}

	return r
}

// SetLogger swaps the runner's logger; the engine keeps its original one.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authCommand, copyCommand, mergeCommand, splitCommand, syncCommand,
		applyCommand, matchCommand, batchCommand, quotaCommand, cacheCommand,
		setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireEngine gates commands that write to the channel.
func (r *Runner) requireEngine() error {
	if r.engine == nil {
		return fmt.Errorf("%w: run `ytpl auth login` and start the extractor first", shared.ErrServiceUnavailable)
	}
	return nil
}

// requireSource gates commands that only read playlist metadata.
func (r *Runner) requireSource() error {
	if r.source == nil {
		return fmt.Errorf("%w: metadata extractor not configured", shared.ErrServiceUnavailable)
	}
	return nil
}

// fetchTargets loads the channel's playlists with their videos, the candidate
// set for dedup matching.
func (r *Runner) fetchTargets(ctx context.Context) ([]*models.Playlist, error) {
	stubs, err := r.api.MyPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel playlists: %w", err)
	}

	targets := make([]*models.Playlist, 0, len(stubs))
	for _, stub := range stubs {
		full, err := r.api.GetPlaylist(ctx, stub.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch playlist %s: %w", stub.ID, err)
		}
		targets = append(targets, full)
	}
	return targets, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
