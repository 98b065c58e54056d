package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/libget/internal/challenge"
	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/lyrics"
	"github.com/desertthunder/libget/internal/repositories"
	"github.com/desertthunder/libget/internal/services"
	"github.com/desertthunder/libget/internal/shared"
	"github.com/desertthunder/libget/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage and the lyrics pipeline are built on first use so commands that only talk to LRCLIB,
// or only write config, never open the database.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	ownsDB     bool
	tracks     *repositories.TrackRepository
	resolver   *lyrics.Resolver
	bus        *events.Bus
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB // migrated database; opened from Config when nil
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		bus:        events.NewBus(shared.WithLogger(opts.Logger, "component", "events")),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, libraryCommand, lyricsCommand, playCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies --verbose.
// A missing config file keeps the defaults.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.logger.Debug("config loaded", "path", path)
	return ctx, nil
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database if the runner opened it.
func (r *Runner) Close() error {
	if r.db != nil && r.ownsDB {
		return r.db.Close()
	}
	return nil
}

// open connects storage and builds the lyrics pipeline.
func (r *Runner) open() error {
	if r.resolver != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		r.db, r.ownsDB = db, true
	}
	r.tracks = repositories.NewTrackRepository(r.db)

	var sidecar *lyrics.SidecarWriter
	if r.config.Library.WriteSidecarFiles {
		sidecar = lyrics.NewSidecarWriter(shared.WithLogger(r.logger, "component", "sidecar"))
	}

	r.resolver = lyrics.NewResolver(lyrics.ResolverOpts{
		Store:    r.tracks,
		Provider: r.lrclib(),
		Emitter:  r.bus,
		Sidecar:  sidecar,
		Logger:   shared.WithLogger(r.logger, "component", "lyrics"),
	})
	return nil
}

func (r *Runner) lrclib() *services.LRCLibService {
	return services.NewLRCLibService(services.LRCLibOpts{
		BaseURL:    r.config.LRCLib.BaseURL,
		UserAgent:  r.config.LRCLib.UserAgent,
		Timeout:    r.config.LRCLib.Timeout(),
		HTTPClient: r.httpClient,
	})
}

func (r *Runner) publisher(emitter events.Emitter) *tasks.PublishPipeline {
	solver := challenge.NewSolver(challenge.SolverOpts{
		Workers:   r.config.Challenge.Workers,
		ChunkSize: uint64(r.config.Challenge.ChunkSize),
		Deadline:  r.config.Challenge.Deadline(),
		Logger:    shared.WithLogger(r.logger, "component", "challenge"),
	})
	return tasks.NewPublishPipeline(r.lrclib(), solver, emitter, shared.WithLogger(r.logger, "component", "publish"))
}

// trackID parses the id argument.
func trackID(cmd *cli.Command) (int64, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: track id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
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
