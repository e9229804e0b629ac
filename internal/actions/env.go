package actions

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"omnisearch/internal/adapters"
	"omnisearch/internal/api"
	"omnisearch/internal/boot"
	"omnisearch/internal/config"
	"omnisearch/internal/porter"
	"omnisearch/internal/preview"
)

// Env is everything a command needs, built once from the global flags
type Env struct {
	Config *config.Config
	Client *api.Client
	Logger *log.Logger
}

// Setup loads the configuration and builds the API client
func Setup(c *cli.Context) (*Env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("api-url") {
		cfg.APIURL = c.String("api-url")
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --api-url: %w", err)
		}
	}

	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger = log.New(os.Stderr, "omni ", log.LstdFlags)
	}

	return &Env{
		Config: cfg,
		Client: api.NewClient(cfg.APIURL, api.WithTimeout(cfg.RequestTimeout)),
		Logger: logger,
	}, nil
}

// NewMonitor creates a boot monitor for the configured server
func (e *Env) NewMonitor() *boot.Monitor {
	return boot.NewMonitor(e.Client, boot.Config{
		ProgressInterval: e.Config.ProgressInterval,
		ProgressStep:     e.Config.ProgressStep,
		ProgressCap:      e.Config.ProgressCap,
		PollInterval:     e.Config.PollInterval,
	}, e.Logger)
}

// NewResolver creates the preview resolver shared by every player
func (e *Env) NewResolver() *preview.Resolver {
	opts := []preview.ResolverOption{
		preview.WithRateLimit(e.Config.PreviewRateLimit),
		preview.WithLogger(e.Logger),
	}
	if e.Config.PreviewFallback == "spotify" {
		sp, err := adapters.NewSpotifyAdapter(e.Config.SpotifyID, e.Config.SpotifySecret)
		if err != nil {
			e.Logger.Printf("Spotify preview fallback disabled: %v", err)
		} else {
			opts = append(opts, preview.WithFallback(sp))
		}
	}
	return preview.NewResolver(e.Client, preview.NewMemoryCache(), opts...)
}

// NewOutput creates an audio output for one player
func (e *Env) NewOutput() preview.Output {
	return preview.NewProcessOutput(e.Config.PlayerCommand, e.Logger)
}

// NewPorter creates a porter for the configured platform. Without
// credentials only CSV export works.
func (e *Env) NewPorter() *porter.Porter {
	p, err := porter.NewPorterWithCredentials(e.Config)
	if err != nil {
		e.Logger.Printf("Open on platform disabled: %v", err)
		return porter.NewPorter(nil)
	}
	return p
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// spin runs action behind a spinner on a terminal and plainly otherwise
func spin(ctx context.Context, title string, action func(context.Context) error) error {
	if !isTerminal(os.Stdout) {
		return action(ctx)
	}
	return spinner.New().
		Title(title).
		Context(ctx).
		ActionWithErr(action).
		Run()
}
