package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"omnisearch/internal/boot"
	"omnisearch/internal/playlist"
	"omnisearch/internal/porter"
	"omnisearch/internal/preview"
	"omnisearch/internal/search"
)

// previewWorkers bounds concurrent proxy lookups for --previews
const previewWorkers = 4

// Search runs a single query and prints the ranked results
func Search(c *cli.Context) error {
	env, err := Setup(c)
	if err != nil {
		return err
	}

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" && isTerminal(os.Stdin) {
		err := huh.NewInput().
			Title("What are you looking for?").
			Placeholder("Search by lyric, mood, or meaning...").
			Value(&query).
			Run()
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a search query is required")
	}

	limit := env.Config.SearchLimit
	if c.IsSet("limit") {
		limit = c.Int("limit")
	}
	if limit < 1 || limit > 50 {
		return fmt.Errorf("limit must be between 1 and 50, got %d", limit)
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	monitor := env.NewMonitor()
	if err := awaitServer(ctx, monitor, c.Bool("wait")); err != nil {
		return err
	}

	ctrl := search.NewController(env.Client, monitor, limit, env.Logger)
	err = spin(ctx, "Thinking...", func(ctx context.Context) error {
		_, err := ctrl.Submit(ctx, query)
		return err
	})
	if err != nil {
		env.Logger.Printf("Search failed: %v", err)
		return cli.Exit(search.ConnectionFailed, 1)
	}

	pl := playlist.Playlist{
		Query:  strings.TrimSpace(query),
		Tracks: playlist.FromResults(ctrl.Results()),
	}
	if stats, ok := ctrl.Stats(); ok {
		pl.LatencyMs = stats.LatencyMs
		pl.ModelVersion = stats.ModelVersion
	}

	if ctrl.Empty() {
		fmt.Println("No match found, try again!")
		return nil
	}

	if c.Bool("previews") {
		if err := spin(ctx, "Finding previews...", func(ctx context.Context) error {
			return resolvePreviews(ctx, env.NewResolver(), pl.Tracks)
		}); err != nil {
			return err
		}
	}

	if err := printPlaylist(os.Stdout, pl, isTerminal(os.Stdout)); err != nil {
		return err
	}

	if path := c.String("csv"); path != "" {
		written, err := porter.NewPorter(nil).ExportPlaylistToCSV(pl, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d results to %s\n", len(pl.Tracks), written)
	}
	return nil
}

// awaitServer makes sure the search gate is open before searching. With
// wait it keeps polling until ctx expires, otherwise one check decides.
func awaitServer(ctx context.Context, monitor *boot.Monitor, wait bool) error {
	if !wait {
		if status := monitor.Check(ctx); status != boot.Online {
			return cli.Exit(fmt.Sprintf("Search service is not online (%s), retry with --wait", status), 1)
		}
		return nil
	}

	start := time.Now()
	monitor.Start(ctx)
	defer monitor.Stop()

	if err := spin(ctx, "Waiting for the search engine to wake up...", monitor.Wait); err != nil {
		return fmt.Errorf("search service did not come online: %w", err)
	}
	if waited := time.Since(start); waited > time.Second {
		fmt.Fprintf(os.Stderr, "Search engine online after %s\n",
			strings.TrimSpace(humanize.RelTime(start, start.Add(waited), "", "")))
	}
	return nil
}

// resolvePreviews fills in PreviewURL for every track. Songs without a
// preview keep an empty URL; only cancellation fails the whole batch.
func resolvePreviews(ctx context.Context, resolver *preview.Resolver, tracks []playlist.Track) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(previewWorkers)

	for i := range tracks {
		if tracks[i].RawTitle == "" {
			continue
		}
		g.Go(func() error {
			url, err := resolver.Resolve(gctx, tracks[i].RawTitle, tracks[i].RawArtist)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return nil
			}
			tracks[i].PreviewURL = url
			return nil
		})
	}
	return g.Wait()
}
