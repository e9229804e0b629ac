package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"omnisearch/internal/preview"
)

// Preview finds the preview for one song and plays it to the end
func Preview(c *cli.Context) error {
	env, err := Setup(c)
	if err != nil {
		return err
	}

	title, artist := c.String("title"), c.String("artist")
	out := preview.NewProcessOutput(env.Config.PlayerCommand, env.Logger)
	if !out.Available() {
		return fmt.Errorf("player command %q not found, set player_command in the config", env.Config.PlayerCommand)
	}

	changed := make(chan struct{}, 1)
	player := preview.NewPlayer(title, artist, env.NewResolver(), out,
		preview.WithVolume(env.Config.PreviewVolume),
		preview.WithPlayerLogger(env.Logger),
		preview.WithOnChange(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		}),
	)
	defer player.Close()

	ctx := c.Context
	res := player.Toggle(ctx)
	if res == nil {
		return preview.ErrUnavailable
	}
	err = spin(ctx, fmt.Sprintf("Finding a preview for %s...", title), func(context.Context) error {
		return res.Run()
	})
	if err != nil {
		return err
	}
	if player.State() != preview.Playing {
		// interrupted while looking up
		return nil
	}

	fmt.Printf("Playing %s by %s\n", title, artist)
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-changed:
			if player.State() != preview.Playing {
				return nil
			}
		}
	}
}
