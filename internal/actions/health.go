package actions

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"omnisearch/internal/boot"
)

// Health checks the search service once and exits non-zero when it is
// not online.
func Health(c *cli.Context) error {
	env, err := Setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, env.Config.RequestTimeout)
	defer cancel()

	status := env.NewMonitor().Check(ctx)
	fmt.Printf("%s: %s\n", env.Client.BaseURL(), status)
	if status != boot.Online {
		return cli.Exit("", 1)
	}
	return nil
}
