package actions

import (
	"errors"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"omnisearch/internal/search"
	"omnisearch/internal/tui"
)

// Interactive runs the full screen search UI
func Interactive(c *cli.Context) error {
	env, err := Setup(c)
	if err != nil {
		return err
	}

	// stderr belongs to the UI, so logs go to a file or nowhere
	env.Logger = log.New(io.Discard, "", 0)
	if path := env.Config.LogFile; path != "" {
		f, err := tea.LogToFile(path, "omni")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		env.Logger = log.Default()
	}

	monitor := env.NewMonitor()
	monitor.Start(c.Context)
	defer monitor.Stop()

	model := tui.New(c.Context, tui.Deps{
		Controller: search.NewController(env.Client, monitor, env.Config.SearchLimit, env.Logger),
		Monitor:    monitor,
		Resolver:   env.NewResolver(),
		NewOutput:  env.NewOutput,
		Porter:     env.NewPorter(),
		Volume:     env.Config.PreviewVolume,
		Logger:     env.Logger,
	})

	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(c.Context)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
