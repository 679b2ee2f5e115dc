package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/jamm-labs/jamm/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI previews the rule set interactively and creates the playlist on
// confirmation.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	source, err := r.trackSource(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/jamm-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.newGenerator(source), req)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
