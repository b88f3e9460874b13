package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aguxez/dine/filewatch"
)

// Run starts the terminal UI and blocks until the user quits. When
// sessionPath is set, removing or replacing that file signs the view out.
func Run(ctx context.Context, deps Deps, sessionPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if sessionPath != "" {
		sw, err := filewatch.NewSessionWatcher(sessionPath, func() {
			p.Send(sessionChangedMsg{})
		})
		if err != nil {
			return fmt.Errorf("watching session: %w", err)
		}
		go sw.Watch(ctx)
	}

	final, err := p.Run()
	if fm, ok := final.(model); ok {
		fm.ratings.Close()
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
