package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

// Run boots the TUI program and blocks until it exits. Engine timers are
// delivered through the program so every state change happens in Update.
func Run(ctx context.Context, opts Options) error {
	sched := newTeaScheduler()
	m := newModel(ctx, sched, opts)
	defer m.app.Close()

	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	sched.bind(program.Send)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run program")
	}
	return nil
}
