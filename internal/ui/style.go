// Package ui holds the terminal collaborators: prompts, notices and progress.
package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/0w0mewo/lsctl/internal/notify"
	"github.com/charmbracelet/lipgloss"
)

const (
	Accent  = "#ffffaf"
	Muted   = "#4d4d4d"
	Normal  = "#dddddd"
	Err     = "#ff5f5f"
	Success = "#5fffaf"
	Warn    = "#ffd787"
)

var (
	Container = lipgloss.NewStyle().Padding(0, 2)
	emphasis  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Accent))
	muted     = lipgloss.NewStyle().Foreground(lipgloss.Color(Muted))
	box       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(Muted)).Padding(0, 1)
)

func levelStyle(l notify.Level) lipgloss.Style {
	color := Normal
	switch l {
	case notify.LevelSuccess:
		color = Success
	case notify.LevelWarning:
		color = Warn
	case notify.LevelError:
		color = Err
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

func levelStyleFor(st models.ItemStatus) lipgloss.Style {
	switch st {
	case models.StatusDone:
		return levelStyle(notify.LevelSuccess)
	case models.StatusError:
		return levelStyle(notify.LevelError)
	default:
		return levelStyle(notify.LevelInfo)
	}
}

// Notifier prints one styled line per notice.
type Notifier struct {
	mu  sync.Mutex
	Out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{Out: out}
}

func (n *Notifier) Notify(nt notify.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	fmt.Fprintln(n.Out, RenderNotice(nt))
}

func RenderNotice(nt notify.Notice) string {
	line := levelStyle(nt.Level).Render(nt.Title)
	if nt.Message != "" {
		line += " " + nt.Message
	}
	return line
}
