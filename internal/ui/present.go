package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/0w0mewo/lsctl/internal/localsend/events"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/charmbracelet/bubbles/progress"
)

// Presenter prints received content and returns right away.
type Presenter struct {
	mu  sync.Mutex
	Out io.Writer
}

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{Out: out}
}

func (p *Presenter) ShowText(_ context.Context, ev events.TextReceived) error {
	title := ev.Title
	if title == "" {
		title = "Text received"
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := fmt.Fprintln(p.Out, emphasis.Render(title)+"\n"+box.Render(ev.Content))
	return err
}

func (p *Presenter) ShowFile(_ context.Context, ev events.FileReceived) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := fmt.Fprintln(p.Out, emphasis.Render("File received")+" "+ev.FileName+" "+muted.Render(ev.Path))
	return err
}

// ProgressView renders transfer state as text bars.
type ProgressView struct {
	bar progress.Model
}

func NewProgressView(width int) ProgressView {
	bar := progress.New(progress.WithSolidFill(Accent))
	if width > 0 {
		bar.Width = width
	}
	return ProgressView{bar: bar}
}

func ratio(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return min(float64(done)/float64(total), 1)
}

func (v ProgressView) Upload(up *models.UploadProgress) string {
	if up == nil {
		return ""
	}

	var s strings.Builder
	fmt.Fprintf(&s, "%s %s %s\n", emphasis.Render(up.Phase.String()), up.Target, muted.Render(up.SessionID))
	s.WriteString(v.bar.ViewAs(ratio(up.Completed, up.Total)))
	fmt.Fprintf(&s, " %d/%d\n", up.Completed, up.Total)

	for _, it := range up.Items {
		line := fmt.Sprintf("  %-9s %s", it.Status, it.FileName)
		if it.Error != "" {
			line += " " + levelStyleFor(it.Status).Render(it.Error)
		}
		s.WriteString(line + "\n")
	}
	return s.String()
}

func (v ProgressView) Receive(recv *models.ReceiveProgress) string {
	if recv == nil {
		return ""
	}

	return fmt.Sprintf("%s %s\n%s %d/%d %s\n",
		emphasis.Render("receiving"), muted.Render(recv.SessionID),
		v.bar.ViewAs(ratio(recv.CompletedCount, recv.TotalFiles)),
		recv.CompletedCount, recv.TotalFiles, recv.CurrentFileName)
}
