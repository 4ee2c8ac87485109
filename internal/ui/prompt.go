package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/0w0mewo/lsctl/internal/localsend/events"
	"github.com/0w0mewo/lsctl/internal/localsend/pin"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type pinModel struct {
	input     textinput.Model
	reason    string
	done      bool
	cancelled bool
}

func newPinModel(reason string) pinModel {
	input := textinput.New()
	input.Focus()
	input.Placeholder = "PIN"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 32
	input.Width = 16

	return pinModel{input: input, reason: reason}
}

func (m pinModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pinModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var s strings.Builder
	s.WriteString(emphasis.Render(m.reason))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString(muted.Render("enter: confirm • esc: cancel"))
	return Container.Render(s.String()) + "\n"
}

// result maps the final model to what a pin.Prompter returns.
func (m pinModel) result() (string, error) {
	if m.cancelled || !m.done {
		return "", pin.ErrCancelled
	}
	return m.input.Value(), nil
}

// Terminal runs interactive prompts on In/Out.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

func (t Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	prog := tea.NewProgram(model, tea.WithInput(t.In), tea.WithOutput(t.Out), tea.WithContext(ctx))

	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, context.Canceled
		}
		return nil, err
	}
	return final, nil
}

// PromptPIN implements pin.Prompter.
func (t Terminal) PromptPIN(ctx context.Context, reason string) (string, error) {
	final, err := t.run(ctx, newPinModel(reason))
	if err != nil {
		return "", err
	}
	return final.(pinModel).result()
}

type confirmModel struct {
	question string
	answered bool
	accept   bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch strings.ToLower(key.String()) {
	case "y", "enter":
		m.answered, m.accept = true, true
		return m, tea.Quit
	case "n", "esc", "ctrl+c":
		m.answered, m.accept = true, false
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.answered {
		return ""
	}
	return Container.Render(emphasis.Render(m.question)+" "+muted.Render("[Y/n]")) + "\n"
}

func (t Terminal) confirm(ctx context.Context, question string) (bool, error) {
	final, err := t.run(ctx, confirmModel{question: question})
	if err != nil {
		return false, err
	}
	return final.(confirmModel).accept, nil
}

// AcceptReceive implements events.Decider.
func (t Terminal) AcceptReceive(ctx context.Context, ev events.ConfirmRecv) (bool, error) {
	from := ev.Alias
	if from == "" {
		from = "a peer"
	}
	return t.confirm(ctx, fmt.Sprintf("Receive %d file(s) from %s?", len(ev.Files), from))
}

// AcceptDownload implements events.Decider.
func (t Terminal) AcceptDownload(ctx context.Context, ev events.ConfirmDownload) (bool, error) {
	who := ev.ClientIP
	if who == "" {
		who = ev.ClientKey
	}
	return t.confirm(ctx, fmt.Sprintf("Let %s download the shared files?", who))
}
