// Package notify carries user-facing notices. Orchestration code emits exactly
// one notice per logical outcome, never one per file.
package notify

import (
	"fmt"
	"log/slog"
	"sync"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Notice struct {
	Level   Level
	Title   string
	Message string
}

func (n Notice) String() string {
	if n.Message == "" {
		return n.Title
	}
	return n.Title + ": " + n.Message
}

type Notifier interface {
	Notify(Notice)
}

// Func adapts a plain function to Notifier.
type Func func(Notice)

func (f Func) Notify(n Notice) {
	f(n)
}

// Log writes notices to the default slog logger.
type Log struct{}

func (Log) Notify(n Notice) {
	switch n.Level {
	case LevelError:
		slog.Error(n.Title, "message", n.Message)
	case LevelWarning:
		slog.Warn(n.Title, "message", n.Message)
	default:
		slog.Info(n.Title, "message", n.Message, "level", n.Level.String())
	}
}

// Recorder keeps every notice it receives. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, n)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Notice(nil), r.notices...)
}

func Success(title string) Notice {
	return Notice{Level: LevelSuccess, Title: title}
}

func Failure(title string, err error) Notice {
	return Notice{Level: LevelError, Title: title, Message: err.Error()}
}

// Partial reports mixed per-item results.
func Partial(title string, success, failed int) Notice {
	return Notice{
		Level:   LevelWarning,
		Title:   title,
		Message: fmt.Sprintf("%d success, %d failed", success, failed),
	}
}

func Warning(title, message string) Notice {
	return Notice{Level: LevelWarning, Title: title, Message: message}
}

func Info(title, message string) Notice {
	return Notice{Level: LevelInfo, Title: title, Message: message}
}
