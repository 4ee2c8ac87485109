// Package pin is the interactive step run when the backend rejects a prepare
// call for a missing or wrong PIN.
package pin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
)

// ErrCancelled is returned by a Prompter when the user dismisses the prompt.
var ErrCancelled = errors.New("PIN prompt cancelled")

type Prompter interface {
	PromptPIN(ctx context.Context, reason string) (string, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, reason string) (string, error)

func (f PrompterFunc) PromptPIN(ctx context.Context, reason string) (string, error) {
	return f(ctx, reason)
}

// Static always answers with the same PIN, e.g. one given on the command line.
type Static string

func (s Static) PromptPIN(context.Context, string) (string, error) {
	if s == "" {
		return "", ErrCancelled
	}
	return string(s), nil
}

// Ask runs p once. Cancellation, an empty answer or a nil prompter all become
// ErrPinRequired so callers abort instead of continuing without a PIN.
func Ask(ctx context.Context, p Prompter, reason string) (string, error) {
	if p == nil {
		return "", lserrors.ErrPinRequired
	}

	pin, err := p.PromptPIN(ctx, reason)
	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			return "", lserrors.ErrPinRequired
		}
		return "", fmt.Errorf("%w: %v", lserrors.ErrPinRequired, err)
	}

	pin = strings.TrimSpace(pin)
	if pin == "" {
		return "", lserrors.ErrPinRequired
	}

	return pin, nil
}
