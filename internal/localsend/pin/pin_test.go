package pin

import (
	"context"
	"errors"
	"testing"

	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
)

func TestAsk(t *testing.T) {
	tests := []struct {
		name    string
		p       Prompter
		want    string
		wantErr error
	}{
		{"answered", Static("1234"), "1234", nil},
		{"trimmed", PrompterFunc(func(context.Context, string) (string, error) { return " 42 \n", nil }), "42", nil},
		{"cancelled", PrompterFunc(func(context.Context, string) (string, error) { return "", ErrCancelled }), "", lserrors.ErrPinRequired},
		{"empty", PrompterFunc(func(context.Context, string) (string, error) { return "  ", nil }), "", lserrors.ErrPinRequired},
		{"empty static", Static(""), "", lserrors.ErrPinRequired},
		{"nil prompter", nil, "", lserrors.ErrPinRequired},
		{"prompt failure", PrompterFunc(func(context.Context, string) (string, error) { return "", errors.New("no tty") }), "", lserrors.ErrPinRequired},
	}

	for _, tt := range tests {
		got, err := Ask(context.Background(), tt.p, "test")
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: err = %v; want %v", tt.name, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: pin = %q; want %q", tt.name, got, tt.want)
		}
	}
}
