package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseErrorStatusRoundTrip(t *testing.T) {
	for _, status := range []int{200, 204, 400, 401, 403, 404, 409, 429} {
		got := Status(ParseError(status))
		if got != status {
			t.Errorf("Status(ParseError(%d)) = %d", status, got)
		}
	}

	if ParseError(207) != nil {
		t.Error("207 should be treated as accepted")
	}
	if ParseError(502) != ErrUnknown {
		t.Error("502 should map to ErrUnknown")
	}
}

func TestTypedErrorsUnwrap(t *testing.T) {
	var err error = &PrepareFailedError{Status: 403, Message: "rejected by peer"}
	if !errors.Is(err, ErrRejected) {
		t.Errorf("PrepareFailedError(403) should match ErrRejected")
	}

	var pf *PrepareFailedError
	if !errors.As(err, &pf) || pf.Message != "rejected by peer" {
		t.Errorf("errors.As failed: %v", err)
	}

	err = &BatchFailedError{Status: 500, Success: 1, Failed: 2}
	want := "batch upload failed with status 500 (1 success, 2 failed)"
	if err.Error() != want {
		t.Errorf("Error() = %q; want %q", err.Error(), want)
	}
}

func TestStatusOfTypedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"prepare rejected", &PrepareFailedError{Status: 403}, 403},
		{"second pin failure", fmt.Errorf("%w: %w", ErrAuthenticationRequired, &PrepareFailedError{Status: 401}), 401},
		{"batch blocked", &BatchFailedError{Status: 409}, 409},
		{"batch server error", &BatchFailedError{Status: 502}, 500},
		{"transport", errors.New("connection refused"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status(%v) = %d; want %d", tt.err, got, tt.want)
			}
		})
	}
}
