package utils

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestReadLine(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "secret\n", want: "secret"},
		{in: "secret\r\nignored\n", want: "secret"},
		{in: "no newline", want: "no newline"},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := readLine(strings.NewReader(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("readLine(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("readLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWithSpinnerNonInteractive(t *testing.T) {
	// go test doesn't attach a terminal, so the action runs directly
	want := errors.New("boom")
	called := false
	err := WithSpinner(context.Background(), "Loading...", func(ctx context.Context) error {
		called = true
		return want
	})
	if !called {
		t.Error("WithSpinner() did not run the action")
	}
	if !errors.Is(err, want) {
		t.Errorf("WithSpinner() error = %v, want %v", err, want)
	}
}
