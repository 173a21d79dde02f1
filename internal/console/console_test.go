package console_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"liveattendance/internal/console"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// TestPromptForName covers a name, a cancel and end of input.
func TestPromptForName(t *testing.T) {
	out := &syncBuffer{}
	c := console.New(strings.NewReader("  Bob  \n\n"), out)
	ctx := context.Background()

	name, ok, err := c.PromptForName(ctx)
	if err != nil || !ok || name != "Bob" {
		t.Fatalf("first prompt = %q %v %v", name, ok, err)
	}
	if _, ok, err := c.PromptForName(ctx); err != nil || ok {
		t.Fatalf("empty line should cancel, got ok=%v err=%v", ok, err)
	}
	if _, _, err := c.PromptForName(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want EOF", err)
	}
	if !strings.Contains(out.String(), "Name (empty to cancel): ") {
		t.Errorf("prompt not written: %q", out.String())
	}
}

// TestPromptCancelledKeepsInput verifies an abandoned prompt leaves the line for the next reader.
func TestPromptCancelledKeepsInput(t *testing.T) {
	pr, pw := io.Pipe()
	c := console.New(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, _, err := c.PromptForName(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}

	go func() { _, _ = pw.Write([]byte("q\n")) }()
	line, err := c.ReadLine(context.Background())
	if err != nil || line != "q" {
		t.Fatalf("ReadLine = %q %v", line, err)
	}
	pw.Close()
}

func TestMessages(t *testing.T) {
	out := &syncBuffer{}
	c := console.New(strings.NewReader(""), out)
	c.ShowScanning()
	c.StopScanning()
	c.ShowOutOfRange()
	c.ShowSuccess()
	c.ShowMessage("Please turn on your location")
	c.OpenLocationSettings()

	for _, want := range []string{"Scanning location...", "Out of range", "Check-in success", "Please turn on your location", "Location settings:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
