// Package console presents the check-in flow on a line-oriented terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console implements checkin.Presenter over a reader and a writer. All input
// goes through one reader goroutine so an abandoned prompt does not swallow
// the next line.
type Console struct {
	out   io.Writer
	lines chan string
	done  chan struct{}
	err   error

	mu           sync.Mutex
	SettingsHint string
}

func New(in io.Reader, out io.Writer) *Console {
	c := &Console{
		out:          out,
		lines:        make(chan string),
		done:         make(chan struct{}),
		SettingsHint: "enable the GPS receiver or location service, then press Enter",
	}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		c.lines <- sc.Text()
	}
	c.err = sc.Err()
	if c.err == nil {
		c.err = io.EOF
	}
	close(c.done)
}

// ReadLine waits for the next input line. It returns io.EOF once input ends.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	select {
	case line := <-c.lines:
		return strings.TrimRight(line, "\r"), nil
	case <-c.done:
		return "", c.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Console) println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

func (c *Console) ShowMessage(msg string) { c.println(msg) }

func (c *Console) OpenLocationSettings() {
	c.println("Location settings:", c.SettingsHint)
}

func (c *Console) ShowScanning()   { c.println("Scanning location...") }
func (c *Console) StopScanning()   { c.println("Scan finished.") }
func (c *Console) ShowOutOfRange() { c.println("Out of range") }
func (c *Console) ShowSuccess()    { c.println("Check-in success") }

// PromptForName asks for a name. An empty line cancels.
func (c *Console) PromptForName(ctx context.Context) (string, bool, error) {
	c.mu.Lock()
	fmt.Fprint(c.out, "Name (empty to cancel): ")
	c.mu.Unlock()

	line, err := c.ReadLine(ctx)
	if err != nil {
		return "", false, err
	}
	name := strings.TrimSpace(line)
	return name, name != "", nil
}
