package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	errs "wvdl/pkg/errors"
)

// PromptGate serializes everything that talks to the user. Password prompts
// hold it across their write and read so that status lines never interleave
// with a prompt; printers hold it for a single write.
type PromptGate struct {
	mu     sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	ttyFd  int
	hasTTY bool
}

// NewPromptGate creates a gate reading answers from in and writing prompts
// to out. When in is a terminal, answers are read without echo.
func NewPromptGate(in io.Reader, out io.Writer) *PromptGate {
	g := &PromptGate{
		in:  bufio.NewReader(in),
		out: out,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		g.ttyFd = int(f.Fd())
		g.hasTTY = true
	}
	return g
}

// NewStdioGate creates a gate over the process's stdin and stdout
func NewStdioGate() *PromptGate {
	return NewPromptGate(os.Stdin, os.Stdout)
}

// Prompt prints msg on its own line and reads one line of input. Closed
// input yields an ErrorTypeStdinClosed error.
func (g *PromptGate) Prompt(msg string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := fmt.Fprintln(g.out, msg); err != nil {
		return "", errs.Wrap(errs.ErrorTypeFileIO, "stdout", "failed to write prompt", err)
	}

	if g.hasTTY {
		secret, err := term.ReadPassword(g.ttyFd)
		fmt.Fprintln(g.out)
		if err == nil {
			return string(secret), nil
		}
		// fall through to a plain read
	}

	line, err := g.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", errs.New(errs.ErrorTypeStdinClosed, "stdin", "input closed")
		}
		return "", errs.Wrap(errs.ErrorTypeStdinClosed, "stdin", "failed to read input", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Do runs fn while holding the gate
func (g *PromptGate) Do(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}
