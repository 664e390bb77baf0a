package ui

import (
	"context"
	"fmt"
	"io"

	"wvdl/internal/queue"
	"wvdl/pkg/logger"
)

type statusLine struct {
	text  string
	isErr bool
}

// Reporter prints per-post status lines from a single goroutine. Lines are
// queued without blocking the caller and written under the prompt gate.
type Reporter struct {
	gate   *PromptGate
	out    io.Writer
	errOut io.Writer
	lines  *queue.Queue[statusLine]
	done   chan struct{}
	logger logger.Logger
}

// NewReporter starts a reporter writing status lines to out and failures to
// errOut.
func NewReporter(gate *PromptGate, out, errOut io.Writer, log logger.Logger) *Reporter {
	if log == nil {
		log = logger.GetLogger()
	}
	r := &Reporter{
		gate:   gate,
		out:    out,
		errOut: errOut,
		lines:  queue.New[statusLine](),
		done:   make(chan struct{}),
		logger: log,
	}
	go r.run()
	return r
}

// Downloaded reports a committed post
func (r *Reporter) Downloaded(url string) {
	r.lines.PushBack(statusLine{text: Green("Downloaded") + " " + url})
}

// Skipped reports a post that was not downloaded
func (r *Reporter) Skipped(url string) {
	r.lines.PushBack(statusLine{text: Dim("Skipped " + url)})
}

// Failed reports a terminal failure as one line
func (r *Reporter) Failed(err error) {
	r.lines.PushBack(statusLine{text: Red(err.Error()), isErr: true})
}

// Close flushes every queued line and stops the reporter
func (r *Reporter) Close() {
	r.lines.Close()
	<-r.done
}

func (r *Reporter) run() {
	defer close(r.done)
	for {
		line, err := r.lines.Pop(context.Background())
		if err != nil {
			return
		}

		w := r.out
		if line.isErr {
			w = r.errOut
		}
		r.gate.Do(func() {
			if _, err := fmt.Fprintln(w, line.text); err != nil {
				r.logger.DebugWithFields("failed to write status line", map[string]interface{}{
					"error": err.Error(),
				})
			}
		})
	}
}
