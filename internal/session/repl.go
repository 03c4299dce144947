package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"athena/internal/logging"
	"athena/internal/ui"
)

// ErrAccessDenied is returned when the PIN gate is not passed.
var ErrAccessDenied = errors.New("access denied")

// maxLineBytes bounds one input line.
const maxLineBytes = 1 << 20

// REPL reads commands and feeds them to a Dispatcher.
type REPL struct {
	d        *Dispatcher
	in       io.Reader
	out      io.Writer
	styles   ui.Styles
	pin      string
	attempts int
}

// REPLOption customises a REPL.
type REPLOption func(*REPL)

// WithPIN puts a PIN gate in front of the loop. An empty pin disables it.
func WithPIN(pin string, attempts int) REPLOption {
	return func(r *REPL) {
		r.pin = pin
		r.attempts = attempts
	}
}

// NewREPL creates a REPL reading from in and writing to the dispatcher's output.
func NewREPL(d *Dispatcher, in io.Reader, opts ...REPLOption) *REPL {
	r := &REPL{
		d:        d,
		in:       in,
		out:      d.out,
		styles:   d.styles,
		attempts: 3,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.attempts <= 0 {
		r.attempts = 1
	}
	return r
}

type inputLine struct {
	text string
	err  error
}

// readLines scans in on its own goroutine so the loop can also watch ctx.
// The goroutine exits when in is exhausted or done is closed.
func readLines(in io.Reader, done <-chan struct{}) <-chan inputLine {
	ch := make(chan inputLine)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for sc.Scan() {
			select {
			case ch <- inputLine{text: sc.Text()}:
			case <-done:
				return
			}
		}
		if err := sc.Err(); err != nil {
			select {
			case ch <- inputLine{err: err}:
			case <-done:
			}
		}
	}()
	return ch
}

// Run passes the PIN gate and then loops until sair, end of input or ctx
// cancellation. The creature is saved on every exit path except a failed
// PIN gate, which returns ErrAccessDenied.
func (r *REPL) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	lines := readLines(r.in, done)

	if err := r.gate(ctx, lines); err != nil {
		return err
	}
	fmt.Fprintln(r.out, r.styles.Success.Render("🔌 Inicializando")+" "+r.d.state.Name+"...")

	for {
		fmt.Fprint(r.out, "\n"+r.styles.Prompt.Render(r.d.state.Name)+" > ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			logging.Session("session %s interrupted", r.d.SessionID())
			r.d.Persist()
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				logging.Session("session %s: end of input", r.d.SessionID())
				r.d.Persist()
				return nil
			}
			if l.err != nil {
				r.d.Persist()
				return fmt.Errorf("read input: %w", l.err)
			}
			if r.d.Dispatch(ctx, l.text) {
				logging.Session("session %s ended", r.d.SessionID())
				return nil
			}
		}
	}
}

func (r *REPL) gate(ctx context.Context, lines <-chan inputLine) error {
	if r.pin == "" {
		return nil
	}
	fmt.Fprintln(r.out, r.styles.Warning.Bold(true).Render("🔒 SISTEMA DE SEGURANÇA"))
	for remaining := r.attempts; remaining > 0; remaining-- {
		fmt.Fprint(r.out, "🔑 PIN: ")
		var l inputLine
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return ErrAccessDenied
		case l, ok = <-lines:
		}
		if !ok || l.err != nil {
			fmt.Fprintln(r.out)
			logging.SessionWarn("PIN gate: input closed")
			return ErrAccessDenied
		}
		if strings.TrimSpace(l.text) == r.pin {
			fmt.Fprintln(r.out, r.styles.Success.Render("✅ Acesso Liberado."))
			return nil
		}
		fmt.Fprintln(r.out, "❌ Incorreto.")
	}
	logging.SessionWarn("PIN gate: %d wrong attempts", r.attempts)
	return ErrAccessDenied
}
