// Package session runs the interactive command loop: it maps each input
// line to a creature action, a market operation or a question for the
// model, and persists the creature after every command.
package session

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/google/uuid"

	"athena/internal/creature"
	"athena/internal/ledger"
	"athena/internal/logging"
	"athena/internal/perception"
	"athena/internal/quote"
	"athena/internal/ui"
	"athena/internal/usage"
)

// Quoter fetches market quotes.
type Quoter interface {
	Fetch(ctx context.Context) (quote.Quote, bool)
	Probe(ctx context.Context) error
}

// Brain answers free text.
type Brain interface {
	Ready() bool
	Ask(ctx context.Context, text string, mode perception.Mode) perception.Reply
	Summarize(ctx context.Context, name, content string) perception.Reply
}

// ModelLister enumerates available models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Ledger records trades and conversations.
type Ledger interface {
	RecordTrade(ctx context.Context, t ledger.Trade) (int64, error)
	RecordConversation(ctx context.Context, c ledger.Conversation) (int64, error)
	RecentTrades(ctx context.Context, n int) ([]ledger.Trade, error)
	RecentConversations(ctx context.Context, n int) ([]ledger.Conversation, error)
	Totals(ctx context.Context) (spent, received float64, err error)
}

// UsageSource exposes token accounting.
type UsageSource interface {
	Stats() usage.Stats
	Flush() error
}

// Config wires a Dispatcher. Ledger, Usage and Models may be nil.
type Config struct {
	Store    *creature.Store
	Journal  *creature.Journal
	Quotes   Quoter
	Brain    Brain
	Models   ModelLister
	Ledger   Ledger
	Usage    UsageSource
	Renderer *ui.Renderer
	Out      io.Writer

	// SessionID tags ledger rows; generated when empty.
	SessionID string
	// Model names the model in the "thinking" line.
	Model func() string
	// Salary draws one shift's pay; defaults to uniform [MinSalary, MaxSalary).
	Salary func() float64
	// ReadFile defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

type handler func(d *Dispatcher, ctx context.Context, line string, args []string)

// Dispatcher owns the creature state for one session.
type Dispatcher struct {
	cfg      Config
	out      io.Writer
	styles   ui.Styles
	render   *ui.Renderer
	state    creature.State
	commands map[string]handler
}

// NewDispatcher creates a dispatcher over state.
func NewDispatcher(state creature.State, cfg Config) *Dispatcher {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Salary == nil {
		cfg.Salary = randomSalary
	}
	if cfg.ReadFile == nil {
		cfg.ReadFile = os.ReadFile
	}
	if cfg.Model == nil {
		cfg.Model = func() string { return "" }
	}
	if cfg.Renderer == nil {
		cfg.Renderer = ui.NewRenderer(ui.DefaultStyles(), ui.RenderOptions{})
	}

	d := &Dispatcher{
		cfg:    cfg,
		out:    cfg.Out,
		styles: cfg.Renderer.Styles(),
		render: cfg.Renderer,
		state:  state,
	}
	d.commands = map[string]handler{
		"ajuda":       (*Dispatcher).help,
		"status":      (*Dispatcher).status,
		"trabalhar":   (*Dispatcher).work,
		"comer":       (*Dispatcher).eat,
		"dormir":      (*Dispatcher).sleep,
		"mercado":     (*Dispatcher).market,
		"comprar":     (*Dispatcher).buy,
		"vender":      (*Dispatcher).sell,
		"diagnostico": (*Dispatcher).diagnose,
		"ler":         (*Dispatcher).read,
		"extrato":     (*Dispatcher).statement,
		"uso":         (*Dispatcher).usage,
		"conversas":   (*Dispatcher).conversations,
	}
	logging.Session("session %s started for %s", cfg.SessionID, state.Name)
	return d
}

func randomSalary() float64 {
	return creature.MinSalary + rand.Float64()*(creature.MaxSalary-creature.MinSalary)
}

// State returns a copy of the current creature record.
func (d *Dispatcher) State() creature.State {
	return d.state
}

// SessionID returns the id tagging this session's ledger rows.
func (d *Dispatcher) SessionID() string {
	return d.cfg.SessionID
}

// Dispatch runs one input line and persists the creature. It reports
// whether the loop should stop. Blank lines do nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd := strings.ToLower(fields[0])
	logging.SessionDebug("dispatch: %s", cmd)

	switch h, ok := d.commands[cmd]; {
	case cmd == "sair":
		quit = true
	case ok:
		h(d, ctx, line, fields[1:])
	default:
		d.converse(ctx, line)
	}

	d.Persist()
	return quit
}

// Persist saves the creature and flushes usage. Failures are logged and
// reported but never stop the session.
func (d *Dispatcher) Persist() {
	if d.cfg.Store != nil {
		if err := d.cfg.Store.Save(d.state); err != nil {
			logging.SessionWarn("persist: %v", err)
			d.println(d.styles.Warning.Render("⚠️ Não consegui salvar o estado."))
		}
	}
	if d.cfg.Usage != nil {
		if err := d.cfg.Usage.Flush(); err != nil {
			logging.UsageWarn("flush usage: %v", err)
		}
	}
}

func (d *Dispatcher) println(a ...any) {
	fmt.Fprintln(d.out, a...)
}

func (d *Dispatcher) printf(format string, a ...any) {
	fmt.Fprintf(d.out, format, a...)
}

func (d *Dispatcher) journal(text string) {
	if d.cfg.Journal != nil {
		d.cfg.Journal.Append(d.state.Knowledge, text)
	}
}

func (d *Dispatcher) recordTrade(ctx context.Context, kind ledger.Kind, cash, asset, price float64) {
	if d.cfg.Ledger == nil {
		return
	}
	_, err := d.cfg.Ledger.RecordTrade(ctx, ledger.Trade{
		SessionID: d.cfg.SessionID,
		Kind:      kind,
		Cash:      cash,
		Asset:     asset,
		Price:     price,
	})
	if err != nil {
		logging.StoreWarn("ledger: %v", err)
	}
}

func (d *Dispatcher) recordConversation(ctx context.Context, mode perception.Mode, prompt string, answered bool) {
	if d.cfg.Ledger == nil {
		return
	}
	_, err := d.cfg.Ledger.RecordConversation(ctx, ledger.Conversation{
		SessionID: d.cfg.SessionID,
		Mode:      mode.String(),
		Prompt:    prompt,
		Answered:  answered,
	})
	if err != nil {
		logging.StoreWarn("ledger: %v", err)
	}
}
