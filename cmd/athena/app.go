package main

import (
	"context"
	"io"
	"sync"

	"athena/internal/config"
	"athena/internal/creature"
	"athena/internal/ledger"
	"athena/internal/logging"
	"athena/internal/perception"
	"athena/internal/quote"
	"athena/internal/session"
	"athena/internal/ui"
	"athena/internal/usage"
)

// app holds the wired components for one process.
type app struct {
	workspace string
	out       io.Writer

	mu  sync.RWMutex
	cfg *config.Config

	styles   ui.Styles
	renderer *ui.Renderer
	notices  *session.NoticePrinter
	gemini   *perception.GeminiClient
	quotes   *quote.Client
	store    *creature.Store
	journal  *creature.Journal
	ledger   *ledger.Ledger // nil when disabled or unavailable
	usage    *usage.Tracker // nil when unavailable
}

// newApp wires every component from c. Ledger and usage failures are
// logged and leave those components nil.
func newApp(ws string, c *config.Config, out io.Writer) *app {
	a := &app{workspace: ws, out: out, cfg: c}

	a.styles = ui.DefaultStyles()
	a.renderer = ui.NewRenderer(a.styles, ui.RenderOptions{
		Markdown: c.UI.RenderMarkdown,
		WordWrap: c.UI.WordWrap,
		Style:    c.UI.Style,
	})
	a.notices = session.NewNoticePrinter(out, a.styles)

	if tracker, err := usage.NewTracker(c.UsagePath(ws)); err != nil {
		logging.UsageWarn("usage tracking disabled: %v", err)
	} else {
		a.usage = tracker
	}

	opts := []perception.GeminiOption{perception.WithNotifier(a.notices)}
	if a.usage != nil {
		opts = append(opts, perception.WithUsageRecorder(a.usage))
	}
	a.gemini = perception.NewGeminiClient(geminiConfig(c), opts...)
	a.quotes = quote.NewClient(quoteConfig(c))
	a.store = creature.NewStore(c.StatePath(ws))
	a.journal = creature.NewJournal(c.JournalPath(ws))

	if c.Ledger.Enabled {
		l, err := ledger.Open(c.LedgerPath(ws))
		if err != nil {
			logging.StoreError("ledger disabled: %v", err)
		} else {
			a.ledger = l
		}
	}
	return a
}

func geminiConfig(c *config.Config) perception.GeminiConfig {
	g := perception.DefaultGeminiConfig(c.LLM.APIKey)
	if c.LLM.BaseURL != "" {
		g.BaseURL = c.LLM.BaseURL
	}
	if c.LLM.APIVersion != "" {
		g.APIVersion = c.LLM.APIVersion
	}
	g.Model = c.LLM.Model
	g.Timeout = c.LLM.GetTimeout()
	g.MaxRetries = c.LLM.MaxRetries
	g.Backoff = c.LLM.GetBackoff()
	return g
}

func quoteConfig(c *config.Config) quote.Config {
	return quote.Config{
		URL:       c.Quote.URL,
		Pair:      c.Quote.Pair,
		Timeout:   c.GetQuoteTimeout(),
		UserAgent: c.Quote.UserAgent,
	}
}

// reload applies a changed config file. Only the LLM settings are hot;
// paths and the PIN take effect on the next start.
func (a *app) reload(c *config.Config) {
	applyFlagOverrides(c)
	a.mu.Lock()
	a.cfg = c
	a.mu.Unlock()
	a.gemini.Reconfigure(geminiConfig(c))
	logging.Config("config reloaded: model=%s api_key=%t", c.LLM.Model, c.LLM.HasAPIKey())
}

func (a *app) config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// ListModels runs diagnostics with the current credential.
func (a *app) ListModels(ctx context.Context) ([]string, error) {
	return perception.NewDiagnostics(geminiConfig(a.config()), nil).ListModels(ctx)
}

// orchestrator builds the question orchestrator for the named persona.
func (a *app) orchestrator(persona string) *perception.Orchestrator {
	return perception.NewOrchestrator(a.gemini,
		perception.WithPersona(persona),
		perception.WithNoticeSink(a.notices),
	)
}

// loadCreature loads the saved creature or a fresh one named after the config.
func (a *app) loadCreature() creature.State {
	return creature.LoadOrNew(a.store, a.config().Name)
}

// dispatcher wires a session dispatcher around state. A read-only
// dispatcher never writes the state file; one-shot subcommands use it.
func (a *app) dispatcher(state creature.State, readOnly bool) *session.Dispatcher {
	cfg := session.Config{
		Journal:  a.journal,
		Quotes:   a.quotes,
		Brain:    a.orchestrator(state.Name),
		Models:   a,
		Renderer: a.renderer,
		Out:      a.out,
		Model:    a.gemini.Model,
	}
	if !readOnly {
		cfg.Store = a.store
	}
	// Typed nils would defeat the dispatcher's nil checks.
	if a.ledger != nil {
		cfg.Ledger = a.ledger
	}
	if a.usage != nil {
		cfg.Usage = a.usage
	}
	return session.NewDispatcher(state, cfg)
}

// watch starts hot reload of the config file. The returned stop func is
// always safe to call.
func (a *app) watch(ctx context.Context, path string) func() {
	w, err := config.NewWatcher(path, a.reload)
	if err != nil {
		logging.ConfigWarn("config watcher unavailable: %v", err)
		return func() {}
	}
	if err := w.Start(ctx); err != nil {
		logging.ConfigWarn("config watcher failed to start: %v", err)
		return func() {}
	}
	return w.Stop
}

func (a *app) close() {
	if a.usage != nil {
		if err := a.usage.Flush(); err != nil {
			logging.UsageWarn("flush usage: %v", err)
		}
	}
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			logging.StoreWarn("close ledger: %v", err)
		}
	}
}
