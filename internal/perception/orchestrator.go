package perception

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"athena/internal/logging"
)

// MaxFileBytes bounds how much of a file is forwarded for summarisation.
const MaxFileBytes = 10000

const (
	augmentedPromptFormat = "Hoje é %s. Você é %s. Chame o usuário de 'Pai'. Usuário: '%s'"
	plainPromptFormat     = "Hoje é %s. Você é %s. REGRA MÁXIMA: Trate o usuário como 'Pai'. Seja curta e leal. Usuário: '%s'"
	filePromptFormat      = "Analise o seguinte arquivo que o Pai me enviou. Nome: '%s'. Conteúdo:\n\n---\n%s\n---\n\nFaça um resumo e comentários úteis."
)

// Orchestrator answers free text, trying web-augmented mode first when
// asked and falling back to plain mode.
type Orchestrator struct {
	sender   Sender
	persona  string
	now      func() time.Time
	notifier Notifier
}

// OrchestratorOption customises an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithClock replaces time.Now for the day stamp.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// WithPersona sets the name the model is told it has.
func WithPersona(name string) OrchestratorOption {
	return func(o *Orchestrator) {
		if name != "" {
			o.persona = name
		}
	}
}

// WithNoticeSink sets where the fallback and missing-key notices go.
func WithNoticeSink(n Notifier) OrchestratorOption {
	return func(o *Orchestrator) { o.notifier = n }
}

// NewOrchestrator creates an orchestrator over sender.
func NewOrchestrator(sender Sender, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		sender:   sender,
		persona:  "Athena",
		now:      time.Now,
		notifier: nopNotifier{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) dayStamp() string {
	return o.now().Format("2006-01-02")
}

// BuildRequest constructs the request for text in the given mode.
func (o *Orchestrator) BuildRequest(text string, mode Mode) GeminiRequest {
	format := plainPromptFormat
	if mode == ModeAugmented {
		format = augmentedPromptFormat
	}
	req := GeminiRequest{
		Contents: []GeminiContent{{
			Parts: []GeminiPart{{Text: fmt.Sprintf(format, o.dayStamp(), o.persona, text)}},
		}},
	}
	if mode == ModeAugmented {
		req.Tools = []GeminiTool{{GoogleSearch: &GeminiGoogleSearch{}}}
	}
	return req
}

// Reply is an answer together with the mode that produced it.
type Reply struct {
	Text string
	Mode Mode
	OK   bool
}

// readiness is implemented by senders that can tell up front they will
// never succeed, e.g. for lack of a credential.
type readiness interface {
	Ready() bool
}

// Ready reports whether the sender is able to make calls.
func (o *Orchestrator) Ready() bool {
	if r, ok := o.sender.(readiness); ok {
		return r.Ready()
	}
	return true
}

// Ask is Answer that also reports which mode answered.
func (o *Orchestrator) Ask(ctx context.Context, text string, mode Mode) Reply {
	if !o.Ready() {
		o.notifier.Notify(Notice{Kind: NoticeMissingKey})
		return Reply{Mode: mode}
	}
	if mode == ModeAugmented {
		if answer, ok := o.sender.Send(ctx, o.BuildRequest(text, ModeAugmented)); ok {
			return Reply{Text: answer, Mode: ModeAugmented, OK: true}
		}
		if ctx.Err() != nil {
			return Reply{Mode: ModeAugmented}
		}
		logging.APIWarn("Answer: augmented mode failed, falling back to plain")
		o.notifier.Notify(Notice{Kind: NoticeDegraded})
	}
	answer, ok := o.sender.Send(ctx, o.BuildRequest(text, ModePlain))
	return Reply{Text: answer, Mode: ModePlain, OK: ok}
}

// Answer asks text. In ModeAugmented a successful web-search answer is
// returned at once; any failure there is swallowed (a degrade notice is
// emitted) and the plain-mode result becomes the final outcome.
func (o *Orchestrator) Answer(ctx context.Context, text string, mode Mode) (string, bool) {
	r := o.Ask(ctx, text, mode)
	return r.Text, r.OK
}

// Summarize forwards a bounded prefix of a file's content in plain mode.
func (o *Orchestrator) Summarize(ctx context.Context, name, content string) Reply {
	return o.Ask(ctx, summaryPrompt(name, content), ModePlain)
}

func summaryPrompt(name, content string) string {
	return fmt.Sprintf(filePromptFormat, name, TruncateUTF8(content, MaxFileBytes))
}

// TruncateUTF8 cuts s to at most n bytes without splitting a rune.
func TruncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
