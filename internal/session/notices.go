package session

import (
	"fmt"
	"io"

	"athena/internal/perception"
	"athena/internal/ui"
)

const missingKeyText = "⚠️ Configure sua API KEY!"

// NoticePrinter renders perception notices for the operator.
type NoticePrinter struct {
	out    io.Writer
	styles ui.Styles
}

// NewNoticePrinter returns a printer writing to out.
func NewNoticePrinter(out io.Writer, styles ui.Styles) *NoticePrinter {
	return &NoticePrinter{out: out, styles: styles}
}

// Notify implements perception.Notifier.
func (p *NoticePrinter) Notify(n perception.Notice) {
	if text := NoticeText(n, p.styles); text != "" {
		fmt.Fprintln(p.out, text)
	}
}

// NoticeText is the operator-facing line for n.
func NoticeText(n perception.Notice, s ui.Styles) string {
	switch n.Kind {
	case perception.NoticeMissingKey:
		return s.Error.Render(missingKeyText)
	case perception.NoticeBackoff:
		return s.Warning.Render(fmt.Sprintf("⏳ Cota do Google excedida. Esperando %d segundos...", int(n.Wait.Seconds())))
	case perception.NoticeRejected:
		return "\n❌ O GOOGLE RECLAMOU: " + s.Warning.Render(n.Detail)
	case perception.NoticeTransport:
		return "Erro de conexão: " + n.Detail
	case perception.NoticeDecode:
		return s.Muted.Render("Resposta vazia ou inesperada (" + n.Detail + ").")
	case perception.NoticeGaveUp:
		return s.Error.Render(fmt.Sprintf("❌ Desisti após %d tentativas.", n.Attempt))
	case perception.NoticeDegraded:
		return s.Warning.Italic(true).Render("⚠️ Busca falhou. Usando memória interna...")
	}
	return ""
}
