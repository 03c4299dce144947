package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"athena/internal/creature"
	"athena/internal/ledger"
	"athena/internal/logging"
	"athena/internal/perception"
	"athena/internal/ui"
)

const helpText = "Comandos: status, trabalhar, comer, dormir, mercado, comprar [v], vender, extrato, conversas, uso, ler [arquivo], diagnostico, sair."

// statementSize is how many trades extrato and conversations conversas list.
const statementSize = 10

// promptPreview bounds a conversation prompt in the conversas listing.
const promptPreview = 60

func (d *Dispatcher) help(context.Context, string, []string) {
	d.println(helpText)
}

func (d *Dispatcher) status(context.Context, string, []string) {
	s := d.state
	energy := fmt.Sprintf("%d/%d", s.Energy, creature.MaxEnergy)
	if s.Energy > 50 {
		energy = d.styles.Success.Render(energy)
	} else {
		energy = d.styles.Error.Render(energy)
	}
	d.println("\n" + d.styles.Title.Render("📊 STATUS ATUAL:"))
	d.println("   ⚡ Energia: ", energy)
	d.println("   🍽️ Fome:    ", s.Hunger)
	d.println("   💰 Saldo:   ", d.styles.Money.Render(ui.BRL(s.Cash)))
	d.println("   🪙 Carteira:", d.styles.Asset.Render(ui.BTC(s.Wallet)))
	d.println("   🧠 Nível:   ", d.styles.Level.Render(strconv.FormatUint(uint64(s.Knowledge), 10)))
}

func (d *Dispatcher) work(context.Context, string, []string) {
	salary, err := d.state.Work(d.cfg.Salary())
	if err != nil {
		logging.CreatureDebug("work refused: %v", err)
		d.println(d.styles.Error.Render(fmt.Sprintf("🛑 %s: Pai, estou exausta.", d.state.Name)))
		return
	}
	logging.Creature("worked: salary=%.2f energy=%d hunger=%d", salary, d.state.Energy, d.state.Hunger)
	d.println("💼 Trabalhei. Ganhei " + d.styles.Success.Render(ui.BRL(salary)) + ".")
}

func (d *Dispatcher) eat(context.Context, string, []string) {
	if err := d.state.Eat(); err != nil {
		logging.CreatureDebug("eat refused: %v", err)
		d.println(d.styles.Error.Render("🛑 Sem dinheiro!"))
		return
	}
	logging.Creature("ate: cash=%.2f energy=%d hunger=%d", d.state.Cash, d.state.Energy, d.state.Hunger)
	d.println("🍎 Comi algo real. " + d.styles.Error.Render("(-"+ui.BRL(creature.MealCost)+")"))
}

func (d *Dispatcher) sleep(context.Context, string, []string) {
	d.state.Sleep()
	logging.Creature("slept: energy=%d hunger=%d", d.state.Energy, d.state.Hunger)
	d.println(d.styles.Sleep.Render("😴 Zzzzz... Bateria recarregada."))
}

func (d *Dispatcher) market(ctx context.Context, _ string, _ []string) {
	d.println("\n📡 Consultando preço...")
	q, ok := d.cfg.Quotes.Fetch(ctx)
	if !ok {
		d.println(d.styles.Error.Render("❌ Falha na conexão."))
		return
	}
	change := ui.SignedPercent(q.PercentChange)
	if q.PercentChange >= 0 {
		change = d.styles.Success.Render(change)
	} else {
		change = d.styles.Error.Render(change)
	}
	d.printf("✅ Bitcoin: %s (%s)\n", ui.BRL(q.Price), change)
	d.println("💰 Carteira: " + d.styles.Money.Render(ui.BRL(d.state.WalletValue(q.Price))))
}

// parseAmount accepts "10", "10.5" and "10,5".
func parseAmount(raw string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
}

func (d *Dispatcher) buy(ctx context.Context, _ string, args []string) {
	if len(args) == 0 {
		d.println("Valor?")
		return
	}
	amount, err := parseAmount(args[0])
	if err == nil {
		err = d.state.CanAfford(amount)
	} else {
		err = creature.ErrInvalidAmount
	}
	switch {
	case errors.Is(err, creature.ErrInvalidAmount):
		d.println("🛑 Valor inválido.")
		return
	case errors.Is(err, creature.ErrInsufficientCash):
		d.println("🛑 Saldo insuficiente.")
		return
	}

	q, ok := d.cfg.Quotes.Fetch(ctx)
	if !ok {
		d.println("❌ Erro de conexão.")
		return
	}
	units, err := d.state.Buy(amount, q.Price)
	if err != nil {
		logging.CreatureWarn("buy failed after quote: %v", err)
		d.println("❌ Erro de conexão.")
		return
	}
	logging.Creature("bought %.8f at %.2f for %.2f", units, q.Price, amount)
	d.printf("✅ Comprei %.8f BTC.\n", units)
	d.journal(fmt.Sprintf("Comprei %.8f BTC", units))
	d.recordTrade(ctx, ledger.KindBuy, amount, units, q.Price)
}

func (d *Dispatcher) sell(ctx context.Context, _ string, _ []string) {
	if !d.state.HasHoldings() {
		d.println("🛑 Nada para vender.")
		return
	}
	q, ok := d.cfg.Quotes.Fetch(ctx)
	if !ok {
		d.println("❌ Erro de conexão.")
		return
	}
	units := d.state.Wallet
	total, err := d.state.SellAll(q.Price)
	if err != nil {
		logging.CreatureWarn("sell failed after quote: %v", err)
		d.println("❌ Erro de conexão.")
		return
	}
	logging.Creature("sold %.8f at %.2f for %.2f", units, q.Price, total)
	d.printf("✅ Vendi tudo por %s.\n", ui.BRL(total))
	d.journal("Vendi tudo por " + ui.BRL(total))
	d.recordTrade(ctx, ledger.KindSell, total, units, q.Price)
}

func (d *Dispatcher) diagnose(ctx context.Context, _ string, _ []string) {
	d.println("\n🕵️ DIAGNÓSTICO...")

	var (
		g        errgroup.Group
		models   []string
		modelErr error
		quoteErr error
	)
	g.Go(func() error {
		if d.cfg.Models == nil {
			modelErr = errors.New("diagnostics not configured")
			return nil
		}
		models, modelErr = d.cfg.Models.ListModels(ctx)
		return nil
	})
	g.Go(func() error {
		quoteErr = d.cfg.Quotes.Probe(ctx)
		return nil
	})
	_ = g.Wait()

	if modelErr != nil {
		logging.APIWarn("diagnostics: list models: %v", modelErr)
		d.println(d.styles.Error.Render("Erro: " + modelErr.Error()))
	} else {
		d.println(d.styles.Success.Render("✅ MODELOS DISPONÍVEIS:"))
		for _, m := range models {
			d.println(" - " + d.styles.Asset.Render(m))
		}
	}
	if quoteErr != nil {
		logging.QuoteWarn("diagnostics: probe: %v", quoteErr)
		d.println(d.styles.Error.Render("❌ Cotação: " + quoteErr.Error()))
	} else {
		d.println(d.styles.Success.Render("✅ Cotação: online"))
	}
}

func (d *Dispatcher) read(ctx context.Context, line string, args []string) {
	if len(args) == 0 {
		d.println("Diga o nome do arquivo. Ex: ler notas.txt")
		return
	}
	// The path is everything after the command word, inner spaces included.
	name := strings.TrimSpace(strings.TrimLeftFunc(line, func(r rune) bool { return !unicode.IsSpace(r) }))
	d.println(d.styles.Level.Render(fmt.Sprintf("📂 Abrindo arquivo '%s'...", name)))

	data, err := d.cfg.ReadFile(name)
	if err == nil && !utf8.Valid(data) {
		err = errors.New("not UTF-8 text")
	}
	if err != nil {
		logging.SessionWarn("read %s: %v", name, err)
		d.println(d.styles.Error.Render("❌ Erro: Não encontrei o arquivo ou não consegui ler."))
		return
	}

	if !d.cfg.Brain.Ready() {
		d.println(d.styles.Error.Render(missingKeyText))
		return
	}
	d.println(d.styles.Thinking.Render(fmt.Sprintf("🤔 %s está lendo...", d.state.Name)))
	reply := d.cfg.Brain.Summarize(ctx, name, string(data))
	d.showReply(reply)
}

func (d *Dispatcher) statement(ctx context.Context, _ string, _ []string) {
	if d.cfg.Ledger == nil {
		d.println("Extrato indisponível.")
		return
	}
	trades, err := d.cfg.Ledger.RecentTrades(ctx, statementSize)
	if err != nil {
		logging.StoreWarn("statement: %v", err)
		d.println(d.styles.Error.Render("❌ Erro ao ler o extrato."))
		return
	}
	if len(trades) == 0 {
		d.println("Nenhuma operação registrada.")
		return
	}
	d.println(d.styles.Header.Render("🧾 EXTRATO"))
	for _, t := range trades {
		kind := "COMPRA"
		if t.Kind == ledger.KindSell {
			kind = "VENDA "
		}
		d.printf("%s  %s  %s  %s @ %s\n",
			t.At.Local().Format("2006-01-02 15:04"), kind, ui.BRL(t.Cash), ui.BTC(t.Asset), ui.BRL(t.Price))
	}

	spent, received, err := d.cfg.Ledger.Totals(ctx)
	if err != nil {
		logging.StoreWarn("statement totals: %v", err)
		return
	}
	d.println("💸 Total comprado: " + d.styles.Money.Render(ui.BRL(spent)) +
		"  Total vendido: " + d.styles.Money.Render(ui.BRL(received)))
}

func (d *Dispatcher) conversations(ctx context.Context, _ string, _ []string) {
	if d.cfg.Ledger == nil {
		d.println("Histórico indisponível.")
		return
	}
	convs, err := d.cfg.Ledger.RecentConversations(ctx, statementSize)
	if err != nil {
		logging.StoreWarn("conversations: %v", err)
		d.println(d.styles.Error.Render("❌ Erro ao ler as conversas."))
		return
	}
	if len(convs) == 0 {
		d.println("Nenhuma conversa registrada.")
		return
	}
	d.println(d.styles.Header.Render("💬 CONVERSAS"))
	for _, c := range convs {
		mark := d.styles.Success.Render("✔")
		if !c.Answered {
			mark = d.styles.Error.Render("✘")
		}
		d.printf("%s  %s %-9s %s\n",
			c.At.Local().Format("2006-01-02 15:04"), mark, c.Mode, perception.TruncateUTF8(c.Prompt, promptPreview))
	}
}

func (d *Dispatcher) usage(context.Context, string, []string) {
	if d.cfg.Usage == nil {
		d.println("Uso indisponível.")
		return
	}
	stats := d.cfg.Usage.Stats()
	d.printf("%s %d chamadas, entrada %d, saída %d, total %d\n",
		d.styles.Info.Render("📈 Tokens:"), stats.Calls, stats.Total.Input, stats.Total.Output, stats.Total.Total)
	for _, mode := range []string{perception.ModeAugmented.String(), perception.ModePlain.String()} {
		if c, ok := stats.ByMode[mode]; ok {
			d.printf("   %-9s %d chamadas, %d tokens\n", mode, c.Calls, c.Total)
		}
	}
}

// converse forwards a free-text line in augmented mode and journals it.
func (d *Dispatcher) converse(ctx context.Context, line string) {
	defer d.journal("Conversei sobre: " + line)

	if !d.cfg.Brain.Ready() {
		d.println(d.styles.Error.Render(missingKeyText))
		d.recordConversation(ctx, perception.ModeAugmented, line, false)
		return
	}
	d.println(d.styles.Thinking.Render(fmt.Sprintf("🤔 %s está analisando (Modelo: %s)...", d.state.Name, d.cfg.Model())))
	reply := d.cfg.Brain.Ask(ctx, line, perception.ModeAugmented)
	d.showReply(reply)
	d.recordConversation(ctx, reply.Mode, line, reply.OK)
}

func (d *Dispatcher) showReply(reply perception.Reply) {
	if !reply.OK {
		d.println(d.styles.Error.Render(fmt.Sprintf("\n❌ %s não conseguiu responder.", d.state.Name)))
		return
	}
	speaker := d.styles.Speaker.Render("💬 " + d.state.Name)
	if reply.Mode == perception.ModeAugmented {
		speaker += " " + d.styles.Via.Render("(via Web):")
	} else {
		speaker = d.styles.Speaker.Render("💬 " + d.state.Name + ":")
	}
	d.println("\n" + speaker + " " + d.render.Answer(reply.Text))
}
