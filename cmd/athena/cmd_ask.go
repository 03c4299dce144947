package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"athena/internal/ledger"
	"athena/internal/logging"
	"athena/internal/perception"
)

// errNoAnswer makes `athena ask` exit non-zero without printing twice.
var errNoAnswer = errors.New("no answer")

// runAsk asks one question in augmented mode.
func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	out := cmd.OutOrStdout()
	a := newApp(workspace, cfg, out)
	defer a.close()

	question := strings.Join(args, " ")
	state := a.loadCreature()
	reply := a.orchestrator(state.Name).Ask(ctx, question, perception.ModeAugmented)

	if a.ledger != nil {
		_, err := a.ledger.RecordConversation(ctx, ledger.Conversation{
			SessionID: uuid.NewString(),
			Mode:      reply.Mode.String(),
			Prompt:    question,
			Answered:  reply.OK,
		})
		if err != nil {
			logging.StoreWarn("ledger: %v", err)
		}
	}

	if !reply.OK {
		fmt.Fprintln(out, a.styles.Error.Render(fmt.Sprintf("❌ %s não conseguiu responder.", state.Name)))
		return errNoAnswer
	}
	fmt.Fprintln(out, a.renderer.Answer(reply.Text))
	return nil
}
