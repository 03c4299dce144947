package perception

import (
	"context"
	"time"
)

// Sender issues one logical request (including its retries) and reports
// either an answer or absence. It never returns transport errors.
type Sender interface {
	Send(ctx context.Context, req GeminiRequest) (string, bool)
}

// Mode selects how a question is asked.
type Mode int

const (
	// ModePlain asks without any tools.
	ModePlain Mode = iota
	// ModeAugmented enables web search and falls back to ModePlain.
	ModeAugmented
)

func (m Mode) String() string {
	if m == ModeAugmented {
		return "augmented"
	}
	return "plain"
}

// NoticeKind classifies operator-facing diagnostics.
type NoticeKind int

const (
	NoticeMissingKey NoticeKind = iota
	NoticeBackoff
	NoticeRejected
	NoticeTransport
	NoticeDecode
	NoticeGaveUp
	NoticeDegraded
)

// Notice is a side-channel diagnostic. It is not part of any return value.
type Notice struct {
	Kind    NoticeKind
	Attempt int           // attempts made so far
	Wait    time.Duration // backoff about to be slept
	Status  int           // HTTP status, when one was received
	Detail  string        // error body or transport error text
}

// Notifier receives notices.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}

// Sleeper pauses between attempts. It returns early with ctx.Err() when
// ctx is cancelled.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// UsageRecorder receives token counts from successful calls.
type UsageRecorder interface {
	Record(mode, model string, input, output int)
}
