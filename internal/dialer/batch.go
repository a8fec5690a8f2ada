package dialer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outbound-dialer/internal/lead"
)

// DefaultLeadDelay is the pause after each lead to stay under provider and
// carrier rate limits.
const DefaultLeadDelay = 2 * time.Second

// Caller runs one lead's call flow.
type Caller interface {
	Call(ctx context.Context, l lead.Lead) Outcome
}

// Summary totals one pass over a lead list.
type Summary struct {
	Total     int  `json:"total"`
	Attempted int  `json:"attempted"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Skipped   int  `json:"skipped"`
	Cancelled bool `json:"cancelled"`
}

func (s Summary) String() string {
	counts := fmt.Sprintf("%d of %d leads attempted, %d succeeded, %d failed, %d rows skipped",
		s.Attempted, s.Total, s.Succeeded, s.Failed, s.Skipped)
	if s.Cancelled {
		return "Batch calling interrupted: " + counts + "."
	}
	return "Batch calling completed successfully: " + counts + "."
}

// Batch walks a lead list in order, one call at a time.
type Batch struct {
	caller Caller
	delay  time.Duration
	sleep  func(ctx context.Context, d time.Duration)
}

// NewBatch creates a Batch pausing delay after each lead. A negative delay
// selects DefaultLeadDelay; zero disables the pause.
func NewBatch(caller Caller, delay time.Duration) *Batch {
	if delay < 0 {
		delay = DefaultLeadDelay
	}
	return &Batch{caller: caller, delay: delay, sleep: sleepCtx}
}

// Run calls every lead in order. Cancelling ctx stops the pass before the
// next lead starts; a lead already in flight runs to completion. A failed
// lead never stops the pass.
func (b *Batch) Run(ctx context.Context, leads []lead.Lead) (Summary, []Outcome) {
	sum := Summary{Total: len(leads)}
	outcomes := make([]Outcome, 0, len(leads))

	zap.L().Info("dialer: starting batch", zap.Int("leads", len(leads)))

	for i, l := range leads {
		if ctx.Err() != nil {
			zap.L().Warn("dialer: batch interrupted, stopping",
				zap.Int("processed", i),
				zap.Int("total", len(leads)),
			)
			sum.Cancelled = true
			break
		}

		zap.L().Info("dialer: processing lead",
			zap.Int("index", i+1),
			zap.Int("total", len(leads)),
			zap.Int("row", l.Row),
			zap.String("customer", l.Name),
			zap.String("phone", l.RawPhone),
		)

		out := b.caller.Call(context.WithoutCancel(ctx), l)
		outcomes = append(outcomes, out)
		sum.Attempted++

		if out.Success() {
			sum.Succeeded++
			zap.L().Info("dialer: call succeeded",
				zap.String("customer", l.Name),
				zap.String("conversation_id", out.ConversationID),
				zap.String("call_sid", out.CallSID),
				zap.Stringer("status", out.Status),
			)
		} else {
			sum.Failed++
			fields := []zap.Field{
				zap.String("customer", l.Name),
				zap.String("phone", out.Phone),
				zap.Stringer("status", out.Status),
			}
			if kind, ok := KindOf(out.Err); ok {
				fields = append(fields, zap.Stringer("kind", kind))
			}
			if out.Err != nil {
				fields = append(fields, zap.Error(out.Err))
			}
			zap.L().Warn("dialer: call failed", fields...)
		}

		if b.delay > 0 {
			b.sleep(ctx, b.delay)
		}
	}

	zap.L().Info("dialer: batch finished",
		zap.Int("total", sum.Total),
		zap.Int("attempted", sum.Attempted),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Bool("cancelled", sum.Cancelled),
	)
	return sum, outcomes
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
