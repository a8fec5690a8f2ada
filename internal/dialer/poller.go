package dialer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outbound-dialer/pkg/twilio"
)

const (
	DefaultPollAttempts = 6
	DefaultPollInterval = 5 * time.Second
)

// PollResult is the outcome of watching one call. Resolved is true only
// when a terminal status was observed; otherwise the status is unresolved
// and Err holds the query error that ended polling early, if any.
type PollResult struct {
	Call     *twilio.Call
	Attempts int
	Resolved bool
	Err      error
}

// Status returns the terminal status, or "" when unresolved.
func (r PollResult) Status() twilio.Status {
	if !r.Resolved || r.Call == nil {
		return ""
	}
	return r.Call.Status
}

// Poller reads a call's status at a fixed interval until it is terminal or
// the attempt budget is spent. It never modifies the call.
type Poller struct {
	client   twilio.Client
	attempts int
	interval time.Duration
}

// NewPoller creates a Poller. Non-positive values select the defaults.
func NewPoller(client twilio.Client, attempts int, interval time.Duration) *Poller {
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{client: client, attempts: attempts, interval: interval}
}

// Poll fetches the call up to the attempt budget, waiting the interval
// between fetches. There is no wait after the final fetch.
func (p *Poller) Poll(ctx context.Context, sid string) PollResult {
	var res PollResult
	for attempt := 1; attempt <= p.attempts; attempt++ {
		res.Attempts = attempt

		call, err := p.client.FetchCall(ctx, sid)
		if err != nil {
			zap.L().Error("dialer: call status query failed",
				zap.String("call_sid", sid),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			res.Err = err
			return res
		}
		res.Call = call

		zap.L().Info("dialer: call status",
			zap.String("call_sid", call.SID),
			zap.Int("attempt", attempt),
			zap.Stringer("status", call.Status),
			zap.String("duration", orNA(call.Duration)),
			zap.String("start_time", orNA(call.StartTime)),
			zap.String("end_time", orNA(call.EndTime)),
		)

		if call.Status.IsTerminal() {
			if call.Status == twilio.StatusFailed {
				zap.L().Warn("dialer: call failed",
					zap.String("call_sid", call.SID),
					zap.Int("error_code", call.ErrorCode),
					zap.String("error_message", call.ErrorMessage),
				)
			}
			res.Resolved = true
			return res
		}
		if call.Status == twilio.StatusInProgress {
			zap.L().Info("dialer: call in progress, continuing to monitor", zap.String("call_sid", call.SID))
		}

		if attempt == p.attempts {
			break
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			res.Err = ctx.Err()
			return res
		case <-timer.C:
		}
	}

	zap.L().Warn("dialer: call status still not final",
		zap.String("call_sid", sid),
		zap.Int("attempts", p.attempts),
	)
	return res
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
