package dialer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outbound-dialer/pkg/twilio"
)

// DefaultRingTimeout is how long the carrier lets a call ring.
const DefaultRingTimeout = 55 * time.Second

// Launcher asks the carrier to place calls from a fixed sender number.
type Launcher struct {
	client      twilio.Client
	from        string
	ringTimeout time.Duration
}

// NewLauncher creates a Launcher.
func NewLauncher(client twilio.Client, from string, ringTimeout time.Duration) *Launcher {
	if ringTimeout <= 0 {
		ringTimeout = DefaultRingTimeout
	}
	return &Launcher{client: client, from: from, ringTimeout: ringTimeout}
}

// Launch places a call to `to` whose instructions are fetched from
// callbackURL, returning the carrier call SID.
func (l *Launcher) Launch(ctx context.Context, to, callbackURL string) (string, error) {
	call, err := l.client.CreateCall(ctx, twilio.CreateCallParams{
		To:          to,
		From:        l.from,
		URL:         callbackURL,
		TimeoutSecs: int(l.ringTimeout / time.Second),
	})
	if err != nil {
		ce := classify("launch", err)
		zap.L().Error("dialer: call launch failed",
			zap.String("phone", to),
			zap.Stringer("kind", ce.Kind),
			zap.Int("status_code", ce.StatusCode),
			zap.String("response", ce.Body),
			zap.Error(err),
		)
		return "", ce
	}

	zap.L().Info("dialer: call launched",
		zap.String("phone", to),
		zap.String("call_sid", call.SID),
		zap.Stringer("status", call.Status),
	)
	return call.SID, nil
}
