package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outbound-dialer/internal/config"
	"github.com/sells-group/outbound-dialer/internal/dialer"
	"github.com/sells-group/outbound-dialer/internal/monitoring"
	"github.com/sells-group/outbound-dialer/internal/store"
	"github.com/sells-group/outbound-dialer/pkg/elevenlabs"
	"github.com/sells-group/outbound-dialer/pkg/twilio"
)

// dialerEnv holds the initialized components shared by serve and run.
type dialerEnv struct {
	Store  store.Store
	Dialer *dialer.Dialer
	Runner *dialer.Runner
}

// Close releases the store.
func (e *dialerEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initDialer validates credentials and wires the store, provider clients,
// dialer and runner. st is used when non-nil; otherwise the configured
// store is opened and migrated.
func initDialer(ctx context.Context, c *config.Config, st store.Store) (*dialerEnv, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if st == nil {
		var err error
		st, err = initStore(ctx, c)
		if err != nil {
			return nil, err
		}
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	d := newDialer(c)

	var inspector dialer.AgentInspector
	if c.Batch.FetchAgentConfig {
		inspector = d
	}
	runner := dialer.NewRunner(st, dialer.NewBatch(d, c.Batch.LeadDelay), inspector).
		WithReporter(monitoring.NewAlerter(c.Monitoring))

	return &dialerEnv{Store: st, Dialer: d, Runner: runner}, nil
}

func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	switch c.Store.Driver {
	case "sqlite":
		dsn := c.Store.DatabaseURL
		if dsn == "" {
			dsn = "dialer.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, c.Store.DatabaseURL)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
}

func newVoiceClient(c *config.Config) elevenlabs.Client {
	return elevenlabs.NewClient(c.ElevenLabs.Key,
		elevenlabs.WithBaseURL(c.ElevenLabs.BaseURL),
		elevenlabs.WithRateLimit(c.ElevenLabs.RateLimit),
	)
}

func newDialer(c *config.Config) *dialer.Dialer {
	carrier := twilio.NewClient(c.Twilio.AccountSID, c.Twilio.AuthToken,
		twilio.WithBaseURL(c.Twilio.BaseURL),
		twilio.WithRateLimit(c.Twilio.RateLimit),
	)

	return dialer.New(newVoiceClient(c), carrier, dialer.Options{
		AgentID:            c.ElevenLabs.AgentID,
		AgentPhoneNumberID: c.ElevenLabs.AgentPhoneNumberID,
		FromNumber:         c.Twilio.FromNumber,
		CountryPrefix:      c.Phone.CountryPrefix,
		PhoneDigits:        c.PhoneDigits(),
		SessionTimeout:     time.Duration(c.ElevenLabs.TimeoutSecs) * time.Second,
		RingTimeout:        time.Duration(c.Twilio.RingTimeoutSecs) * time.Second,
		StreamURL:          c.Callback.StreamURL,
		EchoURL:            c.Callback.EchoURL,
		PollAttempts:       c.Batch.PollAttempts,
		PollInterval:       c.Batch.PollInterval,
	})
}
