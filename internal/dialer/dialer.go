// Package dialer places outbound voice-AI calls for a list of leads.
//
// Each lead goes through the same sequence: normalize and validate the
// number, open a conversation session with the voice-AI provider, bind the
// session to a carrier call through a callback document, launch the call and
// poll the carrier until the call is terminal. Leads run one at a time.
package dialer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outbound-dialer/internal/lead"
	"github.com/sells-group/outbound-dialer/internal/phone"
	"github.com/sells-group/outbound-dialer/pkg/elevenlabs"
	"github.com/sells-group/outbound-dialer/pkg/twilio"
)

// Options configures a Dialer.
type Options struct {
	AgentID            string
	AgentPhoneNumberID string
	FromNumber         string

	CountryPrefix string
	PhoneDigits   int

	SessionTimeout time.Duration
	RingTimeout    time.Duration

	StreamURL string
	EchoURL   string

	PollAttempts int
	PollInterval time.Duration
}

// Outcome is the result of one lead's call attempt. Any step that failed
// leaves Err set; the ids gathered before the failure are kept.
type Outcome struct {
	Lead           lead.Lead
	Phone          string
	ConversationID string
	CallSID        string
	Status         twilio.Status
	Err            error
}

// Success reports whether a session and call exist and the call completed
// or is still in progress.
func (o Outcome) Success() bool {
	if o.ConversationID == "" || o.ConversationID == AbsentConversationID || o.CallSID == "" {
		return false
	}
	return o.Status == twilio.StatusCompleted || o.Status == twilio.StatusInProgress
}

// Dialer runs the per-lead call flow.
type Dialer struct {
	voice         elevenlabs.Client
	agentID       string
	sessions      *SessionInitiator
	callbacks     CallbackBuilder
	launcher      *Launcher
	poller        *Poller
	countryPrefix string
	phoneDigits   int
}

// New creates a Dialer from a voice-AI client and a carrier client.
func New(voice elevenlabs.Client, carrier twilio.Client, opts Options) *Dialer {
	prefix := opts.CountryPrefix
	if prefix == "" {
		prefix = phone.DefaultPrefix
	}
	digits := opts.PhoneDigits
	if digits <= 0 {
		digits = 12
	}
	return &Dialer{
		voice:         voice,
		agentID:       opts.AgentID,
		sessions:      NewSessionInitiator(voice, opts.AgentID, opts.AgentPhoneNumberID, opts.SessionTimeout),
		callbacks:     CallbackBuilder{StreamURL: opts.StreamURL, EchoURL: opts.EchoURL},
		launcher:      NewLauncher(carrier, opts.FromNumber, opts.RingTimeout),
		poller:        NewPoller(carrier, opts.PollAttempts, opts.PollInterval),
		countryPrefix: prefix,
		phoneDigits:   digits,
	}
}

// Call runs the full sequence for l. It never retries.
func (d *Dialer) Call(ctx context.Context, l lead.Lead) Outcome {
	out := Outcome{Lead: l, Phone: phone.Normalize(l.RawPhone, d.countryPrefix)}

	zap.L().Info("dialer: attempting call",
		zap.String("customer", l.Name),
		zap.String("phone", out.Phone),
	)

	if err := phone.Validate(out.Phone, d.phoneDigits); err != nil {
		out.Err = validationError("validate", err)
		return out
	}

	session, err := d.sessions.Start(ctx, out.Phone, l.Name)
	if err != nil {
		out.Err = err
		return out
	}
	out.ConversationID = session.ConversationID

	callbackURL, err := d.callbacks.URL(session.ConversationID)
	if err != nil {
		out.Err = err
		return out
	}
	zap.L().Debug("dialer: callback url", zap.String("url", callbackURL))

	sid, err := d.launcher.Launch(ctx, out.Phone, callbackURL)
	if err != nil {
		out.Err = err
		return out
	}
	out.CallSID = sid

	res := d.poller.Poll(ctx, sid)
	out.Status = res.Status()
	if !res.Resolved {
		out.Err = &CallError{Kind: KindUnresolved, Op: "poll", Err: res.Err}
	}
	return out
}

// InspectAgent fetches and logs the agent configuration. Failures are
// logged and otherwise ignored.
func (d *Dialer) InspectAgent(ctx context.Context) {
	agent, err := d.voice.GetAgent(ctx, d.agentID)
	if err != nil {
		zap.L().Warn("dialer: fetch agent config failed", zap.String("agent_id", d.agentID), zap.Error(err))
		return
	}
	zap.L().Info("dialer: agent config",
		zap.String("agent_id", agent.AgentID),
		zap.String("name", agent.Name),
		zap.Any("config", agent.Raw),
	)
}
