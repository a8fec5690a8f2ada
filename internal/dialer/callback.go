package dialer

import (
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outbound-dialer/pkg/twilio"
)

const (
	DefaultStreamURL = "wss://api.elevenlabs.io/v1/convai/conversation"
	DefaultEchoURL   = "https://twimlets.com/echo"

	conversationParam = "conversation_id"
)

// CallbackBuilder turns a conversation id into the URL the carrier fetches
// its call instructions from.
type CallbackBuilder struct {
	StreamURL string
	EchoURL   string
}

// URL returns an echo URL serving a TwiML document that streams the call
// audio into the given conversation. Absent ids are rejected.
func (b CallbackBuilder) URL(conversationID string) (string, error) {
	if conversationID == "" || conversationID == AbsentConversationID {
		return "", validationError("callback", eris.Errorf("invalid conversation id %q", conversationID))
	}

	streamURL := b.StreamURL
	if streamURL == "" {
		streamURL = DefaultStreamURL
	}
	echoURL := b.EchoURL
	if echoURL == "" {
		echoURL = DefaultEchoURL
	}

	doc, err := twilio.StreamConnect(streamURL, twilio.Parameter{Name: conversationParam, Value: conversationID})
	if err != nil {
		return "", validationError("callback", err)
	}

	u, err := url.Parse(echoURL)
	if err != nil {
		return "", validationError("callback", eris.Wrap(err, "parse echo url"))
	}
	q := u.Query()
	q.Set("Twiml", string(doc))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
