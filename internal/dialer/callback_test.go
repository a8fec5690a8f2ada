package dialer

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackURL(t *testing.T) {
	b := CallbackBuilder{}

	raw, err := b.URL("conv_123")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "twimlets.com", u.Host)
	assert.Equal(t, "/echo", u.Path)

	want := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<Response><Connect><Stream url="wss://api.elevenlabs.io/v1/convai/conversation">` +
		`<Parameter name="conversation_id" value="conv_123"></Parameter>` +
		`</Stream></Connect></Response>`
	assert.Equal(t, want, u.Query().Get("Twiml"))
	assert.NotContains(t, u.RawQuery, "<")
}

func TestCallbackURL_CustomEndpoints(t *testing.T) {
	b := CallbackBuilder{StreamURL: "wss://voice.example.test/stream", EchoURL: "https://echo.example.test/twiml?v=2"}

	raw, err := b.URL("abc")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "echo.example.test", u.Host)
	assert.Equal(t, "2", u.Query().Get("v"))
	assert.Contains(t, u.Query().Get("Twiml"), `url="wss://voice.example.test/stream"`)
}

func TestCallbackURL_RejectsAbsentIDs(t *testing.T) {
	for _, id := range []string{"", AbsentConversationID} {
		id := id // per-iteration copy (Go <1.22 loop semantics)
		t.Run(id, func(t *testing.T) {
			raw, err := CallbackBuilder{}.URL(id)
			require.Error(t, err)
			assert.Empty(t, raw)

			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, KindValidation, kind)
		})
	}
}

func TestCallbackURL_BadEchoURL(t *testing.T) {
	_, err := CallbackBuilder{EchoURL: "://nope"}.URL("conv_1")
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindValidation, kind)
}
