package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/outbound-dialer/internal/config"
)

// handleFunc registers a "METHOD /path" pattern on mux, rejecting other
// methods with 405 (method-qualified ServeMux patterns need Go 1.22).
func handleFunc(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method && !(method == http.MethodGet && r.Method == http.MethodHead) {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}

// fakeProviders serves the voice-AI and carrier endpoints a batch touches.
type fakeProviders struct {
	mu      sync.Mutex
	dialed  []string
	agentOK bool
}

func (f *fakeProviders) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dialed...)
}

func newFakeProviders(t *testing.T) (*fakeProviders, *config.Config) {
	t.Helper()
	f := &fakeProviders{agentOK: true}

	voice := http.NewServeMux()
	handleFunc(voice, "POST /v1/convai/twilio/outbound-call", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ToNumber string `json:"to_number"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.dialed = append(f.dialed, req.ToNumber)
		f.mu.Unlock()
		w.Write([]byte(`{"success":true,"conversation_id":"conv_1"}`))
	})
	handleFunc(voice, "GET /v1/convai/agents/agent_1", func(w http.ResponseWriter, r *http.Request) {
		if !f.agentOK {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"agent not found"}`))
			return
		}
		w.Write([]byte(`{"agent_id":"agent_1","name":"Collections","conversation_config":{"agent":{"language":"en"}}}`))
	})
	voiceSrv := httptest.NewServer(voice)
	t.Cleanup(voiceSrv.Close)

	carrier := http.NewServeMux()
	handleFunc(carrier, "POST /2010-04-01/Accounts/AC123/Calls.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"CA1","status":"queued"}`))
	})
	handleFunc(carrier, "GET /2010-04-01/Accounts/AC123/Calls/CA1.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sid":"CA1","status":"completed","duration":"42"}`))
	})
	carrierSrv := httptest.NewServer(carrier)
	t.Cleanup(carrierSrv.Close)

	c := &config.Config{
		ElevenLabs: config.ElevenLabsConfig{
			Key:                "xi-key",
			AgentID:            "agent_1",
			AgentPhoneNumberID: "phnum_1",
			BaseURL:            voiceSrv.URL,
			TimeoutSecs:        5,
		},
		Twilio: config.TwilioConfig{
			AccountSID:      "AC123",
			AuthToken:       "secret",
			FromNumber:      "+15550001111",
			BaseURL:         carrierSrv.URL,
			RingTimeoutSecs: 55,
		},
		Phone: config.PhoneConfig{CountryPrefix: "+91", NationalDigits: 10},
		Batch: config.BatchConfig{
			PollAttempts:     2,
			PollInterval:     time.Millisecond,
			FetchAgentConfig: true,
		},
		Store: config.StoreConfig{Driver: "memory"},
	}
	return f, c
}
