package dialer

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outbound-dialer/internal/lead"
	"github.com/sells-group/outbound-dialer/pkg/elevenlabs"
	elmocks "github.com/sells-group/outbound-dialer/pkg/elevenlabs/mocks"
	"github.com/sells-group/outbound-dialer/pkg/twilio"
	twmocks "github.com/sells-group/outbound-dialer/pkg/twilio/mocks"
)

func testOptions() Options {
	return Options{
		AgentID:            "agent_1",
		AgentPhoneNumberID: "phnum_1",
		FromNumber:         "+15550001111",
		CountryPrefix:      "+91",
		PhoneDigits:        12,
		SessionTimeout:     time.Second,
		RingTimeout:        55 * time.Second,
		PollAttempts:       6,
		PollInterval:       time.Millisecond,
	}
}

func TestCall_Success(t *testing.T) {
	voice := elmocks.NewMockClient(t)
	carrier := twmocks.NewMockClient(t)

	voice.On("OutboundCall", mock.Anything, mock.MatchedBy(func(r elevenlabs.OutboundCallRequest) bool {
		return r.ToNumber == "+919876543210" && r.InitiationData.DynamicVariables["CustomerName"] == "Asha"
	})).Return(&elevenlabs.OutboundCallResponse{ConversationID: "conv_1"}, nil).Once()

	carrier.On("CreateCall", mock.Anything, mock.MatchedBy(func(p twilio.CreateCallParams) bool {
		if p.To != "+919876543210" || p.From != "+15550001111" || p.TimeoutSecs != 55 {
			return false
		}
		u, err := url.Parse(p.URL)
		if err != nil || u.Host != "twimlets.com" {
			return false
		}
		return strings.Contains(u.Query().Get("Twiml"), `value="conv_1"`)
	})).Return(&twilio.Call{SID: "CA1", Status: twilio.StatusQueued}, nil).Once()

	expectStatuses(carrier, "CA1", twilio.StatusRinging, twilio.StatusCompleted)

	d := New(voice, carrier, testOptions())
	out := d.Call(context.Background(), lead.Lead{Name: "Asha", RawPhone: "9876543210", Row: 2})

	require.NoError(t, out.Err)
	assert.True(t, out.Success())
	assert.Equal(t, "+919876543210", out.Phone)
	assert.Equal(t, "conv_1", out.ConversationID)
	assert.Equal(t, "CA1", out.CallSID)
	assert.Equal(t, twilio.StatusCompleted, out.Status)
}

func TestCall_TerminalFailureIsNotSuccess(t *testing.T) {
	voice := elmocks.NewMockClient(t)
	carrier := twmocks.NewMockClient(t)

	voice.On("OutboundCall", mock.Anything, mock.Anything).
		Return(&elevenlabs.OutboundCallResponse{ConversationID: "conv_1"}, nil).Once()
	carrier.On("CreateCall", mock.Anything, mock.Anything).
		Return(&twilio.Call{SID: "CA1"}, nil).Once()
	expectStatuses(carrier, "CA1", twilio.StatusBusy)

	out := New(voice, carrier, testOptions()).Call(context.Background(), lead.Lead{Name: "Asha", RawPhone: "9876543210"})
	require.NoError(t, out.Err)
	assert.Equal(t, twilio.StatusBusy, out.Status)
	assert.False(t, out.Success())
}

func TestCall_InvalidPhoneMakesNoRequests(t *testing.T) {
	voice := elmocks.NewMockClient(t)
	carrier := twmocks.NewMockClient(t)

	for _, raw := range []string{"12345", "+91 98765", "+1 415 555 0100"} {
		out := New(voice, carrier, testOptions()).Call(context.Background(), lead.Lead{Name: "Asha", RawPhone: raw})

		kind, ok := KindOf(out.Err)
		require.True(t, ok, raw)
		assert.Equal(t, KindValidation, kind, raw)
		assert.False(t, out.Success())
	}

	voice.AssertNotCalled(t, "OutboundCall", mock.Anything, mock.Anything)
	carrier.AssertNotCalled(t, "CreateCall", mock.Anything, mock.Anything)
}

func TestCall_AbsentConversationIDStopsBeforeLaunch(t *testing.T) {
	voice := elmocks.NewMockClient(t)
	carrier := twmocks.NewMockClient(t)

	voice.On("OutboundCall", mock.Anything, mock.Anything).
		Return(&elevenlabs.OutboundCallResponse{Success: true}, nil).Once()

	out := New(voice, carrier, testOptions()).Call(context.Background(), lead.Lead{Name: "Asha", RawPhone: "9876543210"})

	kind, ok := KindOf(out.Err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, kind)
	assert.Equal(t, AbsentConversationID, out.ConversationID)
	assert.Empty(t, out.CallSID)
	assert.False(t, out.Success())
	carrier.AssertNotCalled(t, "CreateCall", mock.Anything, mock.Anything)
}

func TestCall_SessionFailure(t *testing.T) {
	voice := elmocks.NewMockClient(t)
	carrier := twmocks.NewMockClient(t)

	voice.On("OutboundCall", mock.Anything, mock.Anything).
		Return(nil, &elevenlabs.APIError{StatusCode: 401, Body: "unauthorized"}).Once()

	out := New(voice, carrier, testOptions()).Call(context.Background(), lead.Lead{Name: "Asha", RawPhone: "9876543210"})

	var ce *CallError
	require.ErrorAs(t, out.Err, &ce)
	assert.Equal(t, KindTransport, ce.Kind)
	assert.Equal(t, 401, ce.StatusCode)
	assert.Equal(t, "unauthorized", ce.Body)
	assert.Empty(t, out.ConversationID)
	carrier.AssertNotCalled(t, "CreateCall", mock.Anything, mock.Anything)
}

func TestCall_LaunchFailure(t *testing.T) {
	voice := elmocks.NewMockClient(t)
	carrier := twmocks.NewMockClient(t)

	voice.On("OutboundCall", mock.Anything, mock.Anything).
		Return(&elevenlabs.OutboundCallResponse{ConversationID: "conv_1"}, nil).Once()
	carrier.On("CreateCall", mock.Anything, mock.Anything).
		Return(nil, &twilio.APIError{StatusCode: 400, Body: `{"code":21211}`, Code: 21211, Message: "Invalid 'To' Phone Number"}).Once()

	out := New(voice, carrier, testOptions()).Call(context.Background(), lead.Lead{Name: "Asha", RawPhone: "9876543210"})

	var ce *CallError
	require.ErrorAs(t, out.Err, &ce)
	assert.Equal(t, KindTransport, ce.Kind)
	assert.Equal(t, "launch", ce.Op)
	assert.Equal(t, 400, ce.StatusCode)
	assert.Equal(t, "conv_1", out.ConversationID)
	assert.Empty(t, out.CallSID)
	carrier.AssertNotCalled(t, "FetchCall", mock.Anything, mock.Anything)
}

func TestCall_Unresolved(t *testing.T) {
	voice := elmocks.NewMockClient(t)
	carrier := twmocks.NewMockClient(t)

	voice.On("OutboundCall", mock.Anything, mock.Anything).
		Return(&elevenlabs.OutboundCallResponse{ConversationID: "conv_1"}, nil).Once()
	carrier.On("CreateCall", mock.Anything, mock.Anything).
		Return(&twilio.Call{SID: "CA1"}, nil).Once()
	carrier.On("FetchCall", mock.Anything, "CA1").
		Return(nil, errors.New("connection reset")).Once()

	out := New(voice, carrier, testOptions()).Call(context.Background(), lead.Lead{Name: "Asha", RawPhone: "9876543210"})

	kind, ok := KindOf(out.Err)
	require.True(t, ok)
	assert.Equal(t, KindUnresolved, kind)
	assert.Equal(t, "CA1", out.CallSID)
	assert.Empty(t, out.Status)
	assert.False(t, out.Success())
}

func TestOutcomeSuccess(t *testing.T) {
	tests := []struct {
		name string
		out  Outcome
		want bool
	}{
		{"completed", Outcome{ConversationID: "c", CallSID: "CA", Status: twilio.StatusCompleted}, true},
		{"in progress", Outcome{ConversationID: "c", CallSID: "CA", Status: twilio.StatusInProgress}, true},
		{"busy", Outcome{ConversationID: "c", CallSID: "CA", Status: twilio.StatusBusy}, false},
		{"no sid", Outcome{ConversationID: "c", Status: twilio.StatusCompleted}, false},
		{"absent conversation", Outcome{ConversationID: AbsentConversationID, CallSID: "CA", Status: twilio.StatusCompleted}, false},
		{"unresolved", Outcome{ConversationID: "c", CallSID: "CA"}, false},
	}
	for _, tt := range tests {
		tt := tt // per-iteration copy (Go <1.22 loop semantics)
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.out.Success())
		})
	}
}

func TestInspectAgent(t *testing.T) {
	voice := elmocks.NewMockClient(t)
	voice.On("GetAgent", mock.Anything, "agent_1").
		Return(&elevenlabs.Agent{AgentID: "agent_1", Name: "Collections"}, nil).Once()

	New(voice, twmocks.NewMockClient(t), testOptions()).InspectAgent(context.Background())
}

func TestInspectAgent_ErrorIgnored(t *testing.T) {
	voice := elmocks.NewMockClient(t)
	voice.On("GetAgent", mock.Anything, "agent_1").
		Return(nil, &elevenlabs.APIError{StatusCode: 404, Body: "not found"}).Once()

	assert.NotPanics(t, func() {
		New(voice, twmocks.NewMockClient(t), testOptions()).InspectAgent(context.Background())
	})
}
