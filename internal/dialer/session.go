package dialer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outbound-dialer/pkg/elevenlabs"
)

// AbsentConversationID marks a session the provider returned without an id.
const AbsentConversationID = "N/A"

// CustomerNameVar is the agent dynamic variable holding the lead's name.
const CustomerNameVar = "CustomerName"

// Session is a voice-AI conversation opened for one lead.
type Session struct {
	ConversationID string
}

// SessionInitiator opens conversation sessions with the voice-AI provider.
type SessionInitiator struct {
	client             elevenlabs.Client
	agentID            string
	agentPhoneNumberID string
	timeout            time.Duration
}

// NewSessionInitiator creates a SessionInitiator. timeout bounds each request.
func NewSessionInitiator(client elevenlabs.Client, agentID, agentPhoneNumberID string, timeout time.Duration) *SessionInitiator {
	return &SessionInitiator{
		client:             client,
		agentID:            agentID,
		agentPhoneNumberID: agentPhoneNumberID,
		timeout:            timeout,
	}
}

// Start opens a session that will call phone and greet the lead by name.
func (s *SessionInitiator) Start(ctx context.Context, phone, name string) (*Session, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := elevenlabs.OutboundCallRequest{
		ToNumber:           phone,
		AgentID:            s.agentID,
		AgentPhoneNumberID: s.agentPhoneNumberID,
		InitiationData: elevenlabs.InitiationData{
			DynamicVariables: map[string]string{CustomerNameVar: name},
		},
	}

	zap.L().Debug("dialer: initiating conversation",
		zap.String("customer", name),
		zap.String("phone", phone),
		zap.String("agent_id", s.agentID),
	)

	resp, err := s.client.OutboundCall(ctx, req)
	if err != nil {
		ce := classify("session", err)
		fields := []zap.Field{
			zap.String("customer", name),
			zap.String("phone", phone),
			zap.Stringer("kind", ce.Kind),
			zap.Error(err),
		}
		if ce.StatusCode != 0 {
			fields = append(fields, zap.Int("status_code", ce.StatusCode), zap.String("response", ce.Body))
		}
		zap.L().Error("dialer: conversation initiation failed", fields...)
		return nil, ce
	}

	id := resp.ConversationID
	if id == "" {
		id = AbsentConversationID
	}
	zap.L().Info("dialer: conversation initiated",
		zap.String("customer", name),
		zap.String("conversation_id", id),
	)
	return &Session{ConversationID: id}, nil
}
