// Package mocks provides test doubles for the elevenlabs client.
package mocks

import (
	"context"

	elevenlabs "github.com/sells-group/outbound-dialer/pkg/elevenlabs"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// OutboundCall provides a mock function with given fields: ctx, req
func (_m *MockClient) OutboundCall(ctx context.Context, req elevenlabs.OutboundCallRequest) (*elevenlabs.OutboundCallResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for OutboundCall")
	}

	var r0 *elevenlabs.OutboundCallResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, elevenlabs.OutboundCallRequest) (*elevenlabs.OutboundCallResponse, error)); ok {
		return rf(ctx, req)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*elevenlabs.OutboundCallResponse)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// GetAgent provides a mock function with given fields: ctx, agentID
func (_m *MockClient) GetAgent(ctx context.Context, agentID string) (*elevenlabs.Agent, error) {
	ret := _m.Called(ctx, agentID)

	if len(ret) == 0 {
		panic("no return value specified for GetAgent")
	}

	var r0 *elevenlabs.Agent
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*elevenlabs.Agent, error)); ok {
		return rf(ctx, agentID)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*elevenlabs.Agent)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
