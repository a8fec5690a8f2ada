// Package mocks provides test doubles for the twilio client.
package mocks

import (
	"context"

	twilio "github.com/sells-group/outbound-dialer/pkg/twilio"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// CreateCall provides a mock function with given fields: ctx, params
func (_m *MockClient) CreateCall(ctx context.Context, params twilio.CreateCallParams) (*twilio.Call, error) {
	ret := _m.Called(ctx, params)

	if len(ret) == 0 {
		panic("no return value specified for CreateCall")
	}

	var r0 *twilio.Call
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, twilio.CreateCallParams) (*twilio.Call, error)); ok {
		return rf(ctx, params)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*twilio.Call)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// FetchCall provides a mock function with given fields: ctx, sid
func (_m *MockClient) FetchCall(ctx context.Context, sid string) (*twilio.Call, error) {
	ret := _m.Called(ctx, sid)

	if len(ret) == 0 {
		panic("no return value specified for FetchCall")
	}

	var r0 *twilio.Call
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*twilio.Call, error)); ok {
		return rf(ctx, sid)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*twilio.Call)
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
