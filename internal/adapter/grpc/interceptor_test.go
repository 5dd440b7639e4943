package grpc

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestAuthInterceptor(t *testing.T) {
	validToken := "test-token-123"
	userID := uuid.New()
	interceptor := AuthInterceptor(validToken)

	tests := []struct {
		name           string
		ctx            context.Context
		method         string
		handlerCalled  bool
		expectedCode   codes.Code
		expectedErrMsg string
		expectUser     bool
	}{
		{
			name: "Valid Token",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("authorization", validToken, UserIDHeader, userID.String()),
			),
			handlerCalled: true,
			expectedCode:  codes.OK,
			expectUser:    true,
		},
		{
			name: "Bearer Token",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("authorization", "Bearer "+validToken, UserIDHeader, userID.String()),
			),
			handlerCalled: true,
			expectedCode:  codes.OK,
			expectUser:    true,
		},
		{
			name: "Invalid Token",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("authorization", "wrong-token", UserIDHeader, userID.String()),
			),
			handlerCalled:  false,
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "invalid token",
		},
		{
			name:           "Missing Token",
			ctx:            context.Background(),
			handlerCalled:  false,
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "missing metadata",
		},
		{
			name: "Missing Authorization Header",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("other-header", "value"),
			),
			handlerCalled:  false,
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "missing authorization header",
		},
		{
			name: "Missing User Header",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("authorization", validToken),
			),
			handlerCalled:  false,
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "missing x-user-id header",
		},
		{
			name: "Malformed User Header",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("authorization", validToken, UserIDHeader, "not-a-uuid"),
			),
			handlerCalled:  false,
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "invalid x-user-id header",
		},
		{
			name:          "Health Check Skips Auth",
			ctx:           context.Background(),
			method:        "/grpc.health.v1.Health/Check",
			handlerCalled: true,
			expectedCode:  codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			var gotUser uuid.UUID
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				handlerCalled = true
				gotUser, _ = UserIDFromContext(ctx)
				return "success", nil
			}

			method := tt.method
			if method == "" {
				method = FullMethod("GetPortfolio")
			}
			info := &grpc.UnaryServerInfo{FullMethod: method}

			resp, err := interceptor(tt.ctx, "test-request", info, handler)

			assert.Equal(t, tt.handlerCalled, handlerCalled, "handler called status mismatch")

			if tt.expectedCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "success", resp)
				if tt.expectUser {
					assert.Equal(t, userID, gotUser)
				}
			} else {
				assert.Error(t, err)
				st, ok := status.FromError(err)
				assert.True(t, ok, "error should be a gRPC status")
				assert.Equal(t, tt.expectedCode, st.Code())
				assert.Contains(t, st.Message(), tt.expectedErrMsg)
			}
		})
	}
}

func TestRateLimitInterceptor(t *testing.T) {
	interceptor := RateLimitInterceptor(0.001, 2)
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod("GetPortfolio")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	}

	alice := WithUserID(context.Background(), uuid.New())
	bob := WithUserID(context.Background(), uuid.New())

	for i := 0; i < 2; i++ {
		_, err := interceptor(alice, nil, info, handler)
		require.NoError(t, err)
	}

	_, err := interceptor(alice, nil, info, handler)
	require.Error(t, err)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	// Limits are tracked per user
	_, err = interceptor(bob, nil, info, handler)
	assert.NoError(t, err)
}

func TestLimiterSet_EvictsIdleUsers(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	limiters := newLimiterSet(1, 1, time.Minute, clock)

	first, second := uuid.New(), uuid.New()
	firstLimiter := limiters.get(first)
	limiters.get(second)
	assert.Equal(t, 2, limiters.size())

	now = now.Add(30 * time.Second)
	assert.Same(t, firstLimiter, limiters.get(first))

	// second has been idle for a full minute, first for 30s
	now = now.Add(30 * time.Second)
	limiters.get(first)
	assert.Equal(t, 1, limiters.size())

	now = now.Add(2 * time.Minute)
	limiters.get(second)
	assert.Equal(t, 1, limiters.size())
	assert.NotSame(t, firstLimiter, limiters.get(first))
}

func TestRecoveryInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := RecoveryInterceptor(zerolog.New(&buf))
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod("CreatePlan")}

	resp, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("projection overflow")
	})

	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Contains(t, buf.String(), `"panic":"projection overflow"`)
	assert.Contains(t, buf.String(), FullMethod("CreatePlan"))

	resp, err = interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestLoggingInterceptor(t *testing.T) {
	tests := []struct {
		name      string
		handleErr error
		wantLevel string
		wantCode  string
	}{
		{name: "Success", wantLevel: `"level":"info"`, wantCode: `"code":"OK"`},
		{name: "Not Found", handleErr: status.Error(codes.NotFound, "missing"), wantLevel: `"level":"info"`, wantCode: `"code":"NotFound"`},
		{name: "Internal", handleErr: status.Error(codes.Internal, "boom"), wantLevel: `"level":"error"`, wantCode: `"code":"Internal"`},
		{name: "Plain Error", handleErr: errors.New("boom"), wantLevel: `"level":"error"`, wantCode: `"code":"Unknown"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			interceptor := LoggingInterceptor(zerolog.New(&buf))
			info := &grpc.UnaryServerInfo{FullMethod: FullMethod("GetPlan")}

			_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, tt.handleErr
			})

			assert.Equal(t, tt.handleErr, err)
			out := buf.String()
			assert.Contains(t, out, tt.wantLevel)
			assert.Contains(t, out, tt.wantCode)
			assert.Contains(t, out, "/folio.v1.PortfolioService/GetPlan")
		})
	}
}
