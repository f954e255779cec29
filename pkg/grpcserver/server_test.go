package grpcserver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/tair/station-pos/pkg/auth"
	"github.com/tair/station-pos/pkg/middleware"
)

func TestAuthInterceptor(t *testing.T) {
	tokens := auth.NewManager("secret", time.Hour)
	token, err := tokens.Generate(5, "mgr", auth.RoleManager)
	require.NoError(t, err)

	intercept := AuthInterceptor(tokens, "/pos.v1.Public/Ping")
	var seen middleware.Actor
	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		seen, _ = middleware.ActorFromContext(ctx)
		return "ok", nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/pos.v1.Stock/Restock"}

	_, err = intercept(context.Background(), nil, info, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer bogus"))
	_, err = intercept(ctx, nil, info, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
	resp, err := intercept(ctx, nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, uint(5), seen.UserID)

	_, err = intercept(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/pos.v1.Public/Ping"}, handler)
	assert.NoError(t, err)

	_, err = intercept(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
	assert.NoError(t, err)
}

func TestRequireRole(t *testing.T) {
	guard := RequireRole(auth.RoleManager, "/pos.v1.Stock/Adjust")
	ok := func(context.Context, interface{}) (interface{}, error) { return nil, nil }
	adjust := &grpc.UnaryServerInfo{FullMethod: "/pos.v1.Stock/Adjust"}

	cashier := middleware.WithActor(context.Background(), middleware.Actor{UserID: 1, Role: auth.RoleCashier})
	_, err := guard(cashier, nil, adjust, ok)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	admin := middleware.WithActor(context.Background(), middleware.Actor{UserID: 2, Role: auth.RoleAdmin})
	_, err = guard(admin, nil, adjust, ok)
	assert.NoError(t, err)

	_, err = guard(cashier, nil, &grpc.UnaryServerInfo{FullMethod: "/pos.v1.Stock/Get"}, ok)
	assert.NoError(t, err)
}

func TestRecoveryInterceptor(t *testing.T) {
	_, err := RecoveryInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x"}, func(context.Context, interface{}) (interface{}, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

type flakyPinger struct{ fail atomic.Bool }

func (p *flakyPinger) Ping(context.Context) error {
	if p.fail.Load() {
		return errors.New("db down")
	}
	return nil
}

func TestWatchHealth(t *testing.T) {
	srv := New(auth.NewManager("secret", time.Hour))
	pinger := &flakyPinger{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.WatchHealth(ctx, 10*time.Millisecond, pinger)

	servingStatus := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := srv.Health().Check(context.Background(), &healthpb.HealthCheckRequest{})
		if err != nil {
			return healthpb.HealthCheckResponse_UNKNOWN
		}
		return resp.Status
	}

	assert.Eventually(t, func() bool { return servingStatus() == healthpb.HealthCheckResponse_SERVING }, time.Second, 5*time.Millisecond)
	pinger.fail.Store(true)
	assert.Eventually(t, func() bool { return servingStatus() == healthpb.HealthCheckResponse_NOT_SERVING }, time.Second, 5*time.Millisecond)
}
