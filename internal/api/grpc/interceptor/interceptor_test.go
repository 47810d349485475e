package interceptor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"partytab-backend/internal/api/grpc/interceptor"
	"partytab-backend/internal/metrics"
	"partytab-backend/internal/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAuthInterceptor(t *testing.T) {
	tokens := security.NewTokenManager(testSecret, time.Hour)
	unary := interceptor.NewAuthInterceptor(tokens).Unary()

	var seenUser int32
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		id, err := interceptor.UserIDFromContext(ctx)
		if err != nil {
			return nil, err
		}
		seenUser = id
		return "ok", nil
	}
	protected := &grpc.UnaryServerInfo{FullMethod: "/partytab.v1.TabService/ListTabs"}

	t.Run("PublicMethodSkipsAuth", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
		resp, err := unary(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return "serving", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "serving", resp)
	})

	t.Run("MissingToken", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.New(nil))
		_, err := unary(ctx, nil, protected, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("InvalidToken", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := unary(ctx, nil, protected, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("ValidTokenOverridesUserHeader", func(t *testing.T) {
		token, err := tokens.GenerateAccessToken(20, "bob@example.com")
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(),
			metadata.Pairs("authorization", "Bearer "+token, "user-id", "999"))

		resp, err := unary(ctx, nil, protected, handler)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
		assert.Equal(t, int32(20), seenUser)
	})
}

type fakeServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *fakeServerStream) Context() context.Context {
	return s.ctx
}

func TestAuthInterceptor_Stream(t *testing.T) {
	tokens := security.NewTokenManager(testSecret, time.Hour)
	stream := interceptor.NewAuthInterceptor(tokens).Stream()
	reflectionInfo := &grpc.StreamServerInfo{
		FullMethod:     "/grpc.reflection.v1.ServerReflection/ServerReflectionInfo",
		IsClientStream: true,
		IsServerStream: true,
	}

	var seenUser int32
	handler := func(srv interface{}, ss grpc.ServerStream) error {
		id, err := interceptor.UserIDFromContext(ss.Context())
		if err != nil {
			return err
		}
		seenUser = id
		return nil
	}

	t.Run("HealthWatchIsPublic", func(t *testing.T) {
		called := false
		info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch", IsServerStream: true}
		err := stream(nil, &fakeServerStream{ctx: context.Background()}, info, func(srv interface{}, ss grpc.ServerStream) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("ReflectionWithoutTokenRejected", func(t *testing.T) {
		called := false
		err := stream(nil, &fakeServerStream{ctx: context.Background()}, reflectionInfo, func(srv interface{}, ss grpc.ServerStream) error {
			called = true
			return nil
		})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.False(t, called)
	})

	t.Run("ReflectionWithInvalidTokenRejected", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		err := stream(nil, &fakeServerStream{ctx: ctx}, reflectionInfo, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("ReflectionWithValidToken", func(t *testing.T) {
		token, err := tokens.GenerateAccessToken(30, "carol@example.com")
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(),
			metadata.Pairs("authorization", "Bearer "+token, "user-id", "999"))

		err = stream(nil, &fakeServerStream{ctx: ctx}, reflectionInfo, handler)

		require.NoError(t, err)
		assert.Equal(t, int32(30), seenUser)
	})
}

func TestLoggingInterceptor(t *testing.T) {
	unary := interceptor.Logging(metrics.New())
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	t.Run("PassesThrough", func(t *testing.T) {
		resp, err := unary(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return "serving", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "serving", resp)
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		_, err := unary(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			panic("boom")
		})
		assert.Equal(t, codes.Internal, status.Code(err))
	})
}
