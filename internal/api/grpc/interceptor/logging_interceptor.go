package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"partytab-backend/internal/logger"
	"partytab-backend/internal/metrics"
)

// Logging logs every unary call and records its latency under the full
// method name. Panics in handlers are turned into codes.Internal.
func Logging(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "gRPC handler panicked", "method", info.FullMethod, "panic", r)
				err = status.Error(codes.Internal, "internal server error")
			}
			code := status.Code(err)
			m.ObserveRequest(info.FullMethod, "GRPC", int(code), time.Since(start))
			logger.InfoContext(ctx, "gRPC request", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
		}()
		return handler(ctx, req)
	}
}
