package grpcx

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/quick-clinic/realtime-service/pkg/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor logs and recovers unary calls. Calls that arrive
// without a deadline get defaultTimeout (10s when unset).
func UnaryServerInterceptor(defaultTimeout time.Duration) grpc.UnaryServerInterceptor {
	if defaultTimeout <= 0 {
		defaultTimeout = 10 * time.Second
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
			defer cancel()
		}
		defer observe(ctx, "unary", info.FullMethod, time.Now(), &err)

		return handler(ctx, req)
	}
}

func StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer observe(ss.Context(), "stream", info.FullMethod, time.Now(), &err)

		return handler(srv, ss)
	}
}

// observe must be deferred directly so recover sees the handler panic.
func observe(ctx context.Context, kind, method string, start time.Time, errp *error) {
	log := logger.Ctx(ctx)
	if r := recover(); r != nil {
		log.Error("grpc "+kind+" panic",
			"method", method,
			"panic", r,
			"stack", string(debug.Stack()))
		*errp = status.Error(codes.Internal, "internal server error")
	}

	err := *errp
	attrs := []any{
		"method", method,
		"dur_ms", time.Since(start).Milliseconds(),
		"code", status.Code(err).String(),
	}
	if err != nil {
		attrs = append(attrs, "err", err.Error())
	}
	log.Log(ctx, levelFor(err), "grpc "+kind, attrs...)
}

func levelFor(err error) slog.Level {
	switch status.Code(err) {
	case codes.OK, codes.Canceled, codes.NotFound:
		return slog.LevelInfo
	case codes.Internal, codes.Unknown, codes.DataLoss:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
