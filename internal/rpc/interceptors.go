package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
	"github.com/shakespeare-advisor/advisor-engine/internal/worker"
)

// RequestIDKey is the metadata key carrying the request id, the gRPC
// counterpart of the X-Request-Id header.
const RequestIDKey = "x-request-id"

type ctxKey struct{}

// RequestID returns the id assigned by the interceptor, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestIDInterceptor adopts the caller's x-request-id or mints a UUID, and
// echoes it back in the response header.
func requestIDInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var id string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(RequestIDKey); len(vals) > 0 && vals[0] != "" {
			id = vals[0]
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, id))
	return handler(context.WithValue(ctx, ctxKey{}, id), req)
}

// loggingInterceptor logs each call with method, status code and duration.
func (s *Server) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info("grpc",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", RequestID(ctx),
	)
	return resp, err
}

// ─── ERROR MAPPING ────────────────────────────────────────────────────────────

func invalidArgument(msg string) error {
	return status.Error(grpccodes.InvalidArgument, msg)
}

// statusErr maps an engine error to a gRPC status. Unexpected errors are
// logged and returned as Internal without details.
func (s *Server) statusErr(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, scoring.ErrUnknownQuestion),
		errors.Is(err, scoring.ErrUnknownPage),
		errors.Is(err, scoring.ErrUnknownTechnology),
		errors.Is(err, scoring.ErrUnknownDeclaration):
		return status.Error(grpccodes.NotFound, err.Error())
	case errors.Is(err, scoring.ErrStaleProcessedAnswer):
		return status.Error(grpccodes.FailedPrecondition, err.Error())
	case errors.Is(err, scoring.ErrInvalidAnswer),
		errors.Is(err, scoring.ErrUnknownAnswerOption):
		return status.Error(grpccodes.InvalidArgument, err.Error())
	case errors.Is(err, worker.ErrStopped):
		return status.Error(grpccodes.Unavailable, "engine is shutting down")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(grpccodes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(grpccodes.Canceled, err.Error())
	}
	s.logger.Error("internal error", "error", err, "request_id", RequestID(ctx))
	return status.Error(grpccodes.Internal, "internal error")
}
