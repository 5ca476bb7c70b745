package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Domenick1991/eventbooking/internal/auth"
	"github.com/Domenick1991/eventbooking/internal/domain"
)

const authorizationKey = "authorization"

type SessionParser interface {
	ParseBearer(header string) (domain.Session, error)
}

type sessionKey struct{}

func ContextWithSession(ctx context.Context, session domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the caller set by the auth interceptor; anonymous callers get a zero
// session.
func SessionFromContext(ctx context.Context) domain.Session {
	session, _ := ctx.Value(sessionKey{}).(domain.Session)
	return session
}

// AuthInterceptor resolves the bearer token in the call metadata. Methods listed in public accept
// anonymous callers but still pick up a session when a valid token is sent.
func AuthInterceptor(tokens SessionParser, public map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		header := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(authorizationKey); len(values) > 0 {
				header = values[0]
			}
		}

		session, err := tokens.ParseBearer(header)
		if err != nil {
			if public[info.FullMethod] {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(ContextWithSession(ctx, session), req)
	}
}

// ErrorInterceptor turns domain errors into gRPC statuses and logs every call.
func ErrorInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		err = ToStatus(err)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}
		switch code {
		case codes.OK:
			log.Info("rpc completed", fields...)
		case codes.Internal, codes.Unknown:
			log.Error("rpc failed", fields...)
		default:
			log.Warn("rpc rejected", fields...)
		}
		return resp, err
	}
}

// ToStatus maps err to a gRPC status. Errors that already carry a status pass through; store failures
// are reported as Internal without their cause.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if capErr, ok := domain.IsCapacityError(err); ok {
		return status.Error(codes.ResourceExhausted, fmt.Sprintf("Only %d tickets left", capErr.Available))
	}

	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case domain.IsValidationError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.IsNotFoundError(err):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrStaleBooking):
		return status.Error(codes.Aborted, err.Error())
	case domain.IsConflictError(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
