package api

import (
	"context"
	"strings"

	"github.com/matheus3301/classnotes/internal/docserver"
	"github.com/matheus3301/classnotes/internal/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	grpcstatus "google.golang.org/grpc/status"
)

type claimsKey struct{}

// ClaimsFromContext returns the verified token claims of the caller.
func ClaimsFromContext(ctx context.Context) (*docserver.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*docserver.Claims)
	return c, ok
}

// Authenticator verifies the bearer token of every non-public call.
type Authenticator struct {
	accounts *docserver.Accounts
	logger   *zap.Logger
}

// NewAuthenticator creates the token-checking interceptors.
func NewAuthenticator(accounts *docserver.Accounts, logger *zap.Logger) *Authenticator {
	return &Authenticator{accounts: accounts, logger: logger}
}

// Unary returns the unary server interceptor.
func (a *Authenticator) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := a.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// Stream returns the stream server interceptor.
func (a *Authenticator) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := a.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
	}
}

func (a *Authenticator) authenticate(ctx context.Context, method string) (context.Context, error) {
	if rpc.Public(method) {
		return ctx, nil
	}
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, grpcstatus.Error(codes.Unauthenticated, "missing bearer token")
	}
	token, ok := strings.CutPrefix(values[0], "Bearer ")
	if !ok {
		return nil, grpcstatus.Error(codes.Unauthenticated, "malformed authorization header")
	}
	claims, err := a.accounts.Verify(token)
	if err != nil {
		a.logger.Debug("rejected token", zap.String("method", method), zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return context.WithValue(ctx, claimsKey{}, claims), nil
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context { return s.ctx }
