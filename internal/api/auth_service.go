package api

import (
	"context"

	"github.com/matheus3301/classnotes/internal/docserver"
	"github.com/matheus3301/classnotes/internal/docstore"
	"github.com/matheus3301/classnotes/internal/rpc"
	"go.uber.org/zap"
)

// AuthService implements rpc.AuthServer.
type AuthService struct {
	accounts *docserver.Accounts
	logger   *zap.Logger
}

var _ rpc.AuthServer = (*AuthService)(nil)

// NewAuthService creates a new auth service.
func NewAuthService(accounts *docserver.Accounts, logger *zap.Logger) *AuthService {
	return &AuthService{accounts: accounts, logger: logger}
}

func (s *AuthService) SignIn(ctx context.Context, in *rpc.Credentials) (*rpc.AuthResponse, error) {
	sess, err := s.accounts.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		s.logger.Info("sign-in rejected", zap.String("email", in.Email), zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	s.logger.Info("signed in", zap.String("uid", sess.User.UID))
	return authResponse(sess), nil
}

func (s *AuthService) SignUp(ctx context.Context, in *rpc.Credentials) (*rpc.AuthResponse, error) {
	sess, err := s.accounts.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		s.logger.Info("sign-up rejected", zap.String("email", in.Email), zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	s.logger.Info("account created", zap.String("uid", sess.User.UID))
	return authResponse(sess), nil
}

func (s *AuthService) Me(ctx context.Context, _ *rpc.Empty) (*rpc.UserResponse, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, rpc.ToStatus(docstore.ErrUnauthenticated)
	}
	u, err := s.accounts.Lookup(ctx, claims.Subject)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.UserResponse{User: *u}, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, in *rpc.UpdateProfileRequest) (*rpc.UserResponse, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, rpc.ToStatus(docstore.ErrUnauthenticated)
	}
	u, err := s.accounts.UpdateProfile(ctx, claims.Subject, in.DisplayName)
	if err != nil {
		s.logger.Error("update profile failed", zap.String("uid", claims.Subject), zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return &rpc.UserResponse{User: *u}, nil
}

func authResponse(sess *docserver.Session) *rpc.AuthResponse {
	return &rpc.AuthResponse{
		User:      sess.User,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UnixMilli(),
	}
}
