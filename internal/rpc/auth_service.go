package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const AuthServiceName = "classnotes.v1.AuthService"

// AuthServer is implemented by the daemon.
type AuthServer interface {
	SignIn(context.Context, *Credentials) (*AuthResponse, error)
	SignUp(context.Context, *Credentials) (*AuthResponse, error)
	// Me resolves the caller's token to its account.
	Me(context.Context, *Empty) (*UserResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*UserResponse, error)
}

// RegisterAuthServer attaches srv to s.
func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&authServiceDesc, srv)
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignIn", Handler: unary(AuthServiceName, "SignIn", AuthServer.SignIn)},
		{MethodName: "SignUp", Handler: unary(AuthServiceName, "SignUp", AuthServer.SignUp)},
		{MethodName: "Me", Handler: unary(AuthServiceName, "Me", AuthServer.Me)},
		{MethodName: "UpdateProfile", Handler: unary(AuthServiceName, "UpdateProfile", AuthServer.UpdateProfile)},
	},
	Metadata: "classnotes/v1/auth",
}

// AuthClient calls AuthService.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func (c *AuthClient) SignIn(ctx context.Context, in *Credentials, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, AuthServiceName, "SignIn", in, opts)
}

func (c *AuthClient) SignUp(ctx context.Context, in *Credentials, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, AuthServiceName, "SignUp", in, opts)
}

func (c *AuthClient) Me(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AuthServiceName, "Me", in, opts)
}

func (c *AuthClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AuthServiceName, "UpdateProfile", in, opts)
}
