package rpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
)

func fullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// unary adapts a typed server method to a grpc.MethodHandler.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	info := &grpc.UnaryServerInfo{FullMethod: fullMethod(service, method)}
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		i := *info
		i.Server = srv
		return interceptor(ctx, in, &i, func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		})
	}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, fullMethod(service, method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Public reports whether a method may be called without a token.
func Public(fullMethodName string) bool {
	switch fullMethodName {
	case fullMethod(AuthServiceName, "SignIn"), fullMethod(AuthServiceName, "SignUp"):
		return true
	}
	return strings.HasPrefix(fullMethodName, "/grpc.health.v1.Health/")
}
