package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matheus3301/classnotes/internal/docstore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var sentinels = []struct {
	err  error
	code codes.Code
}{
	{docstore.ErrNotFound, codes.NotFound},
	{docstore.ErrWeakPassword, codes.InvalidArgument},
	{docstore.ErrInvalidArgument, codes.InvalidArgument},
	{docstore.ErrEmailInUse, codes.AlreadyExists},
	{docstore.ErrInvalidCredentials, codes.Unauthenticated},
	{docstore.ErrUnauthenticated, codes.Unauthenticated},
}

// ToStatus converts a docstore error into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return status.Error(s.code, err.Error())
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// FromStatus converts a gRPC status error back into an error that matches
// the docstore sentinel it was made from.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, s := range sentinels {
		if st.Code() == s.code && strings.Contains(st.Message(), s.err.Error()) {
			return fmt.Errorf("%w (%s)", s.err, st.Message())
		}
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w (%s)", docstore.ErrUnauthenticated, st.Message())
	case codes.Canceled:
		return fmt.Errorf("%w (%s)", context.Canceled, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w (%s)", context.DeadlineExceeded, st.Message())
	}
	return err
}
