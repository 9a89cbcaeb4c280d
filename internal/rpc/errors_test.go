package rpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/matheus3301/classnotes/internal/docstore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusRoundTrip(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("notes/n1: %w", docstore.ErrNotFound), codes.NotFound},
		{docstore.ErrWeakPassword, codes.InvalidArgument},
		{fmt.Errorf("%w: field %q", docstore.ErrInvalidArgument, "a.b"), codes.InvalidArgument},
		{docstore.ErrEmailInUse, codes.AlreadyExists},
		{docstore.ErrInvalidCredentials, codes.Unauthenticated},
		{docstore.ErrUnauthenticated, codes.Unauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wire := ToStatus(tt.err)
			if got := status.Code(wire); got != tt.code {
				t.Errorf("code = %v, want %v", got, tt.code)
			}
			back := FromStatus(wire)
			var want error
			for _, s := range sentinels {
				if errors.Is(tt.err, s.err) {
					want = s.err
					break
				}
			}
			if !errors.Is(back, want) {
				t.Errorf("FromStatus() = %v, want match for %v", back, want)
			}
		})
	}
}

func TestToStatusInternal(t *testing.T) {
	if got := status.Code(ToStatus(errors.New("disk on fire"))); got != codes.Internal {
		t.Errorf("code = %v, want Internal", got)
	}
	if got := status.Code(ToStatus(context.Canceled)); got != codes.Canceled {
		t.Errorf("code = %v, want Canceled", got)
	}
	if ToStatus(nil) != nil {
		t.Error("ToStatus(nil) != nil")
	}
}

func TestFromStatusBareUnauthenticated(t *testing.T) {
	err := FromStatus(status.Error(codes.Unauthenticated, "missing token"))
	if !errors.Is(err, docstore.ErrUnauthenticated) {
		t.Errorf("FromStatus() = %v, want ErrUnauthenticated", err)
	}
}
