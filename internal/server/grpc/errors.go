package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusMapping pairs a service error with the status the client decodes
// back into the same error. An empty message means the text is not
// significant to the client.
var statusMapping = []struct {
	err  error
	code codes.Code
	msg  string
}{
	{common.ErrInvalidCredentials, codes.Unauthenticated, common.ErrInvalidCredentials.Error()},
	{common.ErrTokenExpired, codes.Unauthenticated, common.ErrTokenExpired.Error()},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated, common.ErrRefreshTokenExpired.Error()},
	{common.ErrInvalidToken, codes.Unauthenticated, common.ErrInvalidToken.Error()},
	{common.ErrUserNotFound, codes.NotFound, common.ErrUserNotFound.Error()},
	{common.ErrNotFound, codes.NotFound, common.ErrNotFound.Error()},
	{common.ErrWeakPassword, codes.InvalidArgument, common.ErrWeakPassword.Error()},
	{common.ErrInvalidArgument, codes.InvalidArgument, common.ErrInvalidArgument.Error()},
	{common.ErrEmailAlreadyInUse, codes.AlreadyExists, ""},
	{common.ErrRateLimited, codes.ResourceExhausted, ""},
	{common.ErrPermissionDenied, codes.PermissionDenied, ""},
	{context.Canceled, codes.Canceled, ""},
	{context.DeadlineExceeded, codes.DeadlineExceeded, ""},
}

// toStatus converts a service error into a gRPC status error. Errors that
// already carry a status pass through; unknown ones become Internal with
// a generic message.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, m := range statusMapping {
		if errors.Is(err, m.err) {
			msg := m.msg
			if msg == "" {
				msg = m.err.Error()
			}
			return status.Error(m.code, msg)
		}
	}
	return status.Error(codes.Internal, "internal error")
}
