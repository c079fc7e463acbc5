package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// passthrough are errors raised locally, e.g. by a failed token refresh
// inside an interceptor, that already carry their meaning.
var passthrough = []error{
	common.ErrNetworkUnavailable,
	common.ErrPermissionDenied,
	common.ErrRefreshTokenExpired,
	common.ErrUnknown,
	context.Canceled,
	context.DeadlineExceeded,
}

// mapError turns a gRPC status into one of the sentinels of package common.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		for _, known := range passthrough {
			if errors.Is(err, known) {
				return err
			}
		}
		return fmt.Errorf("%w: %v", common.ErrUnknown, err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.ErrNetworkUnavailable
	case codes.Canceled:
		return context.Canceled
	case codes.Unauthenticated:
		switch st.Message() {
		case common.ErrInvalidCredentials.Error():
			return common.ErrInvalidCredentials
		case common.ErrRefreshTokenExpired.Error():
			return common.ErrRefreshTokenExpired
		}
		return common.ErrPermissionDenied
	case codes.PermissionDenied:
		return common.ErrPermissionDenied
	case codes.NotFound:
		if st.Message() == common.ErrUserNotFound.Error() {
			return common.ErrUserNotFound
		}
		return common.ErrNotFound
	case codes.InvalidArgument:
		if st.Message() == common.ErrWeakPassword.Error() {
			return common.ErrWeakPassword
		}
		return common.ErrInvalidArgument
	case codes.AlreadyExists:
		return common.ErrEmailAlreadyInUse
	case codes.ResourceExhausted:
		return common.ErrRateLimited
	default:
		return fmt.Errorf("%w: %s", common.ErrUnknown, st.Message())
	}
}
