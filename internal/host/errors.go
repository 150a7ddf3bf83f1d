package host

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

// toStatus maps publisher errors onto gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codeFor(err), err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, endpoint.ErrUnknownShape):
		return codes.NotFound
	case errors.Is(err, endpoint.ErrNotInitialized):
		return codes.FailedPrecondition
	}

	switch endpoint.CodeOf(err) {
	case endpoint.CodeUnknownShape:
		return codes.NotFound
	case endpoint.CodeNotInitialized:
		return codes.FailedPrecondition
	case endpoint.CodeConnection:
		return codes.Unavailable
	case endpoint.CodeInvalidConfig:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}
