package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/folio-backend/internal/domain"
)

// ErrorCodeTrailer carries the domain error code of a failed call
const ErrorCodeTrailer = "x-error-code"

// mapError converts domain errors to gRPC status errors.
// Internal failures are logged here and returned with a generic message.
func (s *Server) mapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	code := domain.CodeOf(err)
	_ = grpc.SetTrailer(ctx, metadata.Pairs(ErrorCodeTrailer, string(code)))

	switch {
	case domain.IsValidation(err):
		return status.Error(codes.InvalidArgument, message(err))
	case domain.IsNotFound(err):
		return status.Error(codes.NotFound, message(err))
	}

	s.Log.Error().Err(err).Str("code", string(code)).Msg("request failed")
	return status.Error(codes.Internal, "internal error")
}

// invalidArgument reports a malformed request field
func invalidArgument(ctx context.Context, format string, args ...any) error {
	_ = grpc.SetTrailer(ctx, metadata.Pairs(ErrorCodeTrailer, "INVALID_ARGUMENT"))
	return status.Errorf(codes.InvalidArgument, format, args...)
}

func message(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
