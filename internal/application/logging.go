package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/eventshare/internal/api"
	"github.com/example/eventshare/internal/logging"
	"github.com/example/eventshare/internal/selection"
)

func controllerLogger(ctx context.Context, base *slog.Logger, controller, operation string, attrs ...any) *slog.Logger {
	return logging.Component(ctx, base, controller, operation, attrs...)
}

// ErrorKind maps errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, selection.ErrNothingSelected),
		errors.Is(err, ErrInvalidEventLink), errors.Is(err, ErrInvalidLinkType):
		return "validation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrNotSignedIn), errors.Is(err, ErrNotAllowed), api.IsUnauthorized(err):
		return "unauthorized"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoAlbumOpen), api.IsStatus(err, 404):
		return "not_found"
	case api.IsNetwork(err):
		return "network"
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return "api"
	}
	return "unexpected"
}
