package service

import (
	"errors"

	"github.com/desivolt/muzdesk/internal/repository"
	apperrors "github.com/desivolt/muzdesk/pkg/util/errorutil"
)

// readError maps a repository read failure. Anything but a missing row means
// the store could not answer.
func readError(err error, resource string, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.NewStoreUnavailable(err)
}

// writeError maps a repository write failure. A ticket closed between the
// guard check and the write is a lifecycle conflict.
func writeError(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", nil)
	}
	if errors.Is(err, repository.ErrTicketClosed) {
		return apperrors.NewConflict("ticket was closed before the change was saved", nil)
	}
	return apperrors.NewWriteRejected(message, err)
}
