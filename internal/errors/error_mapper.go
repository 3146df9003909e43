package errors

import (
	stderrors "errors"
	"net/http"
)

// MapError converts a technical error into a user-friendly AppError.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	technicalMessage := err.Error()
	mapped := func(userMessage, code string, status int) *AppError {
		return NewAppError(technicalMessage, userMessage, code, status, err)
	}

	switch {
	case stderrors.Is(err, ErrInvalidInput):
		return NewAppError(technicalMessage, invalidInputMessage(err), ErrCodeInvalidParameters, http.StatusBadRequest, err)
	case stderrors.Is(err, ErrUnauthorized):
		return mapped(MsgUnauthorized, ErrCodeUnauthorized, http.StatusUnauthorized)
	case stderrors.Is(err, ErrForbidden):
		return mapped(MsgForbidden, ErrCodeForbidden, http.StatusForbidden)
	case stderrors.Is(err, ErrNotFound):
		return mapped(MsgListingNotFound, ErrCodeListingNotFound, http.StatusNotFound)
	case stderrors.Is(err, ErrAlreadyFavorited):
		return mapped(MsgAlreadyFavorited, ErrCodeAlreadyFavorited, http.StatusConflict)
	case stderrors.Is(err, ErrNotFavorited):
		return mapped(MsgNotFavorited, ErrCodeNotFavorited, http.StatusConflict)
	case stderrors.Is(err, ErrEmailTaken):
		return mapped(MsgEmailTaken, ErrCodeConflict, http.StatusConflict)
	case stderrors.Is(err, ErrConflict):
		return mapped(MsgConflict, ErrCodeConflict, http.StatusConflict)
	case stderrors.Is(err, ErrUpstreamUnavailable):
		return mapped(MsgServiceUnavailable, ErrCodeServiceUnavailable, http.StatusServiceUnavailable)
	default:
		return mapped(MsgInternalError, ErrCodeInternal, http.StatusInternalServerError)
	}
}

// invalidInputMessage surfaces the validator's own message, which is
// written for the caller.
func invalidInputMessage(err error) string {
	msg := err.Error()
	suffix := ": " + ErrInvalidInput.Error()
	if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
		return msg[:len(msg)-len(suffix)]
	}
	return MsgInvalidParameters
}
