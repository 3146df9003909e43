package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fmt.Errorf("get listing 1: %w", ErrNotFound), http.StatusNotFound, ErrCodeListingNotFound},
		{"forbidden", fmt.Errorf("update listing: %w", ErrForbidden), http.StatusForbidden, ErrCodeForbidden},
		{"already favorited", fmt.Errorf("add favorite: %w", ErrAlreadyFavorited), http.StatusConflict, ErrCodeAlreadyFavorited},
		{"not favorited", ErrNotFavorited, http.StatusConflict, ErrCodeNotFavorited},
		{"email taken", ErrEmailTaken, http.StatusConflict, ErrCodeConflict},
		{"upstream", Upstream("find listings", stderrors.New("connection refused")), http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"invalid input", InvalidInput("minPrice must be a number"), http.StatusBadRequest, ErrCodeInvalidParameters},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", got.HTTPStatus, tt.wantStatus)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if !stderrors.Is(got, tt.err) {
				t.Error("mapped error does not wrap the original")
			}
		})
	}
}

func TestMapError_InvalidInputMessage(t *testing.T) {
	got := MapError(InvalidInput("minPrice must be a non-negative number"))
	if got.UserMessage != "minPrice must be a non-negative number" {
		t.Errorf("UserMessage = %q", got.UserMessage)
	}
}

func TestMapError_PassesAppErrorThrough(t *testing.T) {
	appErr := NewAppError("tech", "user", ErrCodeRateLimited, http.StatusTooManyRequests, nil)
	if got := MapError(fmt.Errorf("wrapped: %w", appErr)); got != appErr {
		t.Errorf("MapError = %+v, want the wrapped AppError", got)
	}
	if MapError(nil) != nil {
		t.Error("MapError(nil) != nil")
	}
}

func TestConflictKinds(t *testing.T) {
	for _, err := range []error{ErrAlreadyFavorited, ErrNotFavorited, ErrEmailTaken} {
		if !stderrors.Is(err, ErrConflict) {
			t.Errorf("%v is not a conflict", err)
		}
	}
}
