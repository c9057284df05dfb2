package enrich

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := newError(ErrExtraction, "c-1", cause, "Failed to extract dossier")

	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, "Failed to extract dossier: boom", err.Error())
	assert.Equal(t, "Failed to extract dossier", Message(err))
}

func TestError_Strings(t *testing.T) {
	assert.Equal(t, "only msg", newError(ErrInvalidInput, "", nil, "only msg").Error())
	assert.Equal(t, "cause", newError(ErrInvalidInput, "", errors.New("cause"), "").Error())
	assert.Equal(t, "INVALID_INPUT", newError(ErrInvalidInput, "", nil, "").Error())
	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{newError(ErrInvalidInput, "", nil, "x"), http.StatusBadRequest},
		{newError(ErrSourceUnavailable, "", nil, "x"), http.StatusNotFound},
		{newError(ErrExtraction, "", nil, "x"), http.StatusInternalServerError},
		{newError(ErrConfiguration, "", nil, "x"), http.StatusInternalServerError},
		{newError(ErrCanceled, "", nil, "x"), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestKindOfAndContactID(t *testing.T) {
	err := newError(ErrSourceUnavailable, "c-7", nil, MsgNoContent)
	wrapped := errors.Join(errors.New("outer"), err)

	assert.Equal(t, ErrSourceUnavailable, KindOf(wrapped))
	assert.Equal(t, "c-7", ContactIDOf(wrapped))
	assert.Nil(t, KindOf(errors.New("plain")))
	assert.Empty(t, ContactIDOf(nil))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Empty(t, Message(nil))
}
