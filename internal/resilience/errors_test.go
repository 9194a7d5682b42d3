package resilience

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad request"), false},
		{"explicit", NewTransientError(errors.New("x"), 503), true},
		{"wrapped explicit", eris.Wrap(NewTransientError(errors.New("x"), 429), "remote"), true},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"cancelled", fmt.Errorf("call: %w", context.Canceled), false},
		{"conn reset", fmt.Errorf("dial: %w", syscall.ECONNRESET), true},
		{"conn refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"io timeout text", errors.New("read tcp: i/o timeout"), true},
		{"broken pipe text", errors.New("write: Broken Pipe"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestClassifyHTTP(t *testing.T) {
	base := errors.New("status error")

	assert.Nil(t, ClassifyHTTP(nil, 500))
	assert.True(t, IsTransient(ClassifyHTTP(base, 503)))
	assert.False(t, IsTransient(ClassifyHTTP(base, 401)))

	var te *TransientError
	assert.True(t, errors.As(ClassifyHTTP(base, 429), &te))
	assert.Equal(t, 429, te.StatusCode)
	assert.ErrorIs(t, te, base)
}
