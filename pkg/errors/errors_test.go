package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		code int
		want Kind
	}{
		{401, KindAccessDenied},
		{403, KindAccessDenied},
		{404, KindNotFound},
		{429, KindOther},
		{500, KindOther},
		{503, KindOther},
		{0, KindOther},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, FromStatus(tt.code))
		})
	}
}

func TestKindOf(t *testing.T) {
	denied := New(KindAccessDenied, 401, "protected account")
	wrapped := fmt.Errorf("fetching 42: %w", denied)

	assert.Equal(t, KindAccessDenied, KindOf(denied))
	assert.Equal(t, KindAccessDenied, KindOf(wrapped))
	assert.Equal(t, KindOther, KindOf(stderrors.New("plain")))
	assert.Equal(t, KindOther, KindOf(nil))
}

func TestIsDroppable(t *testing.T) {
	assert.True(t, IsDroppable(KindAccessDenied))
	assert.True(t, IsDroppable(KindNotFound))
	assert.False(t, IsDroppable(KindOther))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(KindOther, 503, "unavailable")))
	assert.True(t, IsRetryable(Wrap(KindOther, 0, "request failed", stderrors.New("reset"))))
	assert.False(t, IsRetryable(New(KindOther, 429, "rate limited")))
	assert.False(t, IsRetryable(New(KindNotFound, 404, "gone")))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Wrap(KindOther, 0, "request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "other error (code 0)")
	assert.Contains(t, err.Error(), "connection reset")
}
