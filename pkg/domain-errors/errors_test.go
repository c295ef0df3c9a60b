package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := New(CodeNotFound, "mosque not found")
	wrapped := fmt.Errorf("load: %w", base)

	assert.True(t, HasCode(base, CodeNotFound))
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))
}

func TestWrapKeepsInnerCodes(t *testing.T) {
	inner := New(CodeDuplicateConfirmation, "already confirmed")
	outer := Wrap(inner, CodeConflict, "confirm failed")

	assert.True(t, HasCode(outer, CodeConflict))
	assert.True(t, HasCode(outer, CodeDuplicateConfirmation))
	assert.Equal(t, CodeConflict, CodeOf(outer))
	assert.Equal(t, "confirm failed", MessageOf(outer))
	assert.Nil(t, Wrap(nil, CodeInternal, "noop"))
}

func TestCodeOfPlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "internal error", MessageOf(err))
}
