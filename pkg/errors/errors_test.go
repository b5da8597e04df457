package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("sync state", "contact-42")
	assert.Equal(t, "sync state with ID contact-42 not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("email", "not-an-address", "invalid email format")
	assert.Contains(t, err.Error(), "email")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, IsValidationError(err))

	anon := NewValidationError("", nil, "missing required field")
	assert.Equal(t, "validation failed: missing required field", anon.Error())
}

func TestStrategyError(t *testing.T) {
	err := NewStrategyError("bogus", "name", "unknown strategy name", ErrUnsupportedStrategy)
	assert.Contains(t, err.Error(), "bogus")
	assert.Contains(t, err.Error(), "name")
	assert.True(t, errors.Is(err, ErrUnsupportedStrategy))
	assert.True(t, IsUnsupportedStrategy(err))

	manual := NewStrategyError("manual", "name", "no choice supplied", ErrMissingManualChoice)
	assert.True(t, IsMissingManualChoice(manual))
}

func TestParseError(t *testing.T) {
	err := NewParseError("timestamp", "garbage", "no format matched", ErrUnparsableTimestamp)
	assert.Contains(t, err.Error(), `"garbage"`)
	assert.True(t, errors.Is(err, ErrUnparsableTimestamp))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStoreError("put", "item-1", cause)
	assert.Contains(t, err.Error(), "item-1")
	assert.True(t, errors.Is(err, cause))

	assert.NoError(t, WrapStore("put", "x", nil))
	wrapped := WrapStore("get", "y", cause)
	assert.Error(t, wrapped)
}

func TestWrapValidation(t *testing.T) {
	assert.NoError(t, WrapValidation("email", nil))
	err := WrapValidation("email", fmt.Errorf("bad shape"))
	assert.True(t, IsValidationError(err))
}
