package errors

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewValidationError("patient name is required")
	assert.Equal(t, "VALIDATION: patient name is required", err.Error())

	wrapped := NewStorageError("failed to list sessions", sql.ErrConnDone)
	assert.Equal(t, "STORAGE: failed to list sessions: sql: connection is already closed", wrapped.Error())
	assert.ErrorIs(t, wrapped, sql.ErrConnDone)
}

func TestIsType(t *testing.T) {
	notFound := NewNotFoundError("session 7 not found")
	wrapped := fmt.Errorf("mark issued: %w", notFound)

	assert.True(t, IsType(notFound, ErrorTypeNotFound))
	assert.True(t, IsType(wrapped, ErrorTypeNotFound))
	assert.False(t, IsType(wrapped, ErrorTypeStorage))
	assert.False(t, IsType(nil, ErrorTypeNotFound))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeValidation))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeReferential, TypeOf(NewReferentialError("patient 3 does not exist")))
	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain")))
}

func TestAs(t *testing.T) {
	appErr, ok := As(fmt.Errorf("create session: %w", NewReferentialError("patient 3 does not exist")))
	assert.True(t, ok)
	assert.Equal(t, "patient 3 does not exist", appErr.Message)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
