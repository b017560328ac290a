package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		class ErrorClass
	}{
		{"not found", WrapNotFound(ErrUserNotFound, "Svc", "Get", "lookup"), ErrorNotFound},
		{"conflict", WrapConflict(ErrEmailTaken, "Svc", "Create", "create"), ErrorConflict},
		{"invalid", WrapInvalid(ErrInvalidConfig, "Cfg", "Validate", "check"), ErrorInvalid},
		{"fatal", WrapFatal(fmt.Errorf("boom"), "Svc", "Start", "startup"), ErrorFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.class, Classify(tt.err))
		})
	}
}

func TestPredicates(t *testing.T) {
	nf := WrapNotFound(ErrPostNotFound, "Svc", "Get", "lookup")
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsConflict(nf))
	assert.False(t, IsInvalid(nf))
	assert.False(t, IsFatal(nf))

	conflict := WrapConflict(ErrEmailTaken, "Svc", "Create", "create")
	assert.True(t, IsConflict(conflict))
	assert.False(t, IsNotFound(conflict))
}

func TestUnwrapKeepsSentinel(t *testing.T) {
	err := WrapNotFound(ErrUserNotFound, "BlogService", "DeleteUser", "delete user 1")
	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.False(t, errors.Is(err, ErrPostNotFound))
}

func TestErrorMessageFormat(t *testing.T) {
	err := WrapConflict(ErrEmailTaken, "BlogService", "CreateUser", "create user a@b.c")
	assert.Contains(t, err.Error(), "BlogService.CreateUser")
	assert.Contains(t, err.Error(), "create user a@b.c")
	assert.Contains(t, err.Error(), ErrEmailTaken.Error())
}

func TestClassifyPlainError(t *testing.T) {
	// Unclassified errors fall back to invalid input
	assert.Equal(t, ErrorInvalid, Classify(fmt.Errorf("unclassified")))
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "not_found", ErrorNotFound.String())
	assert.Equal(t, "conflict", ErrorConflict.String())
	assert.Equal(t, "invalid", ErrorInvalid.String())
	assert.Equal(t, "fatal", ErrorFatal.String())
}
