package graphql

import (
	artemis "github.com/botobag/artemis/graphql"

	"github.com/c360/blogstream/errors"
)

// Machine-readable error codes surfaced in the "extensions.code" field
// of GraphQL errors.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidInput = "INVALID_INPUT"
	CodeInternal     = "INTERNAL"
)

// errorCode maps an error classification to its wire code.
func errorCode(err error) string {
	switch errors.Classify(err) {
	case errors.ErrorNotFound:
		return CodeNotFound
	case errors.ErrorConflict:
		return CodeConflict
	case errors.ErrorInvalid:
		return CodeInvalidInput
	default:
		return CodeInternal
	}
}

// gqlError converts a service error into a GraphQL error carrying a
// machine-readable code extension. The original error is kept as the
// underlying cause.
func gqlError(err error) error {
	return artemis.NewError(err.Error(), artemis.ErrorExtensions{
		"code": errorCode(err),
	}, err)
}
