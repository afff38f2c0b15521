package main

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/acadify/core"
	"github.com/trezcool/acadify/core/access"
	"github.com/trezcool/acadify/core/session"
)

// isUserError reports whether err comes from bad input or missing rights rather than a failing store.
func isUserError(err error) bool {
	if core.IsAuth(err) || core.IsValidation(err) || core.IsNotFound(err) {
		return true
	}
	switch errors.Cause(err) {
	case access.ErrUnauthenticated, access.ErrForbidden, access.ErrUnknownRoute, access.ErrUnknownAction, session.ErrUnknownRole:
		return true
	}
	return false
}

// describeError renders validation errors field by field.
func describeError(err error) string {
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	if !ok || len(vErr.Fields) == 0 {
		return err.Error()
	}
	lines := make([]string, 0, len(vErr.Fields))
	for _, f := range vErr.Fields {
		lines = append(lines, f.Field+": "+f.Error)
	}
	return strings.Join(lines, "\n  ")
}
