// Package auth holds the credential sentinel shared by every upstream
// client. It sits below the session, scope, and conversation packages so
// each can return the same error without importing the others.
package auth

import "errors"

// ErrRequired is returned when an upstream call is attempted without a
// bearer credential.
var ErrRequired = errors.New("authentication required")
