package testutil

import "errors"

// ErrSimulated is returned by test doubles that need to fail.
var ErrSimulated = errors.New("simulated failure")
