package ecs

import (
	"errors"
	"fmt"
)

// Sentinel errors for programming-error conditions: invalid component id,
// invalid system id, exceeding compile-time limits, destroying a
// non-live entity. These are always wrapped with fmt.Errorf("%w", ...)
// and context before being handed to panic, so callers that recover can
// still errors.Is/errors.As against them.
var (
	// ErrInvalidComponent is returned/wrapped when a ComponentID outside
	// the registered range is used.
	ErrInvalidComponent = errors.New("ecs: invalid component id")

	// ErrInvalidSystem is returned/wrapped when a SystemID outside the
	// registered range is used.
	ErrInvalidSystem = errors.New("ecs: invalid system id")

	// ErrComponentLimitExceeded is returned/wrapped by RegisterComponent
	// once MaxComponents registrations have occurred.
	ErrComponentLimitExceeded = errors.New("ecs: component limit exceeded")

	// ErrSystemLimitExceeded is returned/wrapped by NewSystem once
	// MaxSystems registrations have occurred.
	ErrSystemLimitExceeded = errors.New("ecs: system limit exceeded")

	// ErrEntityNotLive is returned/wrapped when an operation targets an
	// entity that was never created, or was already destroyed.
	ErrEntityNotLive = errors.New("ecs: entity is not live")

	// ErrConflictingRequirement is returned/wrapped when a system's
	// all_of and none_of sets intersect.
	ErrConflictingRequirement = errors.New("ecs: all_of and none_of intersect")
)

// programmingError panics with err wrapped with msg, for hard assertion
// failures rather than recoverable runtime conditions. Go has no separate
// debug/release build mode, so every build gets the panic; a caller that
// installs a recover can still inspect the error chain via
// errors.Is/errors.As.
func programmingError(sentinel error, msg string) {
	panic(fmt.Errorf("%s: %w", msg, sentinel))
}
