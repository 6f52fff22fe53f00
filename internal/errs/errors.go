// Package errs defines the error taxonomy shared by the simulation layers.
// Every failure carries a Kind for coarse handling (HTTP status, swallow or
// surface) and wraps a reason sentinel that callers match with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

// Kind represents the category of error.
type Kind string

const (
	// KindValidation indicates an attempted action violated a game rule.
	KindValidation Kind = "validation"
	// KindNotFound indicates a lookup named something that does not exist.
	KindNotFound Kind = "not_found"
	// KindCorrupt indicates persisted state that cannot be loaded.
	KindCorrupt Kind = "corrupt"
	// KindInternal indicates an unexpected failure (I/O, database).
	KindInternal Kind = "internal"
)

// Reason sentinels. Match with errors.Is.
var (
	ErrOffGrid            = errors.New("location is not on the island")
	ErrOccupied           = errors.New("location already occupied")
	ErrNotConnected       = errors.New("not connected to your road network")
	ErrSpacing            = errors.New("too close to another city")
	ErrInsufficient       = errors.New("insufficient resources")
	ErrBuildingLimit      = errors.New("city has no free building slot")
	ErrDuplicateBuilding  = errors.New("city already has this building")
	ErrMaxLevel           = errors.New("already at maximum level")
	ErrCooldown           = errors.New("hex is still on cooldown")
	ErrNotHarvestable     = errors.New("hex cannot be harvested")
	ErrNoTradeAccess      = errors.New("no market or port to trade through")
	ErrBatchMismatch      = errors.New("offered and requested batches differ")
	ErrNotEligible        = errors.New("not eligible")
	ErrAlreadySpecialized = errors.New("port is already specialized")
	ErrNotOwner           = errors.New("not owned by this civilization")
	ErrNoIsland           = errors.New("no island in play")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// Error is the base error type for simulation errors.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error for a reason.
func Validation(reason error) error {
	return &Error{Kind: KindValidation, Err: reason}
}

// Validationf creates a validation error for a reason with a formatted message.
func Validationf(reason error, format string, args ...any) error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
		Err:     reason,
	}
}

// NotFoundf creates a not found error with formatting.
func NotFoundf(format string, args ...any) error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// Corruptf creates a corrupt-state error with formatting.
func Corruptf(format string, args ...any) error {
	return &Error{
		Kind:    KindCorrupt,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapCorrupt wraps an error as a corrupt-state error.
func WrapCorrupt(message string, err error) error {
	return &Error{Kind: KindCorrupt, Message: message, Err: err}
}

// WrapInternal wraps an error as an internal error.
func WrapInternal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of an error. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsValidation reports whether err is a rule violation.
func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}
