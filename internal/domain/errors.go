package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRelationNotFound    = errors.New("relation not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorMismatch      = errors.New("appointment belongs to another doctor")

	ErrEmptyMessage    = errors.New("message text is required")
	ErrMessageTooLong  = errors.New("message is too long")
	ErrInvalidArgument = errors.New("invalid argument")
)

type AuthReason string

const (
	ReasonMissingUserID    AuthReason = "MissingUserId"
	ReasonRelationNotFound AuthReason = "RelationNotFound"
	ReasonUnauthorized     AuthReason = "Unauthorized"
	ReasonUserNotFound     AuthReason = "UserNotFound"
)

// AuthError rejects a connection before it is established.
type AuthError struct {
	Reason AuthReason
	Err    error
}

func NewAuthError(reason AuthReason, err error) *AuthError {
	return &AuthError{Reason: reason, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
	}
	return "auth: " + string(e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// PersistenceError wraps a gateway failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
