package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrStudentNotFound      = errors.New("student not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrScheduleConflict     = errors.New("schedule conflict")
	ErrSessionNotRestorable = errors.New("only cancelled or vacation sessions can be restored")
	ErrSessionNotScheduled  = errors.New("session is not scheduled")
	ErrPaymentNotFound      = errors.New("payment record not found")
	ErrSuggestionNotFound   = errors.New("suggestion not found")
)
