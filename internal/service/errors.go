// Package service provides application-level services for boards, tasks,
// time tracking, schedule composition, payment status, and account
// provisioning.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrBoardLimitReached indicates an identity without active payment
	// standing already holds its single permitted board.
	// API layer should map this to HTTP 402 Payment Required.
	ErrBoardLimitReached = errors.New("board limit reached for current payment plan")

	// ErrVerificationFailed indicates the payment verifier could not produce
	// a result and no trusted prior status was available.
	ErrVerificationFailed = errors.New("payment verification failed")
)
