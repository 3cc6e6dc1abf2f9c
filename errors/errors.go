package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrUnknownRole        = fmt.Errorf("unknown role")
	ErrInvalidRequest     = fmt.Errorf("invalid request")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrNoSession          = fmt.Errorf("no valid session")

	ErrMachineNotFound   = fmt.Errorf("machine not found")
	ErrTicketNotFound    = fmt.Errorf("ticket not found")
	ErrBatchNotFound     = fmt.Errorf("batch not found")
	ErrInvalidTransition = fmt.Errorf("invalid ticket transition")
)
