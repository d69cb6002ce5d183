package auth

import "errors"

// Error codes returned by the auth service.
const (
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeInternal          = "auth/internal-error"
)

var (
	ErrNotFound   = errors.New("identity not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Error is an authentication failure. Message is safe to show to the user.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsCode reports whether err is an *Error carrying code.
func IsCode(err error, code string) bool {
	var aerr *Error
	return errors.As(err, &aerr) && aerr.Code == code
}

func errEmailInUse() error {
	return &Error{Code: CodeEmailInUse, Message: "The email address is already in use by another account."}
}

func errInvalidEmail(msg string) error {
	return &Error{Code: CodeInvalidEmail, Message: msg + "."}
}

func errWeakPassword() error {
	return &Error{Code: CodeWeakPassword, Message: "Password should be at least 6 characters."}
}

func errInvalidCredential() error {
	return &Error{Code: CodeInvalidCredential, Message: "Invalid email or password."}
}

func errInternal() error {
	return &Error{Code: CodeInternal, Message: "Something went wrong. Please try again."}
}
