package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrTokenInvalid is returned for tokens that fail signature, expiry
	// or claim checks.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrInvalidHash is returned for password hashes that cannot be parsed.
	ErrInvalidHash = errors.New("auth: invalid password hash")

	// ErrWeakSecret is returned when the signing secret is too short.
	ErrWeakSecret = errors.New("auth: signing secret too short")

	// ErrForbidden is returned when a principal acts on another house.
	ErrForbidden = errors.New("auth: access to house denied")
)
