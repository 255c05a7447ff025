package auth

import "errors"

var (
	// ErrUnauthenticated indicates the request carried no valid session or API key
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates an authenticated caller lacks the required privilege
	ErrForbidden = errors.New("forbidden")
)
