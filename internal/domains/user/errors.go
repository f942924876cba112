package user

import "errors"

// User-facing duplicate errors. Their messages are shown verbatim, so keep
// them friendly. The pre-checks that raise them are advisory; the unique
// constraints on email and username are the real guard.
var (
	ErrEmailTaken    = errors.New("Email already in use")
	ErrUsernameTaken = errors.New("Username already taken")
	ErrNoProfile     = errors.New("no profile for current session")
)
