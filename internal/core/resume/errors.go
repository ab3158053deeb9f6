package resume

import "errors"

var (
	ErrInvalidID       = errors.New("resume: invalid id")
	ErrInvalidUserID   = errors.New("resume: invalid user id")
	ErrInvalidTitle    = errors.New("resume: invalid title")
	ErrInvalidFullName = errors.New("resume: invalid full name")
	ErrTextTooLong     = errors.New("resume: text field exceeds 1000 characters")
	ErrResumeNotFound  = errors.New("resume: not found")
)
