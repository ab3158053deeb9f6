package application

import "errors"

var (
	ErrInvalidID           = errors.New("application: invalid id")
	ErrInvalidVacancyID    = errors.New("application: invalid vacancy id")
	ErrInvalidUserID       = errors.New("application: invalid user id")
	ErrInvalidStatus       = errors.New("application: invalid status")
	ErrInvalidPageSize     = errors.New("application: invalid page size")
	ErrInvalidPageToken    = errors.New("application: invalid page token")
	ErrCoverLetterTooLong  = errors.New("application: cover letter exceeds 2000 characters")
	ErrCommentTooLong      = errors.New("application: employer comment exceeds 1000 characters")
	ErrApplicationNotFound = errors.New("application: not found")
	ErrVacancyNotFound     = errors.New("application: vacancy not found")
	ErrResumeNotFound      = errors.New("application: resume not found")
	ErrVacancyInactive     = errors.New("application: vacancy is not active")
	ErrAlreadyApplied      = errors.New("application: already applied to this vacancy")
	ErrInvalidTransition   = errors.New("application: status transition not allowed")
	ErrStatusNotAssignable = errors.New("application: status cannot be assigned by employer")
)
