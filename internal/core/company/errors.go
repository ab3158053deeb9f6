package company

import "errors"

var (
	ErrInvalidID           = errors.New("company: invalid id")
	ErrInvalidName         = errors.New("company: invalid name")
	ErrInvalidUserID       = errors.New("company: invalid user id")
	ErrInvalidRole         = errors.New("company: invalid role")
	ErrInvalidPageSize     = errors.New("company: invalid page size")
	ErrInvalidPageToken    = errors.New("company: invalid page token")
	ErrCompanyNotFound     = errors.New("company: not found")
	ErrNameAlreadyExists   = errors.New("company: name already exists")
	ErrMemberNotFound      = errors.New("company: member not found")
	ErrMemberAlreadyExists = errors.New("company: user already belongs to company")
	ErrAdminRoleProtected  = errors.New("company: admin member cannot be changed or removed")
	ErrCannotRemoveSelf    = errors.New("company: cannot remove yourself from company")
	ErrCompanyHasVacancies = errors.New("company: company still has vacancies")
)
