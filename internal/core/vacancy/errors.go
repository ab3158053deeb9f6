package vacancy

import "errors"

var (
	ErrInvalidID              = errors.New("vacancy: invalid id")
	ErrInvalidCompanyID       = errors.New("vacancy: invalid company id")
	ErrInvalidTitle           = errors.New("vacancy: invalid title")
	ErrInvalidDescription     = errors.New("vacancy: invalid description")
	ErrInvalidSalary          = errors.New("vacancy: invalid salary")
	ErrInvalidCategory        = errors.New("vacancy: invalid category")
	ErrInvalidLocation        = errors.New("vacancy: invalid location")
	ErrInvalidPageSize        = errors.New("vacancy: invalid page size")
	ErrInvalidPageToken       = errors.New("vacancy: invalid page token")
	ErrVacancyNotFound        = errors.New("vacancy: not found")
	ErrCompanyNotFound        = errors.New("vacancy: company not found")
	ErrVacancyHasApplications = errors.New("vacancy: vacancy still has applications")
)
