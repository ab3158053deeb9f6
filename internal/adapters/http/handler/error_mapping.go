package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agrokadry/agrojob-core/internal/core/access"
	"github.com/agrokadry/agrojob-core/internal/core/application"
	"github.com/agrokadry/agrojob-core/internal/core/company"
	"github.com/agrokadry/agrojob-core/internal/core/resume"
	"github.com/agrokadry/agrojob-core/internal/core/vacancy"
)

// statusByError はコアのセンチネルエラーと HTTP ステータスの対応表です。
// 表にないエラーは 500 として扱います。
var statusByError = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		application.ErrApplicationNotFound,
		application.ErrVacancyNotFound,
		application.ErrResumeNotFound,
		access.ErrVacancyNotFound,
		vacancy.ErrVacancyNotFound,
		vacancy.ErrCompanyNotFound,
		company.ErrCompanyNotFound,
		company.ErrMemberNotFound,
		resume.ErrResumeNotFound,
	}},
	{http.StatusConflict, []error{
		application.ErrAlreadyApplied,
		company.ErrNameAlreadyExists,
		company.ErrMemberAlreadyExists,
		company.ErrCompanyHasVacancies,
		vacancy.ErrVacancyHasApplications,
	}},
	{http.StatusForbidden, []error{
		access.ErrForbidden,
	}},
	{http.StatusUnprocessableEntity, []error{
		application.ErrInvalidTransition,
		application.ErrStatusNotAssignable,
		application.ErrVacancyInactive,
		company.ErrAdminRoleProtected,
		company.ErrCannotRemoveSelf,
	}},
	{http.StatusBadRequest, []error{
		errInvalidRequestBody,
		application.ErrInvalidID,
		application.ErrInvalidVacancyID,
		application.ErrInvalidUserID,
		application.ErrInvalidStatus,
		application.ErrInvalidPageSize,
		application.ErrInvalidPageToken,
		application.ErrCoverLetterTooLong,
		application.ErrCommentTooLong,
		vacancy.ErrInvalidID,
		vacancy.ErrInvalidCompanyID,
		vacancy.ErrInvalidTitle,
		vacancy.ErrInvalidDescription,
		vacancy.ErrInvalidSalary,
		vacancy.ErrInvalidCategory,
		vacancy.ErrInvalidLocation,
		vacancy.ErrInvalidPageSize,
		vacancy.ErrInvalidPageToken,
		company.ErrInvalidID,
		company.ErrInvalidName,
		company.ErrInvalidUserID,
		company.ErrInvalidRole,
		company.ErrInvalidPageSize,
		company.ErrInvalidPageToken,
		resume.ErrInvalidID,
		resume.ErrInvalidUserID,
		resume.ErrInvalidTitle,
		resume.ErrInvalidFullName,
		resume.ErrTextTooLong,
	}},
}

func httpStatusFromError(err error) int {
	for _, mapping := range statusByError {
		for _, sentinel := range mapping.errs {
			if errors.Is(err, sentinel) {
				return mapping.status
			}
		}
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := httpStatusFromError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
