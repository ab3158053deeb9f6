package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/agrokadry/agrojob-core/internal/core/access"
	"github.com/agrokadry/agrojob-core/internal/core/application"
	"github.com/agrokadry/agrojob-core/internal/core/company"
	"github.com/agrokadry/agrojob-core/internal/core/vacancy"
)

func TestHTTPStatusFromError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
	}{
		{application.ErrApplicationNotFound, http.StatusNotFound},
		{application.ErrAlreadyApplied, http.StatusConflict},
		{application.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{application.ErrVacancyInactive, http.StatusUnprocessableEntity},
		{application.ErrCoverLetterTooLong, http.StatusBadRequest},
		{access.ErrForbidden, http.StatusForbidden},
		{company.ErrNameAlreadyExists, http.StatusConflict},
		{company.ErrAdminRoleProtected, http.StatusUnprocessableEntity},
		{vacancy.ErrVacancyHasApplications, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", application.ErrStatusNotAssignable), http.StatusUnprocessableEntity},
		{errors.New("unexpected storage failure"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := httpStatusFromError(tc.err); got != tc.status {
			t.Errorf("status for %v: expected %d, got %d", tc.err, tc.status, got)
		}
	}
}
