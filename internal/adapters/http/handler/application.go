package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/agrokadry/agrojob-core/internal/adapters/http/middleware"
	"github.com/agrokadry/agrojob-core/internal/core/application"
)

// ApplicationHandler は応募ワークフローの HTTP ハンドラです。
type ApplicationHandler struct {
	uc application.UseCase
}

// NewApplicationHandler は ApplicationHandler を生成します。
func NewApplicationHandler(uc application.UseCase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

// Register はルーターへ応募関連のルートを登録します。
func (h *ApplicationHandler) Register(r *mux.Router) {
	r.HandleFunc("/applications", h.submit).Methods(http.MethodPost)
	r.HandleFunc("/applications", h.list).Methods(http.MethodGet)
	r.HandleFunc("/applications/count", h.count).Methods(http.MethodGet)
	r.HandleFunc("/applications/exists", h.exists).Methods(http.MethodGet)
	r.HandleFunc("/applications/{id}", h.getForApplicant).Methods(http.MethodGet)
	r.HandleFunc("/applications/{id}/review", h.review).Methods(http.MethodGet)
	r.HandleFunc("/applications/{id}/withdraw", h.withdraw).Methods(http.MethodPost)
	r.HandleFunc("/applications/{id}/status", h.updateStatus).Methods(http.MethodPatch)
}

type applicationResponse struct {
	ID              int64   `json:"id"`
	VacancyID       int64   `json:"vacancy_id"`
	UserID          string  `json:"user_id"`
	ResumeID        *int64  `json:"resume_id,omitempty"`
	Status          string  `json:"status"`
	CoverLetter     *string `json:"cover_letter,omitempty"`
	EmployerComment *string `json:"employer_comment,omitempty"`
	AppliedAt       string  `json:"applied_at"`
	StatusUpdatedAt *string `json:"status_updated_at,omitempty"`
}

func toApplicationResponse(app *application.Application) applicationResponse {
	resp := applicationResponse{
		ID:              app.ID,
		VacancyID:       app.VacancyID,
		UserID:          app.UserID,
		ResumeID:        app.ResumeID,
		Status:          string(app.Status),
		CoverLetter:     app.CoverLetter,
		EmployerComment: app.EmployerComment,
		AppliedAt:       app.AppliedAt.Format(time.RFC3339),
	}
	if app.StatusUpdatedAt != nil {
		value := app.StatusUpdatedAt.Format(time.RFC3339)
		resp.StatusUpdatedAt = &value
	}
	return resp
}

type submitApplicationRequest struct {
	VacancyID   int64   `json:"vacancy_id"`
	ResumeID    *int64  `json:"resume_id"`
	CoverLetter *string `json:"cover_letter"`
}

func (h *ApplicationHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	created, err := h.uc.Submit(r.Context(), application.SubmitInput{
		VacancyID:   req.VacancyID,
		UserID:      identity.UserID,
		ResumeID:    req.ResumeID,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(created))
}

func (h *ApplicationHandler) withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, application.ErrInvalidID)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	withdrawn, err := h.uc.Withdraw(r.Context(), application.WithdrawInput{
		ApplicationID: id,
		UserID:        identity.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(withdrawn))
}

type updateStatusRequest struct {
	Status          string  `json:"status"`
	EmployerComment *string `json:"employer_comment"`
}

func (h *ApplicationHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, application.ErrInvalidID)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.uc.UpdateStatus(r.Context(), application.UpdateStatusInput{
		ApplicationID:   id,
		Identity:        middleware.IdentityFromContext(r.Context()),
		Status:          application.Status(req.Status),
		EmployerComment: req.EmployerComment,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(updated))
}

// review は雇用側の応募詳細取得です。pending の応募は取得と同時に viewed
// へ遷移します。
func (h *ApplicationHandler) review(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, application.ErrInvalidID)
		return
	}

	detail, err := h.uc.ViewDetail(r.Context(), application.ViewDetailInput{
		ApplicationID: id,
		Identity:      middleware.IdentityFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(detail))
}

func (h *ApplicationHandler) getForApplicant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, application.ErrInvalidID)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	app, err := h.uc.GetForApplicant(r.Context(), application.GetForApplicantInput{
		ApplicationID: id,
		UserID:        identity.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

type listApplicationsResponse struct {
	Applications  []applicationResponse `json:"applications"`
	NextPageToken string                `json:"next_page_token,omitempty"`
}

func (h *ApplicationHandler) list(w http.ResponseWriter, r *http.Request) {
	pageSize, err := queryPageSize(r)
	if err != nil {
		writeError(w, err)
		return
	}
	vacancyID, err := queryInt64(r, "vacancy_id")
	if err != nil {
		writeError(w, err)
		return
	}
	companyID, err := queryInt64(r, "company_id")
	if err != nil {
		writeError(w, err)
		return
	}

	in := application.ListApplicationsInput{
		Identity:  middleware.IdentityFromContext(r.Context()),
		VacancyID: vacancyID,
		CompanyID: companyID,
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
	}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		in.UserID = &userID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		value := application.Status(status)
		in.Status = &value
	}

	result, err := h.uc.ListApplications(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listApplicationsResponse{
		Applications:  make([]applicationResponse, 0, len(result.Applications)),
		NextPageToken: result.NextPageToken,
	}
	for _, app := range result.Applications {
		resp.Applications = append(resp.Applications, toApplicationResponse(app))
	}

	writeJSON(w, http.StatusOK, resp)
}

type countResponse struct {
	Count int `json:"count"`
}

func (h *ApplicationHandler) count(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	vacancyID, err := queryInt64(r, "vacancy_id")
	if err != nil {
		writeError(w, err)
		return
	}
	companyID, err := queryInt64(r, "company_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var count int
	switch {
	case vacancyID != nil:
		count, err = h.uc.CountByVacancy(r.Context(), identity, *vacancyID)
	case companyID != nil:
		count, err = h.uc.CountByCompany(r.Context(), identity, *companyID)
	default:
		var status *application.Status
		if raw := r.URL.Query().Get("status"); raw != "" {
			value := application.Status(raw)
			status = &value
		}
		count, err = h.uc.CountByUser(r.Context(), identity.UserID, status)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

type existsResponse struct {
	Applied bool `json:"applied"`
}

func (h *ApplicationHandler) exists(w http.ResponseWriter, r *http.Request) {
	vacancyID, err := queryInt64(r, "vacancy_id")
	if err != nil {
		writeError(w, err)
		return
	}
	if vacancyID == nil {
		writeError(w, application.ErrInvalidVacancyID)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	applied, err := h.uc.HasApplied(r.Context(), *vacancyID, identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, existsResponse{Applied: applied})
}
