package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/agrokadry/agrojob-core/internal/adapters/http/middleware"
	"github.com/agrokadry/agrojob-core/internal/core/vacancy"
)

// VacancyHandler は求人管理の HTTP ハンドラです。
type VacancyHandler struct {
	uc vacancy.UseCase
}

// NewVacancyHandler は VacancyHandler を生成します。
func NewVacancyHandler(uc vacancy.UseCase) *VacancyHandler {
	return &VacancyHandler{uc: uc}
}

// Register はルーターへ求人関連のルートを登録します。
func (h *VacancyHandler) Register(r *mux.Router) {
	r.HandleFunc("/vacancies", h.create).Methods(http.MethodPost)
	r.HandleFunc("/vacancies", h.list).Methods(http.MethodGet)
	r.HandleFunc("/vacancies/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/vacancies/{id}", h.update).Methods(http.MethodPatch)
	r.HandleFunc("/vacancies/{id}", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/vacancies/{id}/active", h.setActive).Methods(http.MethodPut)
}

type vacancyResponse struct {
	ID           int64    `json:"id"`
	CompanyID    int64    `json:"company_id"`
	CreatedBy    *string  `json:"created_by,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Salary       string   `json:"salary,omitempty"`
	Category     string   `json:"category,omitempty"`
	Location     string   `json:"location,omitempty"`
	IsSeasonal   bool     `json:"is_seasonal"`
	IsActive     bool     `json:"is_active"`
	ViewsCount   int      `json:"views_count"`
	PostedAt     string   `json:"posted_at"`
	UpdatedAt    string   `json:"updated_at"`
	Requirements []string `json:"requirements,omitempty"`
	Offers       []string `json:"offers,omitempty"`
}

func toVacancyResponse(v *vacancy.Vacancy) vacancyResponse {
	return vacancyResponse{
		ID:           v.ID,
		CompanyID:    v.CompanyID,
		CreatedBy:    v.CreatedBy,
		Title:        v.Title,
		Description:  v.Description,
		Salary:       v.Salary,
		Category:     v.Category,
		Location:     v.Location,
		IsSeasonal:   v.IsSeasonal,
		IsActive:     v.IsActive,
		ViewsCount:   v.ViewsCount,
		PostedAt:     v.PostedAt.Format(time.RFC3339),
		UpdatedAt:    v.UpdatedAt.Format(time.RFC3339),
		Requirements: v.Requirements,
		Offers:       v.Offers,
	}
}

type createVacancyRequest struct {
	CompanyID    int64    `json:"company_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Salary       string   `json:"salary"`
	Category     string   `json:"category"`
	Location     string   `json:"location"`
	IsSeasonal   bool     `json:"is_seasonal"`
	Requirements []string `json:"requirements"`
	Offers       []string `json:"offers"`
}

func (h *VacancyHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createVacancyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.uc.CreateVacancy(r.Context(), vacancy.CreateVacancyInput{
		CompanyID:    req.CompanyID,
		Identity:     middleware.IdentityFromContext(r.Context()),
		Title:        req.Title,
		Description:  req.Description,
		Salary:       req.Salary,
		Category:     req.Category,
		Location:     req.Location,
		IsSeasonal:   req.IsSeasonal,
		Requirements: req.Requirements,
		Offers:       req.Offers,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toVacancyResponse(created))
}

type updateVacancyRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Salary       *string  `json:"salary"`
	Category     *string  `json:"category"`
	Location     *string  `json:"location"`
	IsSeasonal   *bool    `json:"is_seasonal"`
	Requirements []string `json:"requirements"`
	Offers       []string `json:"offers"`
}

func (h *VacancyHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, vacancy.ErrInvalidID)
		return
	}

	var req updateVacancyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.uc.UpdateVacancy(r.Context(), vacancy.UpdateVacancyInput{
		ID:           id,
		Identity:     middleware.IdentityFromContext(r.Context()),
		Title:        req.Title,
		Description:  req.Description,
		Salary:       req.Salary,
		Category:     req.Category,
		Location:     req.Location,
		IsSeasonal:   req.IsSeasonal,
		Requirements: req.Requirements,
		Offers:       req.Offers,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toVacancyResponse(updated))
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *VacancyHandler) setActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, vacancy.ErrInvalidID)
		return
	}

	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.uc.SetActive(r.Context(), vacancy.SetActiveInput{
		ID:       id,
		Identity: middleware.IdentityFromContext(r.Context()),
		Active:   req.Active,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toVacancyResponse(updated))
}

func (h *VacancyHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, vacancy.ErrInvalidID)
		return
	}

	if err := h.uc.DeleteVacancy(r.Context(), vacancy.DeleteVacancyInput{
		ID:       id,
		Identity: middleware.IdentityFromContext(r.Context()),
	}); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *VacancyHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, vacancy.ErrInvalidID)
		return
	}

	countView, err := queryBool(r, "count_view")
	if err != nil {
		writeError(w, err)
		return
	}

	found, err := h.uc.GetVacancy(r.Context(), vacancy.GetVacancyInput{
		ID:        id,
		CountView: countView != nil && *countView,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toVacancyResponse(found))
}

type listVacanciesResponse struct {
	Vacancies     []vacancyResponse `json:"vacancies"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

func (h *VacancyHandler) list(w http.ResponseWriter, r *http.Request) {
	pageSize, err := queryPageSize(r)
	if err != nil {
		writeError(w, err)
		return
	}
	companyID, err := queryInt64(r, "company_id")
	if err != nil {
		writeError(w, err)
		return
	}
	active, err := queryBool(r, "active")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.uc.ListVacancies(r.Context(), vacancy.ListVacanciesInput{
		CompanyID: companyID,
		Active:    active,
		Category:  r.URL.Query().Get("category"),
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listVacanciesResponse{
		Vacancies:     make([]vacancyResponse, 0, len(result.Vacancies)),
		NextPageToken: result.NextPageToken,
	}
	for _, v := range result.Vacancies {
		resp.Vacancies = append(resp.Vacancies, toVacancyResponse(v))
	}

	writeJSON(w, http.StatusOK, resp)
}
