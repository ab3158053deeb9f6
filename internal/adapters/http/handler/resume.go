package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/agrokadry/agrojob-core/internal/adapters/http/middleware"
	"github.com/agrokadry/agrojob-core/internal/core/resume"
)

// ResumeHandler は履歴書管理の HTTP ハンドラです。
type ResumeHandler struct {
	uc resume.UseCase
}

// NewResumeHandler は ResumeHandler を生成します。
func NewResumeHandler(uc resume.UseCase) *ResumeHandler {
	return &ResumeHandler{uc: uc}
}

// Register はルーターへ履歴書関連のルートを登録します。
func (h *ResumeHandler) Register(r *mux.Router) {
	r.HandleFunc("/resumes", h.create).Methods(http.MethodPost)
	r.HandleFunc("/resumes", h.listMine).Methods(http.MethodGet)
	r.HandleFunc("/resumes/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/resumes/{id}", h.update).Methods(http.MethodPatch)
	r.HandleFunc("/resumes/{id}", h.delete).Methods(http.MethodDelete)
}

type resumeResponse struct {
	ID              int64   `json:"id"`
	UserID          string  `json:"user_id"`
	Title           string  `json:"title"`
	FullName        string  `json:"full_name"`
	BirthDate       *string `json:"birth_date,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Email           *string `json:"email,omitempty"`
	Location        *string `json:"location,omitempty"`
	ExperienceYears *int    `json:"experience_years,omitempty"`
	Education       *string `json:"education,omitempty"`
	Experience      *string `json:"experience,omitempty"`
	Skills          *string `json:"skills,omitempty"`
	About           *string `json:"about,omitempty"`
	DesiredSalary   *string `json:"desired_salary,omitempty"`
	ReadyToRelocate bool    `json:"ready_to_relocate"`
	ReadyForTrips   bool    `json:"ready_for_trips"`
	IsActive        bool    `json:"is_active"`
	IsPublished     bool    `json:"is_published"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       *string `json:"updated_at,omitempty"`
}

func toResumeResponse(res *resume.Resume) resumeResponse {
	resp := resumeResponse{
		ID:              res.ID,
		UserID:          res.UserID,
		Title:           res.Title,
		FullName:        res.FullName,
		Phone:           res.Phone,
		Email:           res.Email,
		Location:        res.Location,
		ExperienceYears: res.ExperienceYears,
		Education:       res.Education,
		Experience:      res.Experience,
		Skills:          res.Skills,
		About:           res.About,
		DesiredSalary:   res.DesiredSalary,
		ReadyToRelocate: res.ReadyToRelocate,
		ReadyForTrips:   res.ReadyForTrips,
		IsActive:        res.IsActive,
		IsPublished:     res.IsPublished,
		CreatedAt:       res.CreatedAt.Format(time.RFC3339),
	}
	if res.BirthDate != nil {
		value := res.BirthDate.Format("2006-01-02")
		resp.BirthDate = &value
	}
	if res.UpdatedAt != nil {
		value := res.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &value
	}
	return resp
}

type createResumeRequest struct {
	Title           string  `json:"title"`
	FullName        string  `json:"full_name"`
	BirthDate       *string `json:"birth_date"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	Location        *string `json:"location"`
	ExperienceYears *int    `json:"experience_years"`
	Education       *string `json:"education"`
	Experience      *string `json:"experience"`
	Skills          *string `json:"skills"`
	About           *string `json:"about"`
	DesiredSalary   *string `json:"desired_salary"`
	ReadyToRelocate bool    `json:"ready_to_relocate"`
	ReadyForTrips   bool    `json:"ready_for_trips"`
	IsPublished     bool    `json:"is_published"`
}

func parseBirthDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	value, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, errInvalidRequestBody
	}
	return &value, nil
}

func (h *ResumeHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createResumeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		writeError(w, err)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	created, err := h.uc.CreateResume(r.Context(), resume.CreateResumeInput{
		UserID:          identity.UserID,
		Title:           req.Title,
		FullName:        req.FullName,
		BirthDate:       birthDate,
		Phone:           req.Phone,
		Email:           req.Email,
		Location:        req.Location,
		ExperienceYears: req.ExperienceYears,
		Education:       req.Education,
		Experience:      req.Experience,
		Skills:          req.Skills,
		About:           req.About,
		DesiredSalary:   req.DesiredSalary,
		ReadyToRelocate: req.ReadyToRelocate,
		ReadyForTrips:   req.ReadyForTrips,
		IsPublished:     req.IsPublished,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResumeResponse(created))
}

type updateResumeRequest struct {
	Title           *string `json:"title"`
	FullName        *string `json:"full_name"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	Location        *string `json:"location"`
	ExperienceYears *int    `json:"experience_years"`
	Education       *string `json:"education"`
	Experience      *string `json:"experience"`
	Skills          *string `json:"skills"`
	About           *string `json:"about"`
	DesiredSalary   *string `json:"desired_salary"`
	ReadyToRelocate *bool   `json:"ready_to_relocate"`
	ReadyForTrips   *bool   `json:"ready_for_trips"`
	IsActive        *bool   `json:"is_active"`
	IsPublished     *bool   `json:"is_published"`
}

func (h *ResumeHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, resume.ErrInvalidID)
		return
	}

	var req updateResumeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	updated, err := h.uc.UpdateResume(r.Context(), resume.UpdateResumeInput{
		ID:              id,
		UserID:          identity.UserID,
		Title:           req.Title,
		FullName:        req.FullName,
		Phone:           req.Phone,
		Email:           req.Email,
		Location:        req.Location,
		ExperienceYears: req.ExperienceYears,
		Education:       req.Education,
		Experience:      req.Experience,
		Skills:          req.Skills,
		About:           req.About,
		DesiredSalary:   req.DesiredSalary,
		ReadyToRelocate: req.ReadyToRelocate,
		ReadyForTrips:   req.ReadyForTrips,
		IsActive:        req.IsActive,
		IsPublished:     req.IsPublished,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResumeResponse(updated))
}

func (h *ResumeHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, resume.ErrInvalidID)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	if err := h.uc.DeleteResume(r.Context(), resume.DeleteResumeInput{
		ID:     id,
		UserID: identity.UserID,
	}); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ResumeHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, resume.ErrInvalidID)
		return
	}

	found, err := h.uc.GetResume(r.Context(), resume.GetResumeInput{
		ID:       id,
		Identity: middleware.IdentityFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResumeResponse(found))
}

func (h *ResumeHandler) listMine(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	resumes, err := h.uc.ListResumes(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]resumeResponse, 0, len(resumes))
	for _, res := range resumes {
		resp = append(resp, toResumeResponse(res))
	}

	writeJSON(w, http.StatusOK, resp)
}
