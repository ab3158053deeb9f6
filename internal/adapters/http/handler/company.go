package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/agrokadry/agrojob-core/internal/adapters/http/middleware"
	"github.com/agrokadry/agrojob-core/internal/core/company"
)

// CompanyHandler は会社とメンバーシップ管理の HTTP ハンドラです。
type CompanyHandler struct {
	uc company.UseCase
}

// NewCompanyHandler は CompanyHandler を生成します。
func NewCompanyHandler(uc company.UseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Register はルーターへ会社関連のルートを登録します。
func (h *CompanyHandler) Register(r *mux.Router) {
	r.HandleFunc("/companies", h.create).Methods(http.MethodPost)
	r.HandleFunc("/companies", h.list).Methods(http.MethodGet)
	r.HandleFunc("/companies/mine", h.listMine).Methods(http.MethodGet)
	r.HandleFunc("/companies/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/companies/{id}", h.update).Methods(http.MethodPatch)
	r.HandleFunc("/companies/{id}", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/companies/{id}/verified", h.setVerified).Methods(http.MethodPut)
	r.HandleFunc("/companies/{id}/members", h.addMember).Methods(http.MethodPost)
	r.HandleFunc("/companies/{id}/members", h.listMembers).Methods(http.MethodGet)
	r.HandleFunc("/companies/{id}/members/{userID}", h.changeMemberRole).Methods(http.MethodPatch)
	r.HandleFunc("/companies/{id}/members/{userID}", h.removeMember).Methods(http.MethodDelete)
}

type companyResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
	ContactPhone  *string `json:"contact_phone,omitempty"`
	ContactEmail  *string `json:"contact_email,omitempty"`
	IsVerified    bool    `json:"is_verified"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toCompanyResponse(c *company.Company) companyResponse {
	return companyResponse{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		ContactPerson: c.ContactPerson,
		ContactPhone:  c.ContactPhone,
		ContactEmail:  c.ContactEmail,
		IsVerified:    c.IsVerified,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
}

type membershipResponse struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	JoinedAt  string `json:"joined_at"`
}

func toMembershipResponse(m *company.Membership) membershipResponse {
	return membershipResponse{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		UserID:    m.UserID,
		Role:      m.Role,
		JoinedAt:  m.JoinedAt.Format(time.RFC3339),
	}
}

type createCompanyRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	ContactPerson *string `json:"contact_person"`
	ContactPhone  *string `json:"contact_phone"`
	ContactEmail  *string `json:"contact_email"`
}

func (h *CompanyHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	created, err := h.uc.CreateCompany(r.Context(), company.CreateCompanyInput{
		Name:          req.Name,
		Description:   req.Description,
		ContactPerson: req.ContactPerson,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
		CreatorID:     identity.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCompanyResponse(created))
}

type updateCompanyRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	ContactPerson *string `json:"contact_person"`
	ContactPhone  *string `json:"contact_phone"`
	ContactEmail  *string `json:"contact_email"`
}

func (h *CompanyHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, company.ErrInvalidID)
		return
	}

	var req updateCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.uc.UpdateCompany(r.Context(), company.UpdateCompanyInput{
		ID:            id,
		Identity:      middleware.IdentityFromContext(r.Context()),
		Name:          req.Name,
		Description:   req.Description,
		ContactPerson: req.ContactPerson,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCompanyResponse(updated))
}

type setVerifiedRequest struct {
	Verified bool `json:"verified"`
}

func (h *CompanyHandler) setVerified(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, company.ErrInvalidID)
		return
	}

	var req setVerifiedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.uc.SetVerified(r.Context(), company.SetVerifiedInput{
		ID:       id,
		Identity: middleware.IdentityFromContext(r.Context()),
		Verified: req.Verified,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCompanyResponse(updated))
}

func (h *CompanyHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, company.ErrInvalidID)
		return
	}

	if err := h.uc.DeleteCompany(r.Context(), company.DeleteCompanyInput{
		ID:       id,
		Identity: middleware.IdentityFromContext(r.Context()),
	}); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CompanyHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, company.ErrInvalidID)
		return
	}

	found, err := h.uc.GetCompany(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCompanyResponse(found))
}

type listCompaniesResponse struct {
	Companies     []companyResponse `json:"companies"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

func (h *CompanyHandler) list(w http.ResponseWriter, r *http.Request) {
	pageSize, err := queryPageSize(r)
	if err != nil {
		writeError(w, err)
		return
	}
	verified, err := queryBool(r, "verified")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.uc.ListCompanies(r.Context(), company.ListCompaniesInput{
		PageSize:   pageSize,
		PageToken:  r.URL.Query().Get("page_token"),
		Verified:   verified,
		NameSearch: r.URL.Query().Get("name"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listCompaniesResponse{
		Companies:     make([]companyResponse, 0, len(result.Companies)),
		NextPageToken: result.NextPageToken,
	}
	for _, c := range result.Companies {
		resp.Companies = append(resp.Companies, toCompanyResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *CompanyHandler) listMine(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	companies, err := h.uc.ListCompaniesForUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]companyResponse, 0, len(companies))
	for _, c := range companies {
		resp = append(resp, toCompanyResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (h *CompanyHandler) addMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, company.ErrInvalidID)
		return
	}

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	added, err := h.uc.AddMember(r.Context(), company.AddMemberInput{
		CompanyID: id,
		Identity:  middleware.IdentityFromContext(r.Context()),
		UserID:    req.UserID,
		Role:      req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMembershipResponse(added))
}

type changeMemberRoleRequest struct {
	Role string `json:"role"`
}

func (h *CompanyHandler) changeMemberRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, company.ErrInvalidID)
		return
	}

	var req changeMemberRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.uc.ChangeMemberRole(r.Context(), company.ChangeMemberRoleInput{
		CompanyID: id,
		Identity:  middleware.IdentityFromContext(r.Context()),
		UserID:    mux.Vars(r)["userID"],
		NewRole:   req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMembershipResponse(updated))
}

func (h *CompanyHandler) removeMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, company.ErrInvalidID)
		return
	}

	if err := h.uc.RemoveMember(r.Context(), company.RemoveMemberInput{
		CompanyID: id,
		Identity:  middleware.IdentityFromContext(r.Context()),
		UserID:    mux.Vars(r)["userID"],
	}); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CompanyHandler) listMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, company.ErrInvalidID)
		return
	}

	members, err := h.uc.ListMembers(r.Context(), company.ListMembersInput{
		CompanyID: id,
		Identity:  middleware.IdentityFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]membershipResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, toMembershipResponse(m))
	}

	writeJSON(w, http.StatusOK, resp)
}
