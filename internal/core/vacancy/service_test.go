package vacancy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrokadry/agrojob-core/internal/core/access"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeRepo struct {
	vacancies map[int64]*Vacancy
	seq       int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{vacancies: make(map[int64]*Vacancy)}
}

func (r *fakeRepo) Create(_ context.Context, v *Vacancy) (*Vacancy, error) {
	clone := cloneVacancy(v)
	r.seq++
	clone.ID = r.seq
	r.vacancies[clone.ID] = clone
	return cloneVacancy(clone), nil
}

func (r *fakeRepo) Update(_ context.Context, v *Vacancy) (*Vacancy, error) {
	if _, ok := r.vacancies[v.ID]; !ok {
		return nil, ErrVacancyNotFound
	}
	r.vacancies[v.ID] = cloneVacancy(v)
	return cloneVacancy(v), nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.vacancies[id]; !ok {
		return ErrVacancyNotFound
	}
	delete(r.vacancies, id)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*Vacancy, error) {
	v, ok := r.vacancies[id]
	if !ok {
		return nil, ErrVacancyNotFound
	}
	return cloneVacancy(v), nil
}

func (r *fakeRepo) List(_ context.Context, filter ListVacanciesFilter) ([]*Vacancy, string, error) {
	var result []*Vacancy
	for _, v := range r.vacancies {
		if filter.CompanyID != nil && v.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Active != nil && v.IsActive != *filter.Active {
			continue
		}
		result = append(result, cloneVacancy(v))
	}
	return result, "", nil
}

func (r *fakeRepo) IncrementViews(_ context.Context, id int64) error {
	v, ok := r.vacancies[id]
	if !ok {
		return ErrVacancyNotFound
	}
	v.ViewsCount++
	return nil
}

func cloneVacancy(v *Vacancy) *Vacancy {
	clone := *v
	if v.CreatedBy != nil {
		createdBy := *v.CreatedBy
		clone.CreatedBy = &createdBy
	}
	clone.Requirements = append([]string(nil), v.Requirements...)
	clone.Offers = append([]string(nil), v.Offers...)
	return &clone
}

// allowAuthorizer は許可リスト上のユーザーと管理者を通します。
type allowAuthorizer struct {
	companyMembers map[string]int64
	repo           *fakeRepo
}

func (a *allowAuthorizer) CanManageCompany(_ context.Context, identity access.Identity, companyID int64) error {
	if identity.Admin {
		return nil
	}
	if id, ok := a.companyMembers[identity.UserID]; ok && id == companyID {
		return nil
	}
	return access.ErrForbidden
}

func (a *allowAuthorizer) CanManageVacancy(ctx context.Context, identity access.Identity, vacancyID int64) error {
	v, ok := a.repo.vacancies[vacancyID]
	if !ok {
		return access.ErrVacancyNotFound
	}
	return a.CanManageCompany(ctx, identity, v.CompanyID)
}

func newTestService() (*Service, *fakeRepo, *stubClock) {
	repo := newFakeRepo()
	authz := &allowAuthorizer{companyMembers: map[string]int64{"employer-1": 10}, repo: repo}
	clk := &stubClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	return NewService(repo, authz, clk, nil), repo, clk
}

func createVacancy(t *testing.T, svc *Service) *Vacancy {
	t.Helper()

	created, err := svc.CreateVacancy(context.Background(), CreateVacancyInput{
		CompanyID:    10,
		Identity:     access.Identity{UserID: "employer-1"},
		Title:        "Agronomist",
		Description:  "Seasonal field work",
		Salary:       "60000-80000 RUB",
		Category:     "Agronomy",
		Location:     "Krasnodar",
		IsSeasonal:   true,
		Requirements: []string{" 3+ years of experience ", "", "Driving license"},
		Offers:       []string{"Housing provided"},
	})
	if err != nil {
		t.Fatalf("CreateVacancy returned error: %v", err)
	}
	return created
}

func TestCreateVacancy_Success(t *testing.T) {
	t.Parallel()

	svc, _, clk := newTestService()
	created := createVacancy(t, svc)

	if !created.IsActive {
		t.Fatalf("expected new vacancy to be active")
	}
	if created.CreatedBy == nil || *created.CreatedBy != "employer-1" {
		t.Fatalf("expected creator to be recorded, got %+v", created.CreatedBy)
	}
	if !created.PostedAt.Equal(clk.now) {
		t.Fatalf("expected postedAt %v, got %v", clk.now, created.PostedAt)
	}
	if len(created.Requirements) != 2 {
		t.Fatalf("expected blank requirement lines to be dropped, got %v", created.Requirements)
	}
}

func TestCreateVacancy_RequiresCompanyAccess(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	_, err := svc.CreateVacancy(context.Background(), CreateVacancyInput{
		CompanyID:   10,
		Identity:    access.Identity{UserID: "stranger"},
		Title:       "Agronomist",
		Description: "Field work",
	})
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateVacancy_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()

	_, err := svc.CreateVacancy(context.Background(), CreateVacancyInput{
		CompanyID:   10,
		Identity:    access.Identity{UserID: "employer-1"},
		Title:       "   ",
		Description: "Field work",
	})
	if !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestUpdateVacancy_ReplacesRequirementsWholesale(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	created := createVacancy(t, svc)

	updated, err := svc.UpdateVacancy(context.Background(), UpdateVacancyInput{
		ID:           created.ID,
		Identity:     access.Identity{UserID: "employer-1"},
		Requirements: []string{"New requirement"},
	})
	if err != nil {
		t.Fatalf("UpdateVacancy returned error: %v", err)
	}
	if len(updated.Requirements) != 1 || updated.Requirements[0] != "New requirement" {
		t.Fatalf("expected wholesale replacement, got %v", updated.Requirements)
	}
	if len(updated.Offers) != 1 {
		t.Fatalf("expected offers to be untouched, got %v", updated.Offers)
	}
}

func TestSetActive_TogglesFlag(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	created := createVacancy(t, svc)

	closed, err := svc.SetActive(context.Background(), SetActiveInput{
		ID:       created.ID,
		Identity: access.Identity{UserID: "employer-1"},
		Active:   false,
	})
	if err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}
	if closed.IsActive {
		t.Fatalf("expected vacancy to be closed")
	}
}

func TestDeleteVacancy_Forbidden(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService()
	created := createVacancy(t, svc)

	err := svc.DeleteVacancy(context.Background(), DeleteVacancyInput{
		ID:       created.ID,
		Identity: access.Identity{UserID: "stranger"},
	})
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, ok := repo.vacancies[created.ID]; !ok {
		t.Fatalf("expected vacancy to remain")
	}
}

func TestGetVacancy_CountViewIncrements(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	created := createVacancy(t, svc)

	viewed, err := svc.GetVacancy(context.Background(), GetVacancyInput{ID: created.ID, CountView: true})
	if err != nil {
		t.Fatalf("GetVacancy returned error: %v", err)
	}
	if viewed.ViewsCount != 1 {
		t.Fatalf("expected views count 1, got %d", viewed.ViewsCount)
	}

	plain, err := svc.GetVacancy(context.Background(), GetVacancyInput{ID: created.ID})
	if err != nil {
		t.Fatalf("GetVacancy returned error: %v", err)
	}
	if plain.ViewsCount != 1 {
		t.Fatalf("expected views count unchanged, got %d", plain.ViewsCount)
	}
}

func TestListVacancies_FilterByCompanyAndActive(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	created := createVacancy(t, svc)
	createVacancy(t, svc)

	if _, err := svc.SetActive(context.Background(), SetActiveInput{
		ID:       created.ID,
		Identity: access.Identity{UserID: "employer-1"},
		Active:   false,
	}); err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}

	companyID := int64(10)
	active := true
	result, err := svc.ListVacancies(context.Background(), ListVacanciesInput{
		CompanyID: &companyID,
		Active:    &active,
	})
	if err != nil {
		t.Fatalf("ListVacancies returned error: %v", err)
	}
	if len(result.Vacancies) != 1 {
		t.Fatalf("expected 1 active vacancy, got %d", len(result.Vacancies))
	}
}
