package access

import (
	"context"
	"errors"
	"testing"
)

type fakeVacancyDirectory struct {
	refs map[int64]*VacancyRef
}

func (d *fakeVacancyDirectory) FindRef(_ context.Context, vacancyID int64) (*VacancyRef, error) {
	ref, ok := d.refs[vacancyID]
	if !ok {
		return nil, ErrVacancyNotFound
	}
	return ref, nil
}

type fakeMembershipDirectory struct {
	members map[string]int64
}

func (d *fakeMembershipDirectory) IsMember(_ context.Context, userID string, companyID int64) (bool, error) {
	id, ok := d.members[userID]
	return ok && id == companyID, nil
}

func newTestService(creator string) *Service {
	createdBy := creator
	vacancies := &fakeVacancyDirectory{refs: map[int64]*VacancyRef{
		1: {ID: 1, CompanyID: 10, CreatedBy: &createdBy, IsActive: true},
		2: {ID: 2, CompanyID: 10, CreatedBy: nil, IsActive: true},
	}}
	members := &fakeMembershipDirectory{members: map[string]int64{
		"member-1": 10,
		"member-2": 99,
	}}
	return NewService(vacancies, members)
}

func TestCanManageVacancy_Creator(t *testing.T) {
	t.Parallel()

	svc := newTestService("creator-1")
	if err := svc.CanManageVacancy(context.Background(), Identity{UserID: "creator-1"}, 1); err != nil {
		t.Fatalf("expected creator to be allowed, got %v", err)
	}
}

func TestCanManageVacancy_CompanyMember(t *testing.T) {
	t.Parallel()

	svc := newTestService("creator-1")
	if err := svc.CanManageVacancy(context.Background(), Identity{UserID: "member-1"}, 2); err != nil {
		t.Fatalf("expected company member to be allowed, got %v", err)
	}
}

func TestCanManageVacancy_Admin(t *testing.T) {
	t.Parallel()

	svc := newTestService("creator-1")
	if err := svc.CanManageVacancy(context.Background(), Identity{Admin: true}, 1); err != nil {
		t.Fatalf("expected admin to be allowed, got %v", err)
	}
}

func TestCanManageVacancy_Forbidden(t *testing.T) {
	t.Parallel()

	svc := newTestService("creator-1")

	err := svc.CanManageVacancy(context.Background(), Identity{UserID: "member-2"}, 1)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member of another company, got %v", err)
	}

	err = svc.CanManageVacancy(context.Background(), Identity{}, 1)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for empty identity, got %v", err)
	}
}

func TestCanManageVacancy_VacancyNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService("creator-1")
	err := svc.CanManageVacancy(context.Background(), Identity{UserID: "member-1"}, 404)
	if !errors.Is(err, ErrVacancyNotFound) {
		t.Fatalf("expected ErrVacancyNotFound, got %v", err)
	}
}

func TestCanManageCompany(t *testing.T) {
	t.Parallel()

	svc := newTestService("creator-1")

	if err := svc.CanManageCompany(context.Background(), Identity{UserID: "member-1"}, 10); err != nil {
		t.Fatalf("expected member to be allowed, got %v", err)
	}
	if err := svc.CanManageCompany(context.Background(), Identity{Admin: true}, 10); err != nil {
		t.Fatalf("expected admin to be allowed, got %v", err)
	}
	if err := svc.CanManageCompany(context.Background(), Identity{UserID: "member-2"}, 10); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCanManageVacancy_NullCreatorDoesNotMatchEmptyUser(t *testing.T) {
	t.Parallel()

	// created_by が NULL の求人は作成者一致では許可されない。
	svc := newTestService("creator-1")
	err := svc.CanManageVacancy(context.Background(), Identity{UserID: "stranger"}, 2)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
