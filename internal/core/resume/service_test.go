package resume

import (
	"context"
	"errors"
	"strings"
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
	resumes map[int64]*Resume
	seq     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{resumes: make(map[int64]*Resume)}
}

func (r *fakeRepo) Create(_ context.Context, resume *Resume) (*Resume, error) {
	clone := *resume
	r.seq++
	clone.ID = r.seq
	r.resumes[clone.ID] = &clone
	copied := clone
	return &copied, nil
}

func (r *fakeRepo) Update(_ context.Context, resume *Resume) (*Resume, error) {
	if _, ok := r.resumes[resume.ID]; !ok {
		return nil, ErrResumeNotFound
	}
	clone := *resume
	r.resumes[resume.ID] = &clone
	copied := clone
	return &copied, nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.resumes[id]; !ok {
		return ErrResumeNotFound
	}
	delete(r.resumes, id)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*Resume, error) {
	resume, ok := r.resumes[id]
	if !ok {
		return nil, ErrResumeNotFound
	}
	clone := *resume
	return &clone, nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string) ([]*Resume, error) {
	var result []*Resume
	for _, resume := range r.resumes {
		if resume.UserID == userID {
			clone := *resume
			result = append(result, &clone)
		}
	}
	return result, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	clk := &stubClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	return NewService(repo, clk, nil), repo
}

func createResume(t *testing.T, svc *Service, published bool) *Resume {
	t.Helper()

	created, err := svc.CreateResume(context.Background(), CreateResumeInput{
		UserID:      "seeker-1",
		Title:       "Experienced agronomist",
		FullName:    "Ivan Petrov",
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("CreateResume returned error: %v", err)
	}
	return created
}

func TestCreateResume_ActiveByDefault(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	created := createResume(t, svc, true)

	if !created.IsActive {
		t.Fatalf("expected new resume to be active")
	}
	if created.UpdatedAt != nil {
		t.Fatalf("expected nil updatedAt on creation")
	}
}

func TestCreateResume_TextTooLong(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	long := strings.Repeat("x", 1001)
	_, err := svc.CreateResume(context.Background(), CreateResumeInput{
		UserID:   "seeker-1",
		Title:    "Agronomist",
		FullName: "Ivan Petrov",
		Skills:   &long,
	})
	if !errors.Is(err, ErrTextTooLong) {
		t.Fatalf("expected ErrTextTooLong, got %v", err)
	}
}

func TestUpdateResume_FlagsToggleIndependently(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	created := createResume(t, svc, true)

	inactive := false
	updated, err := svc.UpdateResume(context.Background(), UpdateResumeInput{
		ID:       created.ID,
		UserID:   "seeker-1",
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateResume returned error: %v", err)
	}

	// 公開済みのまま休止状態にできる。
	if updated.IsActive || !updated.IsPublished {
		t.Fatalf("expected published-but-inactive, got active=%t published=%t", updated.IsActive, updated.IsPublished)
	}
	if updated.UpdatedAt == nil {
		t.Fatalf("expected updatedAt to be set")
	}
}

func TestUpdateResume_NonOwnerForbidden(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	created := createResume(t, svc, true)

	title := "Hijacked"
	_, err := svc.UpdateResume(context.Background(), UpdateResumeInput{
		ID:     created.ID,
		UserID: "someone-else",
		Title:  &title,
	})
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeleteResume_OwnerOnly(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService()
	created := createResume(t, svc, true)

	err := svc.DeleteResume(context.Background(), DeleteResumeInput{ID: created.ID, UserID: "someone-else"})
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := svc.DeleteResume(context.Background(), DeleteResumeInput{ID: created.ID, UserID: "seeker-1"}); err != nil {
		t.Fatalf("DeleteResume returned error: %v", err)
	}
	if _, ok := repo.resumes[created.ID]; ok {
		t.Fatalf("expected resume to be deleted")
	}
}

func TestGetResume_VisibilityRules(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	draft := createResume(t, svc, false)

	// 所有者は下書きを閲覧できる。
	if _, err := svc.GetResume(context.Background(), GetResumeInput{ID: draft.ID, Identity: access.Identity{UserID: "seeker-1"}}); err != nil {
		t.Fatalf("owner read returned error: %v", err)
	}

	// 管理者も閲覧できる。
	if _, err := svc.GetResume(context.Background(), GetResumeInput{ID: draft.ID, Identity: access.Identity{Admin: true}}); err != nil {
		t.Fatalf("admin read returned error: %v", err)
	}

	// 第三者には存在しないものとして扱う。
	_, err := svc.GetResume(context.Background(), GetResumeInput{ID: draft.ID, Identity: access.Identity{UserID: "employer-1"}})
	if !errors.Is(err, ErrResumeNotFound) {
		t.Fatalf("expected ErrResumeNotFound for unpublished resume, got %v", err)
	}
}
