//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	repo "github.com/agrokadry/agrojob-core/internal/adapters/repository/postgres"
	"github.com/agrokadry/agrojob-core/internal/core/access"
	"github.com/agrokadry/agrojob-core/internal/core/application"
	"github.com/agrokadry/agrojob-core/internal/core/company"
	"github.com/agrokadry/agrojob-core/internal/core/resume"
	"github.com/agrokadry/agrojob-core/internal/core/vacancy"
	"github.com/agrokadry/agrojob-core/internal/platform/config"
	pg "github.com/agrokadry/agrojob-core/internal/platform/db/postgres"
)

const migrationsDir = "assets/migrations"

// TestApplicationWorkflowIntegration は応募ワークフローの一連の流れを
// 実データベース上で検証します。
func TestApplicationWorkflowIntegration(t *testing.T) {
	cfgPath := configPathFromEnv()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	txManager := pg.NewTransactionManager(pool)

	companyRepo := repo.NewCompanyRepository(pool)
	membershipRepo := repo.NewMembershipRepository(pool)
	vacancyRepo := repo.NewVacancyRepository(pool)
	resumeRepo := repo.NewResumeRepository(pool)
	applicationRepo := repo.NewApplicationRepository(pool)

	vacancyDir := repo.NewVacancyDirectory(pool)
	membershipDir := repo.NewMembershipDirectory(pool)
	resumeDir := repo.NewResumeDirectory(pool)

	authz := access.NewService(vacancyDir, membershipDir)
	clk := stubClock{now: time.Now().UTC()}

	companySvc := company.NewService(companyRepo, membershipRepo, clk, txManager)
	vacancySvc := vacancy.NewService(vacancyRepo, authz, clk, txManager)
	resumeSvc := resume.NewService(resumeRepo, clk, txManager)
	applicationSvc := application.NewService(applicationRepo, vacancyDir, resumeDir, authz, nil, clk, txManager)

	employer := access.Identity{UserID: "employer-1"}
	seeker := "seeker-1"

	createdCompany, err := companySvc.CreateCompany(ctx, company.CreateCompanyInput{
		Name:      "Integration Farms",
		CreatorID: employer.UserID,
	})
	if err != nil {
		t.Fatalf("CreateCompany error: %v", err)
	}

	createdVacancy, err := vacancySvc.CreateVacancy(ctx, vacancy.CreateVacancyInput{
		CompanyID:   createdCompany.ID,
		Identity:    employer,
		Title:       "Harvest worker",
		Description: "Seasonal harvest work",
	})
	if err != nil {
		t.Fatalf("CreateVacancy error: %v", err)
	}

	createdResume, err := resumeSvc.CreateResume(ctx, resume.CreateResumeInput{
		UserID:      seeker,
		Title:       "Tractor operator",
		FullName:    "Ivan Petrov",
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("CreateResume error: %v", err)
	}

	submitted, err := applicationSvc.Submit(ctx, application.SubmitInput{
		VacancyID: createdVacancy.ID,
		UserID:    seeker,
		ResumeID:  &createdResume.ID,
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if submitted.Status != application.StatusPending {
		t.Fatalf("expected pending status, got %s", submitted.Status)
	}
	if submitted.ResumeID == nil || *submitted.ResumeID != createdResume.ID {
		t.Fatalf("expected resume id %d, got %+v", createdResume.ID, submitted.ResumeID)
	}

	// 重複応募は一意制約で拒否される。
	if _, err := applicationSvc.Submit(ctx, application.SubmitInput{
		VacancyID: createdVacancy.ID,
		UserID:    seeker,
	}); !errors.Is(err, application.ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}

	// 雇用側の閲覧で pending -> viewed へ遷移する。
	viewed, err := applicationSvc.ViewDetail(ctx, application.ViewDetailInput{
		ApplicationID: submitted.ID,
		Identity:      employer,
	})
	if err != nil {
		t.Fatalf("ViewDetail error: %v", err)
	}
	if viewed.Status != application.StatusViewed {
		t.Fatalf("expected viewed status, got %s", viewed.Status)
	}

	comment := "Please come on Monday"
	invited, err := applicationSvc.UpdateStatus(ctx, application.UpdateStatusInput{
		ApplicationID:   submitted.ID,
		Identity:        employer,
		Status:          application.StatusInvited,
		EmployerComment: &comment,
	})
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if invited.EmployerComment == nil || *invited.EmployerComment != comment {
		t.Fatalf("employer comment not stored: %+v", invited.EmployerComment)
	}

	// 招待後の取り下げはできない。
	if _, err := applicationSvc.Withdraw(ctx, application.WithdrawInput{
		ApplicationID: submitted.ID,
		UserID:        seeker,
	}); !errors.Is(err, application.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	count, err := applicationSvc.CountByVacancy(ctx, employer, createdVacancy.ID)
	if err != nil {
		t.Fatalf("CountByVacancy error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 application, got %d", count)
	}

	// 履歴書を削除しても応募は残り、resume_id のみが NULL になる。
	if err := resumeSvc.DeleteResume(ctx, resume.DeleteResumeInput{
		ID:     createdResume.ID,
		UserID: seeker,
	}); err != nil {
		t.Fatalf("DeleteResume error: %v", err)
	}

	afterDelete, err := applicationSvc.GetForApplicant(ctx, application.GetForApplicantInput{
		ApplicationID: submitted.ID,
		UserID:        seeker,
	})
	if err != nil {
		t.Fatalf("GetForApplicant error: %v", err)
	}
	if afterDelete.ResumeID != nil {
		t.Fatalf("expected resume id to be cleared, got %+v", afterDelete.ResumeID)
	}
	if afterDelete.Status != application.StatusInvited {
		t.Fatalf("expected invited status to survive resume deletion, got %s", afterDelete.Status)
	}
	if afterDelete.EmployerComment == nil || *afterDelete.EmployerComment != comment {
		t.Fatalf("expected employer comment to survive resume deletion, got %+v", afterDelete.EmployerComment)
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "assets/local.yaml"
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
